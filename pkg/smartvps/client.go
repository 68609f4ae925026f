package smartvps

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sulphurninja/oceanlinux-sub001/pkg/remote"
)

const providerName = "smartvps"

// requestTimeout is the per-call abort timeout the provider tolerates.
const requestTimeout = 25 * time.Second

type Config struct {
	BaseURL  string
	Username string
	Password string
}

func LoadFromEnv() Config {
	return Config{
		BaseURL:  os.Getenv("SMARTVPS_BASE_URL"),
		Username: os.Getenv("SMARTVPS_USERNAME"),
		Password: os.Getenv("SMARTVPS_PASSWORD"),
	}
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewFromEnv() (*Client, error) {
	return New(LoadFromEnv())
}

// New builds a client. Missing Basic-auth credentials are a fatal
// configuration error at construction, not at call time.
func New(cfg Config) (*Client, error) {
	var missing []string
	if strings.TrimSpace(cfg.BaseURL) == "" {
		missing = append(missing, "SMARTVPS_BASE_URL")
	}
	if strings.TrimSpace(cfg.Username) == "" {
		missing = append(missing, "SMARTVPS_USERNAME")
	}
	if strings.TrimSpace(cfg.Password) == "" {
		missing = append(missing, "SMARTVPS_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, &remote.AuthConfigError{Provider: providerName, Missing: missing}
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}, nil
}

// IPStock lists available inventory. The provider requires this POST to
// carry no body at all; do not add one.
func (c *Client) IPStock(ctx context.Context) ([]StockItem, error) {
	var out []StockItem
	if err := c.doPost(ctx, "api/oceansmart/ipstock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BuyVPS provisions a new VPS from stock.
func (c *Client) BuyVPS(ctx context.Context, req BuyRequest) (*BuyResult, error) {
	var out BuyResult
	if err := c.doPost(ctx, "api/oceansmart/buyvps", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Start(ctx context.Context, ip string) error {
	return c.doPost(ctx, "api/oceansmart/start", ipRequest{IP: ip}, nil)
}

func (c *Client) Stop(ctx context.Context, ip string) error {
	return c.doPost(ctx, "api/oceansmart/stop", ipRequest{IP: ip}, nil)
}

// Format reinstalls the VPS with its current OS, wiping data.
func (c *Client) Format(ctx context.Context, ip string) error {
	return c.doPost(ctx, "api/oceansmart/format", ipRequest{IP: ip}, nil)
}

// Status returns the provider's view of the VPS at this address.
func (c *Client) Status(ctx context.Context, ip string) (*VPSStatus, error) {
	var out VPSStatus
	if err := c.doPost(ctx, "api/oceansmart/status", ipRequest{IP: ip}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeOS rebuilds the VPS with a different OS template.
func (c *Client) ChangeOS(ctx context.Context, ip, osName string) error {
	return c.doPost(ctx, "api/oceansmart/changeos", changeOSRequest{IP: ip, OS: osName}, nil)
}

// RenewVPS extends the VPS on the provider side.
func (c *Client) RenewVPS(ctx context.Context, ip string) error {
	return c.doPost(ctx, "api/oceansmart/renewvps", ipRequest{IP: ip}, nil)
}

// doPost issues a JSON POST. body == nil sends no body (ipstock quirk).
func (c *Client) doPost(ctx context.Context, path string, body any, out any) error {
	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + path

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, reqBody)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts are a distinct TransportError subtype so callers can
		// decide whether to retry.
		return remote.WrapTransport(providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.WrapTransport(providerName, err)
	}

	if resp.StatusCode >= 400 {
		return remote.NewProtocolError(providerName, resp.StatusCode, "", raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return remote.NewProtocolError(providerName, resp.StatusCode, "non-JSON response", raw)
		}
	}
	return nil
}

type ipRequest struct {
	IP string `json:"ip"`
}

type changeOSRequest struct {
	IP string `json:"ip"`
	OS string `json:"os"`
}

// StockItem is one available inventory pool entry.
type StockItem struct {
	Pool      string `json:"pool"`
	Available int    `json:"available"`
	Memory    string `json:"memory"`
}

// BuyRequest configures a provision from stock.
type BuyRequest struct {
	Pool     string `json:"pool"`
	Hostname string `json:"hostname"`
	Password string `json:"password"`
	OS       string `json:"os,omitempty"`
}

// BuyResult is the immediate provision outcome; IP may lag behind.
type BuyResult struct {
	IP       string `json:"ip"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// VPSStatus mirrors the provider's status payload.
type VPSStatus struct {
	IP     string `json:"ip"`
	Status string `json:"status"`
	OS     string `json:"os"`
}
