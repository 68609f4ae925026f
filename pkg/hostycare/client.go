package hostycare

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sulphurninja/oceanlinux-sub001/pkg/remote"
)

const providerName = "hostycare"

type Client struct {
	cfg     Config
	http    *http.Client
	retry   remote.RetryPolicy
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	// now is swappable for token tests.
	now func() time.Time
}

func NewFromEnv() (*Client, error) {
	return New(LoadFromEnv())
}

// New builds a client. Missing credentials are a fatal configuration
// error at construction, not at call time.
func New(cfg Config) (*Client, error) {
	var missing []string
	if strings.TrimSpace(cfg.Username) == "" {
		missing = append(missing, "HOSTYCARE_USERNAME")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		missing = append(missing, "HOSTYCARE_API_KEY")
	}
	if len(missing) > 0 {
		return nil, &remote.AuthConfigError{Provider: providerName, Missing: missing}
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		retry: remote.RetryPolicy{
			MaxRetries: cfg.RetryCount,
			BaseDelay:  cfg.RetryDelay,
			MaxDelay:   30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit)/60, cfg.RateBurst),
		now:     time.Now,
	}
	if cfg.CircuitBreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "hostycare",
			MaxRequests: uint32(cfg.CBHalfOpenMaxSuccess),
			Interval:    cfg.CBSamplingDuration,
			Timeout:     cfg.CBRecoveryTime,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < uint32(cfg.CBMinRequests) {
					return false
				}
				return counts.TotalFailures >= uint32(cfg.CBFailureThreshold)
			},
		})
	}
	return c, nil
}

// doGet issues a read. doPost issues a write with a form-encoded body.
// Responses are always expected to be JSON; anything else is a ProtocolError.
func (c *Client) doGet(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doPost(ctx context.Context, path string, form url.Values, out any) error {
	if form == nil {
		form = url.Values{}
	}
	return c.do(ctx, http.MethodPost, path, form, out)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	return c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		if c.breaker != nil {
			_, err := c.breaker.Execute(func() (any, error) {
				return nil, c.roundTrip(ctx, method, path, form, out)
			})
			return err
		}
		return c.roundTrip(ctx, method, path, form, out)
	})
}

func (c *Client) roundTrip(ctx context.Context, method, path string, form url.Values, out any) error {
	target := strings.TrimRight(c.cfg.BaseURL, "/") + path

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("username", c.cfg.Username)
	req.Header.Set("token", Token(c.cfg.Username, c.cfg.APIKey, c.now()))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.WrapTransport(providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.WrapTransport(providerName, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Non-JSON body is a hard protocol error, with the raw body kept
		// (truncated) for diagnosability.
		return remote.NewProtocolError(providerName, resp.StatusCode, "non-JSON response", raw)
	}

	if resp.StatusCode >= 400 || strings.EqualFold(envelope.Status, "error") || envelope.Error != "" {
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Message
		}
		return remote.NewProtocolError(providerName, resp.StatusCode, msg, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return remote.NewProtocolError(providerName, resp.StatusCode, "unexpected response shape", raw)
		}
	}
	return nil
}

// apiResponse is the provider's common envelope. Field presence varies by
// endpoint, so everything is optional.
type apiResponse struct {
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
