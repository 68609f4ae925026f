package virtualizor

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/pkg/cache"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/remote"
)

const providerName = "virtualizor"

// socketTimeout is generous because panel responses routinely take minutes
// under load.
const socketTimeout = 120 * time.Second

type Client struct {
	accounts []Account
	http     *http.Client
	retry    remote.RetryPolicy
	logger   *zap.Logger

	// resolved maps vpsid -> account index. Once cached, a vpsid always
	// routes to the same account for the lifetime of the entry.
	resolved *cache.Map[string, int]
}

// NewFromEnv builds a client over all configured panel accounts. At least
// one account is required.
func NewFromEnv(logger *zap.Logger) (*Client, error) {
	return New(LoadAccountsFromEnv(), logger)
}

func New(accounts []Account, logger *zap.Logger) (*Client, error) {
	if len(accounts) == 0 {
		return nil, &remote.AuthConfigError{Provider: providerName, Missing: []string{"VIRTUALIZOR_HOST(S)"}}
	}
	return &Client{
		accounts: accounts,
		http: &http.Client{
			Timeout: socketTimeout,
			Transport: &http.Transport{
				// Panels run on self-signed certificates.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		retry: remote.RetryPolicy{
			MaxRetries: 2,
			BaseDelay:  5 * time.Second,
			MaxDelay:   30 * time.Second,
		},
		logger:   logger.Named("virtualizor.client"),
		resolved: cache.NewMap[string, int](),
	}, nil
}

// Accounts returns the number of configured panel accounts.
func (c *Client) Accounts() int { return len(c.accounts) }

// call issues one panel API action against the given account. Transient
// failures (transport, 5xx) retry with exponential backoff; deterministic
// application errors do not.
func (c *Client) call(ctx context.Context, accountIdx int, act string, params url.Values, form url.Values, out any) error {
	if accountIdx < 0 || accountIdx >= len(c.accounts) {
		return fmt.Errorf("virtualizor: account index %d out of range", accountIdx)
	}
	account := c.accounts[accountIdx]

	return c.retry.Do(ctx, func() error {
		err := c.roundTrip(ctx, account, act, params, form, out)
		if err != nil && remote.IsRetryable(err) {
			c.logger.Warn("panel call failed, will retry",
				zap.String("act", act),
				zap.String("host", account.Host),
				zap.Error(err),
			)
		}
		return err
	})
}

func (c *Client) roundTrip(ctx context.Context, account Account, act string, params url.Values, form url.Values, out any) error {
	query := url.Values{}
	query.Set("api", "json")
	query.Set("apikey", account.APIKey)
	query.Set("apipass", account.APIPass)
	query.Set("act", act)
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}

	target := account.BaseURL() + "/index.php?" + query.Encode()

	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}
	if err != nil {
		return err
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

	if resp.StatusCode >= 400 {
		return remote.NewProtocolError(providerName, resp.StatusCode, "", raw)
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return remote.NewProtocolError(providerName, resp.StatusCode, "non-JSON response", raw)
	}
	if len(envelope.Error) > 0 && string(envelope.Error) != "null" && string(envelope.Error) != `""` && string(envelope.Error) != "[]" && string(envelope.Error) != "{}" {
		return remote.NewProtocolError(providerName, resp.StatusCode, string(envelope.Error), raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return remote.NewProtocolError(providerName, resp.StatusCode, "unexpected response shape", raw)
		}
	}
	return nil
}
