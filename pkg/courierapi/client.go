// Package courierapi reads the courier registry from the partner-program
// backend: a fixed base URL addressed with route/action query parameters
// and a token header. The reconciliation core never calls this API;
// command glue fetches the list and hands it over.
package courierapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stueygo/recon-cli/internal/model"
)

// authHeader carries the operator token on every request.
const authHeader = "X-Auth-Token"

// Config configures the registry client.
type Config struct {
	BaseURL    string        `mapstructure:"base_url"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RatePerSec float64       `mapstructure:"rate_per_sec"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// Client fetches courier records from the registry API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
}

// New creates a registry client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSec == 0 {
		cfg.RatePerSec = 5
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		cfg:        cfg,
	}
}

// FetchCouriers retrieves the full courier list. Transient upstream
// failures (429 and 5xx) are retried with backoff up to MaxRetries.
func (c *Client) FetchCouriers(ctx context.Context) ([]model.Courier, error) {
	if c.cfg.BaseURL == "" {
		return nil, eris.New("courierapi: base URL not configured")
	}

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "courierapi: parse base URL")
	}
	q := u.Query()
	q.Set("route", "partner")
	q.Set("action", "couriers")
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			zap.L().Warn("retrying courier fetch",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "courierapi: context cancelled")
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "courierapi: rate limit wait")
		}

		couriers, retryable, err := c.fetchOnce(ctx, u.String())
		if err == nil {
			return couriers, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, fullURL string) ([]model.Courier, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "courierapi: build request")
	}
	req.Header.Set(authHeader, c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, eris.Wrap(err, "courierapi: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, eris.Errorf("courierapi: upstream status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, eris.Errorf("courierapi: upstream status %d", resp.StatusCode)
	}

	couriers, err := decodeCouriers(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return couriers, false, nil
}

// decodeCouriers accepts either a bare JSON array or the wrapped
// {"couriers": [...]} shape the serverless backend produces.
func decodeCouriers(r io.Reader) ([]model.Courier, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "courierapi: read body")
	}

	var wrapped struct {
		Couriers []model.Courier `json:"couriers"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Couriers != nil {
		return wrapped.Couriers, nil
	}

	var list []model.Courier
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, eris.Wrap(err, "courierapi: decode response")
	}
	return list, nil
}

// String implements fmt.Stringer without leaking the token.
func (c *Client) String() string {
	return fmt.Sprintf("courierapi.Client{base=%s}", c.cfg.BaseURL)
}
