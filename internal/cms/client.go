package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client defaults
const (
	DefaultDataset    = "production"
	DefaultAPIVersion = "2025-09-23"
	DefaultTimeout    = 30 * time.Second

	// DefaultRequestsPerSecond throttles queries against the content API
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 5

	// demoProjectID is the placeholder used by unconfigured deployments
	demoProjectID = "demo"
)

var (
	// ErrNotConfigured is returned by every call on a client without a project ID
	ErrNotConfigured = errors.New("cms not configured")
	// ErrPostNotFound is returned when a slug matches no post
	ErrPostNotFound = errors.New("post not found")
	// ErrQueryFailed wraps non-retryable API errors
	ErrQueryFailed = errors.New("cms query failed")
)

// Config describes how to reach a dataset
type Config struct {
	ProjectID  string
	Dataset    string // default: production
	APIVersion string // default: 2025-09-23, without the leading "v"
	Token      string // Optional bearer token
	UseCDN     bool

	// BaseURL overrides the derived API host, e.g. for tests
	BaseURL string

	RequestsPerSecond float64 // default: 10
	Retry             *RetryConfig
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Configured reports whether cfg names a real project
func (c Config) Configured() bool {
	id := strings.TrimSpace(c.ProjectID)
	return id != "" && id != demoProjectID
}

// Client runs GROQ queries over the HTTP query API
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     *slog.Logger
}

// NewClient creates a client. An unconfigured client is valid; its calls
// return ErrNotConfigured.
func NewClient(cfg Config) *Client {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	retry := DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:        cfg,
		endpoint:   queryEndpoint(cfg),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurst),
		retry:      retry,
		logger:     logger,
	}
}

func queryEndpoint(cfg Config) string {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		host := "api"
		if cfg.UseCDN {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", cfg.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/query/%s", base, cfg.APIVersion, url.PathEscape(cfg.Dataset))
}

// Configured reports whether the client can issue queries
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// Query runs a GROQ query and decodes the "result" member into out.
// Params are JSON encoded and sent as $name URL parameters.
func (c *Client) Query(ctx context.Context, groq string, params map[string]interface{}, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	values := url.Values{}
	values.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	reqURL := c.endpoint + "?" + values.Encode()

	raw, err := retryWithBackoff(ctx, c.retry, func() (json.RawMessage, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, permanent(err)
		}
		return c.do(ctx, reqURL)
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, reqURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("cms request failed", "error", err)
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded queryResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if decoded.Error != nil && decoded.Error.Description != "" {
			msg = decoded.Error.Description
		}
		apiErr := fmt.Errorf("%w: status %d: %s", ErrQueryFailed, resp.StatusCode, msg)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			c.logger.Warn("cms request retryable", "status", resp.StatusCode)
			return nil, apiErr
		}
		return nil, permanent(apiErr)
	}

	if decoded.Error != nil {
		return nil, permanent(fmt.Errorf("%w: %s", ErrQueryFailed, decoded.Error.Description))
	}
	if decoded.Result == nil {
		return nil, permanent(fmt.Errorf("%w: response has no result", ErrQueryFailed))
	}
	return decoded.Result, nil
}
