package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"plutoiptv/internal/config"
	"plutoiptv/internal/feed"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/services"
)

// queryTimeLayout is the timestamp format the feed expects for start/stop.
const queryTimeLayout = "2006-01-02 15:04:05.000-0700"

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 64 << 20
	maxSnippet      = 200
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config captures the request and retry settings for the feed.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// MaxBytes caps a response body. Default: 64MB.
	MaxBytes int64
}

// ConfigFrom extracts the [feed] settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:    cfg.Feed.BaseURL,
		UserAgent:  cfg.Feed.UserAgent,
		Timeout:    cfg.FeedTimeout(),
		MaxRetries: cfg.Feed.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		MaxBytes:   cfg.MaxResponseBytes(),
	}
}

// Client fetches windows from the feed over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleeper    func(time.Duration)
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how retry delays are waited out (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a feed client.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// StatusError reports a non-2xx response. It is never retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("feed request: http %d", e.StatusCode)
	}
	return fmt.Sprintf("feed request: http %d: %s", e.StatusCode, e.Body)
}

// FetchWindow retrieves one window, retrying transient failures up to
// MaxRetries times with RetryDelay between attempts.
func (c *Client) FetchWindow(ctx context.Context, window feed.Window) (feed.Fragment, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldWindow, window.String()))
	attempts := c.cfg.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		channels, err := c.fetchOnce(ctx, window)
		if err == nil {
			logger.Debug("window fetched",
				logging.Int("attempt", attempt),
				logging.Int("channels", len(channels)),
			)
			return feed.Fragment{Window: window, Channels: channels}, nil
		}
		if ctx.Err() != nil {
			return feed.Fragment{}, ctx.Err()
		}
		if errors.Is(err, services.ErrParse) {
			return feed.Fragment{}, err
		}
		if !IsTransient(err) {
			return feed.Fragment{}, services.Wrap(services.ErrFetchFailed, "fetch", window.String(), "request failed", err)
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		logging.WarnWithContext(logger, "feed request failed; retrying", "fetch_retry",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("retry_delay", c.cfg.RetryDelay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network connectivity to the feed"),
			logging.String(logging.FieldImpact, "guide refresh is delayed"),
		)
		if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
			return feed.Fragment{}, err
		}
	}
	return feed.Fragment{}, services.Wrap(
		services.ErrFetchExhausted,
		"fetch",
		window.String(),
		fmt.Sprintf("gave up after %d attempts", attempts),
		lastErr,
	)
}

// Probe issues a single request for a one-hour window without retries and
// returns the number of channels in the response.
func (c *Client) Probe(ctx context.Context, now time.Time) (int, error) {
	windows := Windows(now, 1, time.Hour)
	channels, err := c.fetchOnce(ctx, windows[0])
	if err != nil {
		return 0, err
	}
	return len(channels), nil
}

// RequestURL builds the feed URL for window, keeping any query parameters
// already present on the base URL.
func (c *Client) RequestURL(window feed.Window) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}
	query := u.Query()
	query.Set("start", window.Start.UTC().Format(queryTimeLayout))
	query.Set("stop", window.End.UTC().Format(queryTimeLayout))
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func (c *Client) fetchOnce(ctx context.Context, window feed.Window) ([]feed.Channel, error) {
	endpoint, err := c.RequestURL(window)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("feed request: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: http error (timeout=%s): %w", c.cfg.Timeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("feed request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	if int64(len(body)) > c.cfg.MaxBytes {
		return nil, services.Wrap(services.ErrParse, "fetch", window.String(),
			fmt.Sprintf("response exceeds %d bytes", c.cfg.MaxBytes), nil)
	}

	var channels []feed.Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, services.Wrap(services.ErrParse, "fetch", window.String(), "decode channel list", err)
	}
	if channels == nil {
		return nil, services.Wrap(services.ErrParse, "fetch", window.String(), "response is not a channel list", nil)
	}
	return channels, nil
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTransient reports whether err is a timeout or a connection reset, the
// only failures worth retrying against the feed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, services.ErrTimeout) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{"connection reset", "timeout", "deadline exceeded"} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxSnippet {
		return text[:maxSnippet] + "..."
	}
	return text
}
