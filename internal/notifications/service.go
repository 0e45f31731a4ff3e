package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plutoiptv/internal/config"
)

const userAgent = "plutoiptv/2.0.0"

// Service defines the notification surface exposed to the daemon.
type Service interface {
	NotifyRefreshFailed(ctx context.Context, err error, trigger string) error
	NotifyRefreshRecovered(ctx context.Context, channels int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRefreshFailed(ctx context.Context, err error, trigger string) error {
	var builder strings.Builder
	builder.WriteString("Playlist refresh failed")
	if trigger = strings.TrimSpace(trigger); trigger != "" {
		builder.WriteString(" (")
		builder.WriteString(trigger)
		builder.WriteString(")")
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	builder.WriteString("\nPreviously published files are still served.")

	return n.send(ctx, payload{
		title:    "plutoiptv - Refresh Failed",
		message:  builder.String(),
		tags:     []string{"plutoiptv", "refresh", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRefreshRecovered(ctx context.Context, channels int) error {
	return n.send(ctx, payload{
		title:   "plutoiptv - Refresh Recovered",
		message: fmt.Sprintf("Playlist and guide published again (%d channels)", channels),
		tags:    []string{"plutoiptv", "refresh", "recovered"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "plutoiptv - Test",
		message:  "Notification system test",
		tags:     []string{"plutoiptv", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRefreshFailed(context.Context, error, string) error { return nil }
func (noopService) NotifyRefreshRecovered(context.Context, int) error        { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
