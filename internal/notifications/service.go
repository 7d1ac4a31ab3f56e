package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"hopper/internal/config"
)

const userAgent = "Hopper/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyFileDetected(ctx context.Context, path string) error
	NotifyFileCompleted(ctx context.Context, path string, attempts int) error
	NotifyFileAbandoned(ctx context.Context, path string, attempts int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:    topic,
		client:      client,
		completions: cfg.Notifications.Completions,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	completions bool
	errors      bool
}

func (n *ntfyService) NotifyFileDetected(ctx context.Context, path string) error {
	if !n.completions {
		return nil
	}
	data := payload{
		title:   "Hopper - File Detected",
		message: fmt.Sprintf("New file queued: %s", filepath.Base(path)),
		tags:    []string{"hopper", "file", "detected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileCompleted(ctx context.Context, path string, attempts int) error {
	if !n.completions {
		return nil
	}
	message := fmt.Sprintf("Processed: %s", filepath.Base(path))
	if attempts > 1 {
		message = fmt.Sprintf("%s (stabilized after %d probes)", message, attempts)
	}
	data := payload{
		title:   "Hopper - Complete",
		message: message,
		tags:    []string{"hopper", "file", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileAbandoned(ctx context.Context, path string, attempts int) error {
	if !n.errors {
		return nil
	}
	data := payload{
		title:    "Hopper - Abandoned",
		message:  fmt.Sprintf("Gave up on %s after %d probes; file left in place", filepath.Base(path), attempts),
		tags:     []string{"hopper", "file", "abandoned"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Hopper - Error",
		message:  builder.String(),
		tags:     []string{"hopper", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Hopper - Test",
		message:  "Notification system test",
		tags:     []string{"hopper", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyFileDetected(context.Context, string) error       { return nil }
func (noopService) NotifyFileCompleted(context.Context, string, int) error { return nil }
func (noopService) NotifyFileAbandoned(context.Context, string, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
