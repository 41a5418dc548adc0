// Package notifications pushes session outcomes to an ntfy topic. Desktop
// recordings often run unattended on a second machine; a push message is
// how the operator learns a long capture finished or died.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"rcrd/internal/config"
)

const userAgent = "rcrd/0.1.0"

// Service is the notification surface exposed to the record command.
type Service interface {
	NotifySessionCompleted(ctx context.Context, outputPath string, duration time.Duration, markers int) error
	NotifySessionFailed(ctx context.Context, sessionErr error, outputPath string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
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

func (n *ntfyService) NotifySessionCompleted(ctx context.Context, outputPath string, duration time.Duration, markers int) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("Recording complete: %s (%s)", filepath.Base(outputPath), duration)
	if markers > 0 {
		message = fmt.Sprintf("%s\n%d marker(s) saved", message, markers)
	}
	data := payload{
		title:   "rcrd - Recording Complete",
		message: message,
		tags:    []string{"rcrd", "session", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionFailed(ctx context.Context, sessionErr error, outputPath string) error {
	var builder strings.Builder
	builder.WriteString("Recording failed")
	if base := filepath.Base(strings.TrimSpace(outputPath)); base != "" && base != "." {
		builder.WriteString(": ")
		builder.WriteString(base)
	}
	builder.WriteString("\n")
	if sessionErr != nil {
		builder.WriteString(strings.TrimSpace(sessionErr.Error()))
	} else {
		builder.WriteString("unknown error")
	}
	builder.WriteString("\nPartial output is kept on disk.")

	data := payload{
		title:    "rcrd - Recording Failed",
		message:  builder.String(),
		tags:     []string{"rcrd", "session", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "rcrd - Test",
		message:  "Notification system test",
		tags:     []string{"rcrd", "test"},
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

func (noopService) NotifySessionCompleted(context.Context, string, time.Duration, int) error {
	return nil
}

func (noopService) NotifySessionFailed(context.Context, error, string) error {
	return nil
}

func (noopService) TestNotification(context.Context) error {
	return nil
}
