package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursecaptions/internal/config"
)

const userAgent = "coursecaptions/0.1.0"

// RunReport summarizes a finished course run.
type RunReport struct {
	Course         string
	TargetLanguage string
	Status         string
	Total          int
	Translated     int
	Skipped        int
	Failed         int
	Duration       time.Duration
}

// Service defines the notification surface used by the workflow runner.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyRunFailed(ctx context.Context, course string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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

type ntfyService struct {
	endpoint string
	client   *http.Client
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	title := fmt.Sprintf("Captions ready: %s", report.Course)
	tags := []string{"coursecaptions", "run", "completed"}
	priority := ""
	if report.Failed > 0 {
		title = fmt.Sprintf("Captions incomplete: %s", report.Course)
		tags = []string{"coursecaptions", "run", "partial"}
		priority = "high"
	}

	var message strings.Builder
	fmt.Fprintf(&message, "%d translated, %d skipped, %d failed of %d lectures", report.Translated, report.Skipped, report.Failed, report.Total)
	if report.TargetLanguage != "" {
		fmt.Fprintf(&message, "\nLanguage: %s", report.TargetLanguage)
	}
	fmt.Fprintf(&message, "\nElapsed: %s", formatDuration(report.Duration))

	return n.send(ctx, payload{
		title:    title,
		message:  message.String(),
		tags:     tags,
		priority: priority,
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, course string, err error) error {
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	return n.send(ctx, payload{
		title:    fmt.Sprintf("Caption run failed: %s", strings.TrimSpace(course)),
		message:  detail,
		tags:     []string{"coursecaptions", "run", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "coursecaptions test",
		message:  "Notification delivery is working",
		tags:     []string{"coursecaptions", "test"},
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

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error  { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
