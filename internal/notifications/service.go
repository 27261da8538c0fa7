package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cardsync/internal/config"
)

const userAgent = "CardSync/0.1.0"

// Service defines the notification surface exposed to the sync engine and
// CLI commands.
type Service interface {
	NotifySyncStarted(ctx context.Context, libraries int) error
	NotifySyncCompleted(ctx context.Context, uploaded, failed int, duration time.Duration) error
	NotifySpoilerChanges(ctx context.Context, library string, changed int) error
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

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		syncEvents: cfg.Notifications.Sync,
		errEvents:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	syncEvents bool
	errEvents  bool
}

func (n *ntfyService) NotifySyncStarted(ctx context.Context, libraries int) error {
	if !n.syncEvents {
		return nil
	}
	data := payload{
		title:   "CardSync - Sync Started",
		message: fmt.Sprintf("Started card sync across %d libraries", libraries),
		tags:    []string{"cardsync", "sync", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySyncCompleted(ctx context.Context, uploaded, failed int, duration time.Duration) error {
	if !n.syncEvents {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "CardSync - Sync Complete"
		message = fmt.Sprintf("Card sync complete: %d cards uploaded in %s", uploaded, durationText)
	} else {
		title = "CardSync - Sync Complete (with errors)"
		message = fmt.Sprintf("Card sync complete: %d uploaded, %d failed in %s", uploaded, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"cardsync", "sync", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySpoilerChanges(ctx context.Context, library string, changed int) error {
	if !n.syncEvents || changed == 0 {
		return nil
	}
	data := payload{
		title:   "CardSync - Cards Updated",
		message: fmt.Sprintf("Swapped %d cards for changed watch states in %s", changed, strings.TrimSpace(library)),
		tags:    []string{"cardsync", "spoiler", "updated"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errEvents {
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
		title:    "CardSync - Error",
		message:  builder.String(),
		tags:     []string{"cardsync", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "CardSync - Test",
		message:  "Notification system test",
		tags:     []string{"cardsync", "test"},
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

func (noopService) NotifySyncStarted(context.Context, int) error                       { return nil }
func (noopService) NotifySyncCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifySpoilerChanges(context.Context, string, int) error            { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
