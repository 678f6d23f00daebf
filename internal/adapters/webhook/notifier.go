package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ntask/core/internal/infrastructure/config"
	"github.com/ntask/core/internal/infrastructure/logger"
)

const defaultTimeout = 10 * time.Second

// Notifier posts JSON events to per-event configured automation endpoints.
// Delivery is at-most-once and best-effort: every failure path ends in a
// log line, never an error to the caller.
type Notifier struct {
	client *http.Client
	urls   map[string]string
	logger *logger.Logger
}

// payload is the body shape the automation system expects.
type payload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// New creates a notifier from the configured event -> URL map.
func New(cfg config.WebhookConfig, log *logger.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		urls:   cfg.URLs(),
		logger: log,
	}
}

// Notify posts the event to its configured URL. Unconfigured events are
// logged at debug with the payload, matching the source's behavior when no
// webhook URL is set.
func (n *Notifier) Notify(ctx context.Context, event string, data any) {
	url := n.urls[event]
	if url == "" {
		n.logger.Debug("Webhook URL not configured, dropping event", "event", event)
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(payload{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		n.logger.Error("Failed to encode webhook payload", "event", event, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("Failed to build webhook request", "event", event, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("Webhook delivery failed", "event", event, "url", url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Error("Webhook rejected", "event", event, "url", url, "status", resp.StatusCode)
		return
	}

	n.logger.Debug("Webhook delivered", "event", event, "status", resp.StatusCode)
}
