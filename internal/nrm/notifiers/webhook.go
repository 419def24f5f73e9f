package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/daniacca/nextreaction/internal/nrm"
)

// Header names carrying event identity, so receivers can re-order or
// de-duplicate deliveries without parsing the body. The notification
// manager retries failed sends, which makes duplicate deliveries normal.
const (
	headerRun = "X-Simulation-Run"
	headerSeq = "X-Jump-Seq"
)

const defaultWebhookTimeout = 5 * time.Second

// WebhookNotifier posts each jump event to a fixed HTTP endpoint. Each
// request gets its own deadline derived from the delivery context, so one
// stalled endpoint cannot pin a manager worker for the whole dispatch
// timeout.
type WebhookNotifier struct {
	id      string
	url     string
	timeout time.Duration
	headers map[string]string
	client  *http.Client
}

// NewWebhookNotifier creates a webhook notifier posting to url.
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		timeout: defaultWebhookTimeout,
		headers: make(map[string]string),
		client:  &http.Client{},
	}
}

// SetTimeout overrides the per-request deadline.
func (wn *WebhookNotifier) SetTimeout(d time.Duration) {
	if d > 0 {
		wn.timeout = d
	}
}

// SetHeader adds a custom header to every request, e.g. an auth token.
func (wn *WebhookNotifier) SetHeader(key, value string) {
	wn.headers[key] = value
}

// ID returns the notifier ID.
func (wn *WebhookNotifier) ID() string {
	return wn.id
}

// Type returns the notifier type.
func (wn *WebhookNotifier) Type() string {
	return "webhook"
}

// Notify posts the jump event as JSON. Any non-2xx response counts as a
// delivery failure so the manager's retry policy kicks in.
func (wn *WebhookNotifier) Notify(ctx context.Context, event nrm.JumpEvent) error {
	payload, err := event.JSON()
	if err != nil {
		return fmt.Errorf("webhook %s: encode event: %w", wn.id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, wn.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook %s: build request: %w", wn.id, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerRun, event.RunID)
	req.Header.Set(headerSeq, strconv.Itoa(event.Seq))
	for key, value := range wn.headers {
		req.Header.Set(key, value)
	}

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", wn.id, err)
	}
	// Drain so the connection can be reused by the next event.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: endpoint returned status %d", wn.id, resp.StatusCode)
	}
	return nil
}

// Close releases nothing; the underlying transport caches connections and
// cleans up on its own.
func (wn *WebhookNotifier) Close() error {
	return nil
}
