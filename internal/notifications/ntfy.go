package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const userAgent = "tscribe/0.1.0"

// NtfySink publishes notifications to an ntfy topic URL.
type NtfySink struct {
	endpoint string
	client   *http.Client
}

// NewNtfySink posts to endpoint, a full topic URL. A nil client uses http.DefaultClient.
func NewNtfySink(endpoint string, client *http.Client) *NtfySink {
	if client == nil {
		client = http.DefaultClient
	}
	return &NtfySink{endpoint: endpoint, client: client}
}

// Deliver publishes one notification. Error notifications go out with high priority.
func (n *NtfySink) Deliver(ctx context.Context, note Notification) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(note.Text))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "tscribe - "+label(note.Kind))
	req.Header.Set("Tags", strings.Join([]string{"tscribe", note.Kind.String()}, ","))
	if note.Kind == Error {
		req.Header.Set("Priority", "high")
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
