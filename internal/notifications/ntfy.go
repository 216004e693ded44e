package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Ntfy publishes plain-text messages to an ntfy topic URL.
type Ntfy struct {
	endpoint string
	client   *http.Client
	title    string
	tags     []string
	priority string
}

// NewNtfy builds an ntfy notifier for the topic URL.
func NewNtfy(topic string, opts ...Option) *Ntfy {
	o := applyOptions(opts)
	return &Ntfy{
		endpoint: strings.TrimSpace(topic),
		client:   o.client,
		title:    "Fantamorto",
		tags:     []string{"fantamorto", "skull"},
		priority: "high",
	}
}

func (n *Ntfy) Notify(ctx context.Context, message string) error {
	if n == nil || n.client == nil || n.endpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if n.title != "" {
		req.Header.Set("Title", n.title)
	}
	if len(n.tags) > 0 {
		req.Header.Set("Tags", strings.Join(n.tags, ","))
	}
	if n.priority != "" && n.priority != "default" {
		req.Header.Set("Priority", n.priority)
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
