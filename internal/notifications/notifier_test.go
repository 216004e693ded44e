package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fantamorto/internal/config"
	"fantamorto/internal/notifications"
	"fantamorto/internal/services"
)

func TestWebhookPostsTextPayload(t *testing.T) {
	var got struct {
		Text string `json:"text"`
	}
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	webhook, err := notifications.NewWebhook(server.URL)
	if err != nil {
		t.Fatalf("NewWebhook returned error: %v", err)
	}
	if err := webhook.Notify(context.Background(), "💀 X is dead."); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if got.Text != "💀 X is dead." {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %q", contentType)
	}
}

func TestWebhookReportsNonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	webhook, err := notifications.NewWebhook(server.URL)
	if err != nil {
		t.Fatalf("NewWebhook returned error: %v", err)
	}
	err = webhook.Notify(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestNewWebhookRejectsRelativeURL(t *testing.T) {
	if _, err := notifications.NewWebhook("/hooks/x"); err == nil {
		t.Fatal("expected relative url to be rejected")
	}
}

func TestNtfySetsHeaders(t *testing.T) {
	var title, tags, priority, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("Title")
		tags = r.Header.Get("Tags")
		priority = r.Header.Get("Priority")
		data, _ := io.ReadAll(r.Body)
		body = string(data)
	}))
	t.Cleanup(server.Close)

	if err := notifications.NewNtfy(server.URL+"/fantamorto").Notify(context.Background(), "ciao"); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if title != "Fantamorto" || tags != "fantamorto,skull" || priority != "high" || body != "ciao" {
		t.Fatalf("unexpected request: title=%q tags=%q priority=%q body=%q", title, tags, priority, body)
	}
}

func TestDiscordExecutesWebhook(t *testing.T) {
	var path, content string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var payload struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		content = payload.Content
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	target, _ := url.Parse(server.URL)
	client := &http.Client{Transport: rewriteTransport{target: target}}
	discord, err := notifications.NewDiscord("123", "secret", notifications.WithHTTPClient(client))
	if err != nil {
		t.Fatalf("NewDiscord returned error: %v", err)
	}
	if err := discord.Notify(context.Background(), "💀 X is dead."); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if !strings.HasSuffix(path, "/webhooks/123/secret") {
		t.Fatalf("unexpected webhook path %q", path)
	}
	if content != "💀 X is dead." {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestNewDiscordRequiresToken(t *testing.T) {
	if _, err := notifications.NewDiscord("123", ""); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestFanoutJoinsFailuresAndContinues(t *testing.T) {
	var delivered []string
	ok := notifications.NotifierFunc(func(_ context.Context, msg string) error {
		delivered = append(delivered, msg)
		return nil
	})
	failing := notifications.NotifierFunc(func(context.Context, string) error {
		return errors.New("boom")
	})
	fanout := notifications.NewFanout(nil,
		notifications.Channel{Name: "first", Notifier: failing},
		notifications.Channel{Name: "second", Notifier: ok},
	)

	err := fanout.Notify(context.Background(), "hello")
	if !errors.Is(err, services.ErrNotification) {
		t.Fatalf("expected notification marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "first: boom") {
		t.Fatalf("expected channel name in error, got %v", err)
	}
	if len(delivered) != 1 || delivered[0] != "hello" {
		t.Fatalf("expected second channel to still receive message, got %v", delivered)
	}
}

func TestNewFromConfigChannels(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.WebhookURL = "https://hooks.example.com/x"
	cfg.Notifications.NtfyTopic = "https://ntfy.sh/fantamorto"
	cfg.Notifications.DiscordWebhookID = "1"
	cfg.Notifications.DiscordWebhookToken = "t"

	fanout, err := notifications.NewFromConfig(&cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if got := strings.Join(fanout.Channels(), ","); got != "webhook,ntfy,discord" {
		t.Fatalf("unexpected channels %q", got)
	}
}

func TestMessages(t *testing.T) {
	if got := notifications.DeathMessage("X", []string{"TeamA", "TeamB"}); got != "💀 X is dead. Drafted by: TeamA, TeamB." {
		t.Fatalf("unexpected death message %q", got)
	}
	if got := notifications.ScoreMessage("TeamA", "X", 24, 76); got != "🏆 TeamA scores 24 points for X (age 76)." {
		t.Fatalf("unexpected score message %q", got)
	}
}

type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	clone := r.Clone(r.Context())
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	clone.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}
