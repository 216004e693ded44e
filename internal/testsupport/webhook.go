package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// WebhookServer records {"text": ...} payloads posted to it.
type WebhookServer struct {
	*httptest.Server

	mu    sync.Mutex
	texts []string
}

// NewWebhookServer starts a webhook receiver and registers cleanup.
func NewWebhookServer(t testing.TB) *WebhookServer {
	t.Helper()
	s := &WebhookServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.texts = append(s.texts, payload.Text)
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(s.Close)
	return s
}

// Texts returns the received messages in order.
func (s *WebhookServer) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}
