package testsupport

import (
	"context"
	"sync"
)

// RecordingNotifier captures every message it is asked to send. Messages for
// which Fail returns a non-nil error are recorded as failed and not delivered.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
	failed   []string

	// Fail, when set, decides whether a message fails.
	Fail func(message string) error
}

func (r *RecordingNotifier) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		if err := r.Fail(message); err != nil {
			r.failed = append(r.failed, message)
			return err
		}
	}
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns delivered messages in order.
func (r *RecordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Failed returns messages that failed delivery.
func (r *RecordingNotifier) Failed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failed...)
}
