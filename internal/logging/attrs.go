package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fantamorto/internal/services"
)

type Attr = slog.Attr

// maxLoggedNames bounds how many roster names a single attribute carries.
const maxLoggedNames = 20

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Subject tags a record with one roster name.
func Subject(name string) Attr { return slog.String(FieldSubject, name) }

// Names joins names into one attribute, eliding everything past the first
// maxLoggedNames.
func Names(key string, names []string) Attr {
	if len(names) <= maxLoggedNames {
		return slog.String(key, strings.Join(names, ", "))
	}
	shown := strings.Join(names[:maxLoggedNames], ", ")
	return slog.String(key, fmt.Sprintf("%s (+%d more)", shown, len(names)-maxLoggedNames))
}

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func Args(attrs ...Attr) []any {
	return attrsToArgs(attrs)
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey returns true if any attribute in attrs has the given key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// FieldImpact is the standardized key for user-facing consequence of a warning.
const FieldImpact = "impact"

// WarnWithContext logs a warning with enforced event_type, error_hint, and impact fields.
// If any of these fields are missing from attrs, defaults are injected.
// Every WARN states its cause, its impact, and the next step.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs, eventType)
	if !HasAttrKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "check run continued"))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error with enforced event_type, error_hint, and
// error_kind fields. error_kind is derived from the error attribute when the
// caller did not set it.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, Args(withDefaults(attrs, eventType)...)...)
}

func withDefaults(attrs []Attr, eventType string) []Attr {
	if !HasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !HasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "check logs for details"))
	}
	if !HasAttrKey(attrs, FieldErrorKind) {
		if err := errorFromAttrs(attrs); err != nil {
			attrs = append(attrs, String(FieldErrorKind, services.Kind(err)))
		}
	}
	return attrs
}

func errorFromAttrs(attrs []Attr) error {
	for _, a := range attrs {
		if a.Key != "error" {
			continue
		}
		if err, ok := a.Value.Any().(error); ok {
			return err
		}
	}
	return nil
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
