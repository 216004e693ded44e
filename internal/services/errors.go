package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers classify failures so the entry point can decide whether a run
// is fatal. Always tag errors with one of these through Wrap.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrUpstreamLookup       = errors.New("upstream lookup failure")
	ErrUnresolvedSubject    = errors.New("unresolved subject")
	ErrPersistence          = errors.New("persistence failure")
	ErrNotification         = errors.New("notification failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstreamLookup
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, used as the
// error_kind log field.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, ErrUpstreamLookup):
		return "upstream_lookup"
	case errors.Is(err, ErrUnresolvedSubject):
		return "unresolved_subject"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrNotification):
		return "notification"
	default:
		return "unknown"
	}
}

// IsFatal reports whether err must abort the run. Notification failures never
// roll back persisted state, so they are the only non-fatal kind.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotification)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
