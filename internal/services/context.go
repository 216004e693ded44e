package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	componentKey contextKey = "component"
	languageKey  contextKey = "language"
)

// WithRunID annotates context with the identifier of the current check run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithComponent annotates context with the component currently doing work.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLanguage annotates context with the Wikipedia edition being queried.
func WithLanguage(ctx context.Context, lang string) context.Context {
	if lang == "" {
		return ctx
	}
	return context.WithValue(ctx, languageKey, lang)
}

// LanguageFromContext returns the Wikipedia edition if present.
func LanguageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(languageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
