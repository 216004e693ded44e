package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fantamorto/internal/logging"
	"fantamorto/internal/services"
)

// Resolver cascades names through an ordered list of language editions.
type Resolver struct {
	looker    Looker
	languages []string
	abort     bool
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDropUnresolved makes the resolver log and discard names no edition can
// resolve instead of failing the run.
func WithDropUnresolved() ResolverOption {
	return func(r *Resolver) {
		r.abort = false
	}
}

// WithResolverLogger attaches a logger to the resolver.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "resolver")
	}
}

// NewResolver builds a resolver trying languages in order.
func NewResolver(looker Looker, languages []string, opts ...ResolverOption) (*Resolver, error) {
	if looker == nil {
		return nil, errors.New("wikipedia looker required")
	}
	langs := make([]string, 0, len(languages))
	for _, lang := range languages {
		if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		return nil, errors.New("at least one wikipedia language required")
	}
	r := &Resolver{looker: looker, languages: langs, abort: true, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Languages returns the cascade order.
func (r *Resolver) Languages() []string {
	return append([]string(nil), r.languages...)
}

// Resolve looks every name up in the first edition, then re-queries only the
// names reported missing or redirected in each following edition. Names found
// alive or dead are never queried again. When names remain unresolved after
// the last edition the resolver either fails with ErrUnresolvedSubject or
// drops them, depending on its policy; the returned Detection is populated in
// both cases.
func (r *Resolver) Resolve(ctx context.Context, names []string) (Detection, error) {
	pending := dedupe(names)
	var detection Detection
	status := make(map[string]Subject, len(pending))

	for _, lang := range r.languages {
		if len(pending) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return Detection{}, err
		}
		result, err := r.looker.Lookup(services.WithLanguage(ctx, lang), pending, lang)
		if err != nil {
			return Detection{}, err
		}
		for _, name := range result.Dead {
			status[name] = Subject{Name: name, Status: StatusDead, Language: lang}
		}
		for _, name := range result.Alive {
			status[name] = Subject{Name: name, Status: StatusAlive, Language: lang}
		}
		detection.Passes = append(detection.Passes, PassSummary{
			Language: lang,
			Queried:  len(pending),
			Dead:     len(result.Dead),
			Alive:    len(result.Alive),
			Missing:  len(result.MissingOrRedirect),
		})
		r.logger.Debug("language pass complete",
			logging.String(logging.FieldEventType, "wiki_pass"),
			logging.String(logging.FieldLanguage, lang),
			logging.Int("queried", len(pending)),
			logging.Int("dead", len(result.Dead)),
			logging.Int("missing", len(result.MissingOrRedirect)),
		)
		pending = result.MissingOrRedirect
	}

	for _, name := range pending {
		status[name] = Subject{Name: name, Status: StatusUnresolved}
	}
	for _, name := range dedupe(names) {
		subject, ok := status[name]
		if !ok {
			subject = Subject{Name: name, Status: StatusAlive}
		}
		detection.Subjects = append(detection.Subjects, subject)
		switch subject.Status {
		case StatusDead:
			detection.Dead = append(detection.Dead, name)
		case StatusUnresolved:
			detection.Unresolved = append(detection.Unresolved, name)
		}
	}

	if len(detection.Unresolved) == 0 {
		return detection, nil
	}
	if r.abort {
		msg := fmt.Sprintf("no page in %s for: %s", strings.Join(r.languages, ", "), strings.Join(detection.Unresolved, ", "))
		return detection, services.Wrap(services.ErrUnresolvedSubject, "resolver", "resolve", msg, nil)
	}
	logging.WarnWithContext(r.logger, "dropping unresolved names", "wiki_unresolved_dropped",
		logging.Int("count", len(detection.Unresolved)),
		logging.Names("names", detection.Unresolved),
		logging.String(logging.FieldErrorHint, "fix the spelling in the roster or add a language"),
		logging.String(logging.FieldImpact, "these names are treated as alive this run"),
	)
	return detection, nil
}
