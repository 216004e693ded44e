package deathwatch

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"fantamorto/internal/lists"
	"fantamorto/internal/logging"
	"fantamorto/internal/notifications"
	"fantamorto/internal/roster"
	"fantamorto/internal/scoring"
)

// Score is the bonus one team earns for one confirmed death.
type Score struct {
	Team   string `json:"team"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Age    int    `json:"age"`
}

// Outcome summarizes one reconciliation.
type Outcome struct {
	// Confirmed moved from maybe to confirmed this run, in signal order, after
	// any names whose earlier confirmation was saved but not announced.
	Confirmed []string `json:"confirmed"`
	// NewlyMaybe were flagged for the first time this run.
	NewlyMaybe []string `json:"newly_maybe"`
	// Cleared were dropped from the maybe list because nobody had a signal.
	Cleared []string `json:"cleared"`
	// StillPending stay on the maybe list without a signal this run.
	StillPending []string `json:"still_pending"`
	// AlreadyConfirmed had a signal but were confirmed on an earlier run.
	AlreadyConfirmed []string `json:"already_confirmed"`
	Scores           []Score  `json:"scores"`
	Notified         int      `json:"notified"`
	NotifyErrors     []error  `json:"-"`

	// State is the set of lists after the run.
	State lists.State `json:"-"`
}

// Machine reconciles fresh signals against the persisted lists.
type Machine struct {
	store    lists.Store
	keys     lists.Keys
	notifier notifications.Notifier
	roster   roster.Roster
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithRoster supplies team ownership and birth years for score messages.
func WithRoster(r roster.Roster) Option {
	return func(m *Machine) { m.roster = r }
}

// WithClock overrides the clock used to compute ages.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logging.NewComponentLogger(logger, "deathwatch") }
}

// New builds a Machine.
func New(store lists.Store, keys lists.Keys, notifier notifications.Notifier, opts ...Option) (*Machine, error) {
	if store == nil {
		return nil, errors.New("deathwatch: list store required")
	}
	if notifier == nil {
		return nil, errors.New("deathwatch: notifier required")
	}
	if keys.Confirmed == "" || keys.Maybe == "" || keys.Confirmed == keys.Maybe {
		return nil, errors.New("deathwatch: two distinct list keys required")
	}
	if keys.Years != "" && (keys.Years == keys.Confirmed || keys.Years == keys.Maybe) {
		return nil, errors.New("deathwatch: years key must differ from the list keys")
	}
	m := &Machine{
		store:    store,
		keys:     keys,
		notifier: notifier,
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Reconcile applies one run's fresh death signals. It returns an error only
// when the lists cannot be read or written; notification failures are
// collected in Outcome.NotifyErrors.
func (m *Machine) Reconcile(ctx context.Context, fresh []string) (Outcome, error) {
	prev, err := lists.Load(ctx, m.store, m.keys)
	if err != nil {
		return Outcome{}, err
	}

	outcome, next := plan(prev, fresh, m.now().Year())
	confirmedWritten, maybeWritten, err := lists.Save(ctx, m.store, m.keys, prev, next)
	if err != nil {
		return Outcome{}, err
	}
	outcome.State = next

	m.logger.Info("lists reconciled",
		logging.String(logging.FieldEventType, "lists_reconciled"),
		logging.Int("fresh", len(fresh)),
		logging.Int("confirmed", len(outcome.Confirmed)),
		logging.Int("newly_maybe", len(outcome.NewlyMaybe)),
		logging.Int("cleared", len(outcome.Cleared)),
		logging.Int("still_pending", len(outcome.StillPending)),
		logging.Bool("confirmed_written", confirmedWritten),
		logging.Bool("maybe_written", maybeWritten),
	)

	m.announce(ctx, &outcome)
	return outcome, nil
}

// plan computes the transitions without side effects. year is recorded for
// every name confirmed by this run.
func plan(prev lists.State, fresh []string, year int) (Outcome, lists.State) {
	var outcome Outcome

	// A name left in both lists by an interrupted save was confirmed but never
	// announced. It is announced now and leaves the maybe list.
	var recovered, pending []string
	for _, name := range prev.Maybe {
		switch {
		case slices.Contains(prev.Confirmed, name):
			if !slices.Contains(recovered, name) {
				recovered = append(recovered, name)
			}
		case !slices.Contains(pending, name):
			pending = append(pending, name)
		}
	}
	outcome.Confirmed = append(outcome.Confirmed, recovered...)

	signals := make([]string, 0, len(fresh))
	for _, name := range fresh {
		if slices.Contains(signals, name) || slices.Contains(recovered, name) {
			continue
		}
		if slices.Contains(prev.Confirmed, name) {
			outcome.AlreadyConfirmed = append(outcome.AlreadyConfirmed, name)
			continue
		}
		signals = append(signals, name)
	}

	next := lists.State{
		Confirmed: slices.Clone(prev.Confirmed),
		Maybe:     []string{},
	}
	if next.Confirmed == nil {
		next.Confirmed = []string{}
	}

	if len(signals) == 0 {
		outcome.Cleared = pending
	} else {
		for _, name := range signals {
			if slices.Contains(pending, name) {
				outcome.Confirmed = append(outcome.Confirmed, name)
				next.Confirmed = append(next.Confirmed, name)
				continue
			}
			outcome.NewlyMaybe = append(outcome.NewlyMaybe, name)
		}
		for _, name := range pending {
			if !slices.Contains(outcome.Confirmed, name) {
				outcome.StillPending = append(outcome.StillPending, name)
				next.Maybe = append(next.Maybe, name)
			}
		}
		next.Maybe = append(next.Maybe, outcome.NewlyMaybe...)
	}

	next.Years = make(map[string]int, len(next.Confirmed))
	for _, name := range next.Confirmed {
		if y, ok := prev.Years[name]; ok {
			next.Years[name] = y
		}
	}
	for _, name := range outcome.Confirmed {
		if _, ok := next.Years[name]; !ok {
			next.Years[name] = year
		}
	}
	return outcome, next
}

// announce sends, for each confirmed name, one death message followed by one
// score message per owning team. Points are computed as of the year the death
// was confirmed. Delivery is sequential so messages arrive in signal order.
func (m *Machine) announce(ctx context.Context, outcome *Outcome) {
	for _, name := range outcome.Confirmed {
		year, ok := outcome.State.Years[name]
		if !ok {
			year = m.now().Year()
		}
		owners := m.roster.Owners(name)
		messages := []string{notifications.DeathMessage(name, owners)}
		for _, team := range owners {
			birthYear := m.roster[team][name]
			score := Score{
				Team:   team,
				Name:   name,
				Points: scoring.Bonus(birthYear, year),
				Age:    scoring.Age(birthYear, year),
			}
			outcome.Scores = append(outcome.Scores, score)
			messages = append(messages, notifications.ScoreMessage(team, name, score.Points, score.Age))
		}
		for _, message := range messages {
			if err := m.notifier.Notify(ctx, message); err != nil {
				logging.WarnWithContext(m.logger, "notification failed", "notification_failed",
					logging.Subject(name),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "run 'fantamorto test-notify' to check the channels"),
					logging.String(logging.FieldImpact, "death is recorded but was not announced"),
				)
				outcome.NotifyErrors = append(outcome.NotifyErrors, err)
				continue
			}
			outcome.Notified++
		}
	}
}
