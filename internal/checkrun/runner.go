package checkrun

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fantamorto/internal/config"
	"fantamorto/internal/deathwatch"
	"fantamorto/internal/lists"
	"fantamorto/internal/logging"
	"fantamorto/internal/notifications"
	"fantamorto/internal/roster"
	"fantamorto/internal/services"
	"fantamorto/internal/wiki"
)

// Deps carries the collaborators of a run. Nothing is process-global.
type Deps struct {
	Store    lists.Store
	Notifier notifications.Notifier
	Looker   wiki.Looker
	Now      func() time.Time
	Logger   *slog.Logger
}

// Report describes a finished run.
type Report struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Names      int                `json:"names"`
	Detection  wiki.Detection     `json:"detection"`
	Outcome    deathwatch.Outcome `json:"outcome"`
}

// Runner executes check runs for one configuration.
type Runner struct {
	cfg  *config.Config
	deps Deps
}

// New validates deps and builds a Runner.
func New(cfg *config.Config, deps Deps) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("checkrun: config required")
	}
	if deps.Store == nil || deps.Notifier == nil || deps.Looker == nil {
		return nil, errors.New("checkrun: store, notifier, and wikipedia client required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, deps: deps}, nil
}

// Run performs one check. Fatal errors leave the lists as they were at the
// last successful save; notification failures are reported in the Outcome.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: r.deps.Now()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.deps.Logger, "checkrun"))

	lock, err := AcquireLock(r.cfg.Paths.LockFile)
	if err != nil {
		return report, err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logging.WarnWithContext(logger, "failed to release run lock", "lock_release_failed",
				logging.String("lock", lock.Path()),
				logging.Error(releaseErr),
			)
		}
	}()

	game, err := roster.Load(r.cfg.Roster.Path)
	if err != nil {
		return report, services.Wrap(services.ErrConfigurationMissing, "checkrun", "load roster", r.cfg.Roster.Path, err)
	}
	names := game.Names()
	report.Names = len(names)
	logger.Info("check run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Int("teams", len(game)),
		logging.Int("names", len(names)),
	)

	resolverOpts := []wiki.ResolverOption{wiki.WithResolverLogger(logger)}
	if !r.cfg.AbortOnUnresolved() {
		resolverOpts = append(resolverOpts, wiki.WithDropUnresolved())
	}
	resolver, err := wiki.NewResolver(r.deps.Looker, r.cfg.Wikipedia.Languages, resolverOpts...)
	if err != nil {
		return report, err
	}
	report.Detection, err = resolver.Resolve(ctx, names)
	if err != nil {
		return report, err
	}

	machine, err := deathwatch.New(r.deps.Store, r.Keys(), r.deps.Notifier,
		deathwatch.WithRoster(game),
		deathwatch.WithClock(r.deps.Now),
		deathwatch.WithLogger(logger),
	)
	if err != nil {
		return report, err
	}
	report.Outcome, err = machine.Reconcile(ctx, report.Detection.Dead)
	if err != nil {
		return report, err
	}
	report.FinishedAt = r.deps.Now()

	logger.Info("check run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("dead_signals", len(report.Detection.Dead)),
		logging.Int("confirmed", len(report.Outcome.Confirmed)),
		logging.Int("newly_maybe", len(report.Outcome.NewlyMaybe)),
		logging.Int("notify_errors", len(report.Outcome.NotifyErrors)),
		logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// Keys returns the configured document keys.
func (r *Runner) Keys() lists.Keys {
	return KeysFor(r.cfg)
}

// KeysFor returns the document keys named by cfg.
func KeysFor(cfg *config.Config) lists.Keys {
	return lists.Keys{
		Confirmed: cfg.Storage.ConfirmedDocument,
		Maybe:     cfg.Storage.MaybeDocument,
		Years:     cfg.Storage.YearsDocument,
	}
}
