package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"fantamorto/internal/checkrun"
	"fantamorto/internal/config"
	"fantamorto/internal/logging"
	"fantamorto/internal/services"
)

// ErrAlreadyWatching is returned when another watch process holds the lock.
var ErrAlreadyWatching = errors.New("another fantamorto watch instance is already running")

// Runner performs a single check run.
type Runner interface {
	Run(ctx context.Context) (checkrun.Report, error)
}

// Daemon schedules check runs and enforces single-instance execution.
type Daemon struct {
	runner     Runner
	logger     *slog.Logger
	interval   time.Duration
	runOnStart bool

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.Mutex
	status Status
}

// Status represents watch loop runtime information.
type Status struct {
	Running      bool
	Interval     time.Duration
	LockFilePath string
	Runs         int
	Failures     int
	LastRunID    string
	LastRunAt    time.Time
	LastError    string
	NextRunAt    time.Time
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithInterval overrides the configured schedule interval.
func WithInterval(interval time.Duration) Option {
	return func(d *Daemon) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// New constructs a daemon around runner.
func New(cfg *config.Config, runner Runner, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.StateDir, "watch.lock")
	d := &Daemon{
		runner:     runner,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		interval:   cfg.ScheduleInterval(),
		runOnStart: cfg.Schedule.RunOnStart,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the watch lock and launches the schedule loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyWatching
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)
	d.mu.Lock()
	d.status.Running = true
	d.mu.Unlock()

	d.logger.Info("fantamorto watch started",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("lock", d.lockPath),
		logging.Duration("interval", d.interval),
	)
	go d.loop(loopCtx)
	return nil
}

// Stop cancels the loop, waits for an in-flight run, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.cancel()
	<-d.done
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release watch lock", "watch_lock_release_failed",
			logging.String("lock", d.lockPath),
			logging.Error(err),
		)
	}
	d.mu.Lock()
	d.status.Running = false
	d.status.NextRunAt = time.Time{}
	d.mu.Unlock()
	d.running.Store(false)
	d.logger.Info("fantamorto watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
}

// Wait blocks until the loop exits, either through Stop or because the
// context passed to Start was cancelled.
func (d *Daemon) Wait() {
	if done := d.done; done != nil {
		<-done
	}
}

// Status returns a snapshot of the loop state.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := d.status
	status.Interval = d.interval
	status.LockFilePath = d.lockPath
	return status
}

func (d *Daemon) loop(ctx context.Context) {
	defer close(d.done)

	if d.runOnStart {
		d.runOnce(ctx)
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	d.scheduleNext()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
			d.scheduleNext()
		}
	}
}

func (d *Daemon) scheduleNext() {
	d.mu.Lock()
	d.status.NextRunAt = time.Now().Add(d.interval)
	d.mu.Unlock()
}

func (d *Daemon) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := d.runner.Run(ctx)

	d.mu.Lock()
	d.status.Runs++
	d.status.LastRunID = report.RunID
	d.status.LastRunAt = time.Now()
	d.status.LastError = ""
	if err != nil {
		d.status.Failures++
		d.status.LastError = err.Error()
	}
	d.mu.Unlock()

	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}
	logger := logging.WithContext(services.WithRunID(ctx, report.RunID), d.logger)
	hint := "the next scheduled run retries from the last saved lists"
	if errors.Is(err, checkrun.ErrRunInProgress) {
		hint = "a manual run holds the run lock; this tick was skipped"
	}
	logging.ErrorWithContext(logger, "scheduled run failed", "watch_run_failed",
		logging.String(logging.FieldErrorKind, services.Kind(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
	)
}
