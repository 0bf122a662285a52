package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"axon/internal/logging"
	"axon/internal/runstore"
	"axon/internal/services/embedding"
)

// Options configures a staggered embedding launch.
type Options struct {
	// Workers is the number of background invocations before the foreground one.
	Workers int
	// Stagger separates consecutive background launches.
	Stagger time.Duration
	// Settle separates the last background launch from the foreground one.
	Settle time.Duration
	// Readiness gates each stagger on output-directory activity instead of
	// waiting the full fixed delay.
	Readiness        bool
	ReadinessTimeout time.Duration
	// MinFreeGiB aborts the launch when the output volume has less free
	// space. Zero disables the check.
	MinFreeGiB int

	Invocation embedding.Invocation
	// LogDir receives one log file per invocation.
	LogDir string
	// LockPath guards against concurrent launches over the same output.
	LockPath string
}

// Result summarizes a completed launch run.
type Result struct {
	RunID              string
	Invocations        int
	BackgroundFailures int
	ForegroundExit     int
	Elapsed            time.Duration
}

// Process is one started inference invocation, as the launcher observes it.
// *embedding.Process satisfies it.
type Process interface {
	PID() int
	Args() []string
	Wait() error
}

// Client starts inference processes.
type Client interface {
	Start(ctx context.Context, inv embedding.Invocation) (Process, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, inv embedding.Invocation) (Process, error)

// Start implements Client.
func (f ClientFunc) Start(ctx context.Context, inv embedding.Invocation) (Process, error) {
	return f(ctx, inv)
}

// Launcher issues the staggered sequence of inference invocations.
type Launcher struct {
	client Client
	store  *runstore.Store
	logger *slog.Logger

	// sleep is context-aware and replaced in tests.
	sleep func(context.Context, time.Duration) error
	// waitActivity blocks until the output directory shows activity or the
	// timeout expires; replaced in tests.
	waitActivity func(context.Context, string, time.Duration) error
}

// New constructs a launcher.
func New(client Client, store *runstore.Store, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Launcher{
		client:       client,
		store:        store,
		logger:       logger,
		sleep:        sleepCtx,
		waitActivity: waitForActivity,
	}
}

// Run executes the launch plan: Workers background invocations separated by
// the stagger delay, a settle delay, then one foreground invocation whose
// exit code becomes the run's outcome. Background failures are recorded but
// do not abort the run.
func (l *Launcher) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Workers < 1 {
		return nil, errors.New("at least one background worker required")
	}
	if opts.Invocation.Overrides.OutputPath == "" {
		return nil, errors.New("output path required")
	}

	if err := os.MkdirAll(opts.Invocation.Overrides.OutputPath, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := checkFreeSpace(opts.Invocation.Overrides.OutputPath, opts.MinFreeGiB); err != nil {
		return nil, err
	}

	if opts.LockPath != "" {
		lock := flock.New(opts.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire launch lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another launch is already running (lock %s)", opts.LockPath)
		}
		defer func() { _ = lock.Unlock() }()
	}

	runID := uuid.NewString()
	start := time.Now()
	logger := l.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("embedding launch starting",
		logging.Int("workers", opts.Workers),
		logging.Duration("stagger", opts.Stagger),
		logging.Duration("settle", opts.Settle),
		logging.Bool("readiness", opts.Readiness))

	var (
		group, groupCtx = errgroup.WithContext(ctx)
		mu              sync.Mutex
		backgroundFails int
	)

	for slot := 0; slot < opts.Workers; slot++ {
		if slot > 0 {
			if err := l.pause(ctx, opts, logger); err != nil {
				return nil, err
			}
		}
		proc, recordID, err := l.launch(ctx, opts, runID, slot, false)
		if err != nil {
			// Preserve fire-and-forget semantics: a worker that fails to
			// start is recorded and the plan continues.
			logger.Warn("background worker failed to start",
				logging.Int(logging.FieldWorker, slot),
				logging.Error(err))
			mu.Lock()
			backgroundFails++
			mu.Unlock()
			continue
		}
		logger.Info("background worker launched",
			logging.Int(logging.FieldWorker, slot),
			logging.Int(logging.FieldPID, proc.PID()))

		slot := slot
		group.Go(func() error {
			code := exitCode(proc.Wait())
			l.finish(groupCtx, recordID, code)
			if code != 0 {
				logger.Warn("background worker exited non-zero",
					logging.Int(logging.FieldWorker, slot),
					logging.Int("exit_code", code))
				mu.Lock()
				backgroundFails++
				mu.Unlock()
			}
			return nil
		})
	}

	logger.Info("settling before foreground invocation", logging.Duration("delay", opts.Settle))
	if err := l.sleep(ctx, opts.Settle); err != nil {
		return nil, err
	}

	foreExit := 0
	proc, recordID, err := l.launch(ctx, opts, runID, opts.Workers, true)
	if err != nil {
		_ = group.Wait()
		return nil, fmt.Errorf("foreground invocation: %w", err)
	}
	logger.Info("foreground invocation launched", logging.Int(logging.FieldPID, proc.PID()))
	waitErr := proc.Wait()
	foreExit = exitCode(waitErr)
	l.finish(ctx, recordID, foreExit)

	_ = group.Wait()

	result := &Result{
		RunID:              runID,
		Invocations:        opts.Workers + 1,
		BackgroundFailures: backgroundFails,
		ForegroundExit:     foreExit,
		Elapsed:            time.Since(start),
	}
	if waitErr != nil {
		return result, fmt.Errorf("foreground invocation exited with code %d", foreExit)
	}
	logger.Info("embedding launch completed",
		logging.Int("invocations", result.Invocations),
		logging.Int("background_failures", backgroundFails),
		logging.Duration("elapsed", result.Elapsed))
	return result, nil
}

// pause waits between background launches. With readiness enabled the wait
// ends as soon as the output directory shows activity; the fixed stagger is
// the fallback when no signal appears in time.
func (l *Launcher) pause(ctx context.Context, opts Options, logger *slog.Logger) error {
	if !opts.Readiness {
		return l.sleep(ctx, opts.Stagger)
	}
	err := l.waitActivity(ctx, opts.Invocation.Overrides.OutputPath, opts.ReadinessTimeout)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoSignal) {
		logger.Warn("no readiness signal observed, falling back to fixed stagger",
			logging.Duration("stagger", opts.Stagger))
		return l.sleep(ctx, opts.Stagger)
	}
	return err
}

func (l *Launcher) launch(ctx context.Context, opts Options, runID string, slot int, foreground bool) (Process, int64, error) {
	inv := opts.Invocation
	if opts.LogDir != "" {
		name := fmt.Sprintf("embed-%s-worker-%d.log", runID, slot)
		if foreground {
			name = fmt.Sprintf("embed-%s-foreground.log", runID)
		}
		inv.LogPath = filepath.Join(opts.LogDir, name)
	}

	proc, err := l.client.Start(ctx, inv)
	if err != nil {
		return nil, 0, err
	}

	var recordID int64
	if l.store != nil {
		record, storeErr := l.store.NewInvocation(ctx, runID, runstore.KindEmbed, slot, foreground,
			strings.Join(proc.Args(), " "), inv.LogPath)
		if storeErr != nil {
			l.logger.Warn("failed to record invocation", logging.Error(storeErr))
		} else {
			recordID = record.ID
			if err := l.store.MarkStarted(ctx, recordID, proc.PID()); err != nil {
				l.logger.Warn("failed to mark invocation started", logging.Error(err))
			}
		}
	}
	return proc, recordID, nil
}

func (l *Launcher) finish(ctx context.Context, recordID int64, code int) {
	if l.store == nil || recordID == 0 {
		return
	}
	// The run context may already be cancelled; still record the outcome.
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := l.store.MarkFinished(ctx, recordID, code); err != nil {
		l.logger.Warn("failed to mark invocation finished", logging.Error(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
