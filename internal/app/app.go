// Package app builds the single shared App value threaded through every
// component, replacing the "global mutable state" the spec's design notes
// (section 9) call out: a Context carrying a cancellation signal plus a
// handle to the ProgressStore, constructed once in main and passed down
// rather than read from package-level globals the way the teacher's own
// `glcm`/`ste` package-level state works.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/config"
	"github.com/foldermover/foldermover/internal/diskwatch"
	"github.com/foldermover/foldermover/internal/lock"
	"github.com/foldermover/foldermover/internal/progress"
	"github.com/foldermover/foldermover/internal/scratch"
	"github.com/foldermover/foldermover/internal/stagingstore"
	"github.com/foldermover/foldermover/internal/status"
	"github.com/foldermover/foldermover/internal/transferagent"
)

// App bundles every piece of shared plumbing a component needs: logger,
// config, Staging Store client, Transfer Agent, progress store,
// single-instance lock, disk watcher, status monitor, and the cancellation
// context that signal handlers trip.
type App struct {
	Config    *config.Config
	Logger    common.ILogger
	Staging   stagingstore.Store
	Transfer  transferagent.Agent
	Progress  *progress.Store
	Disk      *diskwatch.Watcher
	Status    *status.Monitor
	RunID     string

	ctx    context.Context
	cancel context.CancelFunc
	lock   *lock.InstanceLock
}

// New wires up everything for one component ("mapper", "zipper",
// "unzipper", or the read-only "status" command), acquires that component's single-instance lock, installs
// signal handlers, and runs orphan cleanup. Callers must call Close when
// done, which releases the lock and flushes the logger (spec section 5:
// "the single-instance lock is released, guaranteed via an at-exit
// handler").
func New(component string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating work dir")
	}

	runID := uuid.NewString()[:8]
	logger, err := common.NewLogger(cfg.WorkDir, component, runID)
	if err != nil {
		return nil, errors.Wrap(err, "creating logger")
	}

	instanceLock := lock.New(cfg.WorkDir, component)
	if err := instanceLock.Acquire(time.Duration(cfg.InstanceLockTimout) * time.Second); err != nil {
		logger.Log(common.ELogLevel.Error(), "another instance is already running: "+err.Error())
		return nil, err
	}

	staging, err := stagingstore.New(cfg)
	if err != nil {
		instanceLock.Release()
		return nil, err
	}

	transfer := transferagent.New("rclone", cfg.RcloneConfig)
	progressStore := progress.NewStore(staging, cfg.S3Prefix, cfg.MaxCompletedKeys)
	diskWatcher := diskwatch.New(cfg.WorkDir, cfg.DiskLimitPercent, cfg.DiskBackpressure)
	statusMonitor := status.New()

	if errs := scratch.CleanOrphans(cfg.WorkDir); len(errs) > 0 {
		logger.Logf(common.ELogLevel.Warn(), "orphan cleanup: %d directories could not be removed", len(errs))
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Staging:  staging,
		Transfer: transfer,
		Progress: progressStore,
		Disk:     diskWatcher,
		Status:   statusMonitor,
		RunID:    runID,
		ctx:      ctx,
		cancel:   cancel,
		lock:     instanceLock,
	}
	a.installSignalHandlers()
	return a, nil
}

// Context returns the app-wide cancellation context; long-running loops
// (download poller, large-file poller, extract poller) observe ctx.Done()
// between steps and abort cleanly (spec section 5).
func (a *App) Context() context.Context {
	return a.ctx
}

// ShutdownRequested reports whether a signal has tripped cancellation,
// without blocking -- the non-blocking equivalent of checking a shared
// flag in the spec's original design (section 4.4/5).
func (a *App) ShutdownRequested() bool {
	select {
	case <-a.ctx.Done():
		return true
	default:
		return false
	}
}

func (a *App) installSignalHandlers() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		a.Logger.Log(common.ELogLevel.Warn(), "shutdown requested, cancelling in-flight work")
		a.cancel()
	}()
}

// Close releases the single-instance lock, stops the status monitor, and
// flushes the logger. Safe to call once, at the end of a component's Run.
func (a *App) Close() {
	a.Status.Stop()
	a.Logger.CloseLog()
	a.lock.Release()
}
