// Package daemon coordinates the watcher and the processor and enforces
// single-instance execution via a lock file.
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
	"golang.org/x/sync/errgroup"

	"pcbwatch/internal/config"
	"pcbwatch/internal/history"
	"pcbwatch/internal/logging"
	"pcbwatch/internal/processor"
	"pcbwatch/internal/watcher"
)

const defaultLivenessInterval = 5 * time.Minute

// Daemon runs the trigger loop: an initial pass at startup, a pass after
// each settled source-log change, and a periodic count-file refresh that
// doubles as a liveness signal.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	proc   *processor.Processor
	ledger *history.Store

	notifier watcher.Notifier

	lockPath string
	lock     *flock.Flock

	// procMu serializes processing passes against the liveness refresher;
	// the watcher itself already delivers events serially.
	procMu sync.Mutex

	livenessInterval time.Duration

	running atomic.Bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New constructs a daemon with initialized dependencies. The ledger may be
// nil when pass history is disabled.
func New(cfg *config.Config, logger *slog.Logger, proc *processor.Processor, ledger *history.Store) (*Daemon, error) {
	if cfg == nil || proc == nil {
		return nil, errors.New("daemon requires config and processor")
	}

	d := &Daemon{
		cfg:              cfg,
		logger:           logging.NewComponentLogger(logger, "daemon"),
		proc:             proc,
		ledger:           ledger,
		lockPath:         filepath.Join(cfg.Paths.LogDir, "pcbwatchd.lock"),
		livenessInterval: defaultLivenessInterval,
	}
	d.lock = flock.New(d.lockPath)

	notifier, err := watcher.New(cfg, logger, d.runPass)
	if err != nil {
		return nil, err
	}
	d.notifier = notifier
	return d, nil
}

// Start acquires the instance lock, runs the startup pass, and begins
// watching for changes.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another pcbwatchd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Writing the count file up front both publishes the restored total
	// and probes write permissions before the watch loop begins.
	d.logger.Info("writing initial count file")
	d.proc.RefreshCount()

	if _, err := os.Stat(d.cfg.Paths.SourceLog); err == nil {
		d.logger.Info("performing initial processing",
			logging.Args(logging.String("source", d.cfg.Paths.SourceLog))...)
		d.runPass(runCtx)
	}

	if err := d.notifier.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start watcher: %w", err)
	}

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		d.livenessLoop(groupCtx)
		return nil
	})
	d.group = group

	d.running.Store(true)
	d.logger.Info("pcbwatchd started",
		logging.Args(
			logging.String("source", d.cfg.Paths.SourceLog),
			logging.String("count_file", d.cfg.CountFilePath()),
			logging.String("identifier_store", d.cfg.IdentifierStorePath()),
			logging.String("lock", d.lockPath),
		)...)
	return nil
}

// Stop halts watching and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.notifier.Stop()
	if d.group != nil {
		_ = d.group.Wait()
		d.group = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Args(logging.Error(err))...)
	}
	d.running.Store(false)
	d.logger.Info("pcbwatchd stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.ledger != nil {
		return d.ledger.Close()
	}
	return nil
}

// Total returns the current identifier count.
func (d *Daemon) Total() int {
	d.procMu.Lock()
	defer d.procMu.Unlock()
	return d.proc.Total()
}

func (d *Daemon) runPass(ctx context.Context) {
	d.procMu.Lock()
	defer d.procMu.Unlock()

	report := d.proc.Process(ctx)
	d.logger.Info("pass complete",
		logging.Args(
			logging.String("outcome", report.Outcome),
			logging.Int("matches", report.Matches),
			logging.Int("new_identifiers", report.NewIdentifiers),
			logging.Int("total", report.TotalIdentifiers),
			logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
		)...)
}

// livenessLoop keeps the count artifact fresh even when the source log is
// quiet, so operators can tell a healthy idle daemon from a dead one.
func (d *Daemon) livenessLoop(ctx context.Context) {
	interval := d.livenessInterval
	if interval <= 0 {
		interval = defaultLivenessInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.procMu.Lock()
			d.proc.RefreshCount()
			d.procMu.Unlock()
		}
	}
}
