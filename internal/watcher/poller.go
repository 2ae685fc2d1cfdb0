package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"pcbwatch/internal/config"
	"pcbwatch/internal/logging"
)

// pollWatcher stats the watched path on a fixed interval and fires the
// handler when size or modification time change. Fallback for network
// shares and other filesystems without reliable change notifications.
type pollWatcher struct {
	path     string
	settle   time.Duration
	interval time.Duration
	logger   *slog.Logger
	handler  Handler

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	lastSize    int64
	lastModTime time.Time
	lastExists  bool
}

func newPollWatcher(cfg *config.Config, logger *slog.Logger, handler Handler) *pollWatcher {
	return &pollWatcher{
		path:     cfg.Paths.SourceLog,
		settle:   cfg.SettleDelay(),
		interval: cfg.PollingInterval(),
		logger:   logging.NewComponentLogger(logger, "watcher"),
		handler:  handler,
	}
}

func (w *pollWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}

	// Seed the baseline so startup state does not count as a change; the
	// daemon runs its own initial pass.
	w.observe()

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(runCtx)

	w.logger.Info("polling for changes",
		logging.Args(
			logging.String("path", w.path),
			logging.Duration("interval", w.interval),
			logging.Duration("settle", w.settle),
		)...)
	return nil
}

func (w *pollWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *pollWatcher) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.observe() {
				continue
			}
			if !settleWait(ctx, w.settle) {
				return
			}
			// Re-observe after settling so the pass reads the final state
			// of a burst of appends as one change.
			w.observe()
			w.handler(ctx)
		}
	}
}

// observe updates the baseline and reports whether the file changed since
// the previous observation.
func (w *pollWatcher) observe() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		changed := w.lastExists
		w.lastExists = false
		w.lastSize = 0
		w.lastModTime = time.Time{}
		return changed
	}

	changed := !w.lastExists || info.Size() != w.lastSize || !info.ModTime().Equal(w.lastModTime)
	w.lastExists = true
	w.lastSize = info.Size()
	w.lastModTime = info.ModTime()
	return changed
}
