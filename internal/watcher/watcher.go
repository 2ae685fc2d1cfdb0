package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pcbwatch/internal/config"
	"pcbwatch/internal/logging"
)

// Handler is invoked serially after each settled change to the watched path.
type Handler func(ctx context.Context)

// Notifier invokes a handler whenever the watched path's content changes.
type Notifier interface {
	Start(ctx context.Context) error
	Stop()
}

// New selects the notifier implementation from the configured watch mode.
func New(cfg *config.Config, logger *slog.Logger, handler Handler) (Notifier, error) {
	if cfg == nil {
		return nil, errors.New("watcher requires config")
	}
	if handler == nil {
		return nil, errors.New("watcher requires a handler")
	}

	switch cfg.Processing.WatchMode {
	case "poll":
		return newPollWatcher(cfg, logger, handler), nil
	case "notify":
		return newNotifyWatcher(cfg, logger, handler)
	default:
		return nil, fmt.Errorf("unknown watch mode %q", cfg.Processing.WatchMode)
	}
}

// notifyWatcher uses OS file-change notifications. It watches the parent
// directory rather than the file itself so the file being replaced or
// created later is still observed.
type notifyWatcher struct {
	path    string
	settle  time.Duration
	logger  *slog.Logger
	handler Handler

	fs *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func newNotifyWatcher(cfg *config.Config, logger *slog.Logger, handler Handler) (*notifyWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &notifyWatcher{
		path:    cfg.Paths.SourceLog,
		settle:  cfg.SettleDelay(),
		logger:  logging.NewComponentLogger(logger, "watcher"),
		handler: handler,
		fs:      fs,
	}, nil
}

func (w *notifyWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}

	dir := filepath.Dir(w.path)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(runCtx)

	w.logger.Info("watching for changes",
		logging.Args(logging.String("path", w.path), logging.Duration("settle", w.settle))...)
	return nil
}

func (w *notifyWatcher) Stop() {
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
	_ = w.fs.Close()
}

func (w *notifyWatcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if !settleWait(ctx, w.settle) {
				return
			}
			w.drain()
			w.handler(ctx)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file notification error", logging.Args(logging.Error(err))...)
		}
	}
}

func (w *notifyWatcher) relevant(event fsnotify.Event) bool {
	if event.Name != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create)
}

// drain coalesces the burst of events a single logical write produces so
// one write triggers one pass.
func (w *notifyWatcher) drain() {
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func settleWait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
