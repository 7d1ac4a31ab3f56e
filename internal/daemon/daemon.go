package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/ledger"
	"hopper/internal/logging"
	"hopper/internal/notifications"
	"hopper/internal/watcher"
)

// Daemon coordinates the watcher, worker, and ledger and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *ledger.Store
	worker  *ingest.Worker
	watcher *watcher.Watcher
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	WorkerState  ingest.State
	QueueDepth   int
	WatchDir     string
	LedgerDBPath string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger, worker *ingest.Worker, w *watcher.Watcher) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || worker == nil || w == nil {
		return nil, errors.New("daemon requires config, store, logger, worker, and watcher")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "hopperd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		worker:   worker,
		watcher:  w,
		logPath:  filepath.Join(cfg.Paths.LogDir, "hopper.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start launches the worker and watcher and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another hopper daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.worker.Start(d.ctx)
	if err := d.watcher.Start(d.ctx); err != nil {
		d.worker.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start watcher: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("hopper daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldPath, d.cfg.Paths.WatchDir),
	)
	return nil
}

// Stop halts the watcher and worker and releases the daemon lock. The
// worker finishes the file it is on before stopping.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.watcher.Stop()
	d.worker.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("hopper daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// AddFile queues an arbitrary file for processing, bypassing the watch
// directory. The file still goes through the stability probe.
func (d *Daemon) AddFile(ctx context.Context, sourcePath string) (string, error) {
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return "", errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source path %q is a directory", absPath)
	}
	d.worker.Ingest(absPath)
	d.logger.Info("manual file queued", logging.String(logging.FieldPath, absPath))
	return absPath, nil
}

// ListLedger returns ledger entries, optionally filtered by outcome.
func (d *Daemon) ListLedger(ctx context.Context, outcome ledger.Outcome, limit int) ([]ledger.Entry, error) {
	if d.store == nil {
		return nil, errors.New("ledger store unavailable")
	}
	return d.store.List(ctx, outcome, limit)
}

// LedgerStats returns entry counts grouped by outcome.
func (d *Daemon) LedgerStats(ctx context.Context) (map[ledger.Outcome]int, error) {
	if d.store == nil {
		return nil, errors.New("ledger store unavailable")
	}
	return d.store.Stats(ctx)
}

// ClearLedger removes all ledger entries.
func (d *Daemon) ClearLedger(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("ledger store unavailable")
	}
	return d.store.Clear(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		WorkerState:  d.worker.State(),
		QueueDepth:   d.worker.QueueDepth(),
		WatchDir:     d.cfg.Paths.WatchDir,
		LedgerDBPath: filepath.Join(d.cfg.Paths.LogDir, "ledger.db"),
		LockFilePath: d.lockPath,
	}
}
