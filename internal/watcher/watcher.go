package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"hopper/internal/logging"
)

// Sink receives matched file paths. Ingest must return quickly; it runs on
// the notification delivery goroutine.
type Sink interface {
	Ingest(path string)
}

// Config describes what to watch.
type Config struct {
	// Dir is the root watch directory. It must exist when Start is called.
	Dir string
	// Pattern is a glob matched against the base name of created files.
	Pattern string
	// Recursive watches subdirectories too, including ones created later.
	Recursive bool
	// ScanOnStart enqueues files already present under Dir when the watch
	// begins, so files dropped while the daemon was down are not lost.
	ScanOnStart bool
	Logger      *slog.Logger
}

// Watcher feeds creation events from the filesystem into a Sink.
type Watcher struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New constructs a watcher. Start must be called before events flow.
func New(cfg Config, sink Sink) (*Watcher, error) {
	if sink == nil {
		return nil, errors.New("watcher requires a sink")
	}
	if cfg.Dir == "" {
		return nil, errors.New("watcher requires a directory")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*"
	}
	if _, err := filepath.Match(cfg.Pattern, "probe"); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", cfg.Pattern, err)
	}
	return &Watcher{
		cfg:    cfg,
		sink:   sink,
		logger: logging.WithComponent(cfg.Logger, "watcher"),
	}, nil
}

// Start registers the watch and launches the event loop. Starting an
// already running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := w.addTree(fsw, w.cfg.Dir); err != nil {
		_ = fsw.Close()
		return err
	}

	if w.cfg.ScanOnStart {
		w.scanExisting()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.fsw = fsw
	w.cancel = cancel
	w.done = done
	w.running = true
	go w.loop(runCtx, fsw, done)

	w.logger.Info("watching for new files",
		logging.String("dir", w.cfg.Dir),
		logging.String("pattern", w.cfg.Pattern),
		logging.Bool("recursive", w.cfg.Recursive),
	)
	return nil
}

// Stop tears the watch down and waits for the event loop to exit. Stopping
// an already stopped watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	done := w.done
	w.running = false
	w.cancel = nil
	w.fsw = nil
	w.mu.Unlock()

	cancel()
	_ = fsw.Close()
	<-done
}

// addTree registers dir and, in recursive mode, every subdirectory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.cfg.Recursive {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return nil
	}
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if addErr := fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch %s: %w", path, addErr)
		}
		return nil
	})
}

// scanExisting enqueues files already sitting in the watch tree.
func (w *Watcher) scanExisting() {
	walkRoot := w.cfg.Dir
	_ = filepath.WalkDir(walkRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if path != walkRoot && !w.cfg.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		if w.matches(path) {
			w.logger.Debug("found existing file on startup", logging.String(logging.FieldPath, path))
			w.sink.Ingest(path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch facility reported an error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "watch_error"),
				logging.String(logging.FieldErrorHint, "events may have been dropped; re-drop affected files"),
			)
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	// Renames into the directory surface as Create, which covers producers
	// that write elsewhere and move the finished file in.
	if !event.Op.Has(fsnotify.Create) {
		return
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if !w.cfg.Recursive {
			// Directories never enter the queue, even when their base
			// name matches the pattern.
			return
		}
		if err := w.addTree(fsw, event.Name); err != nil {
			w.logger.Warn("failed to watch new subdirectory",
				logging.Error(err),
				logging.String(logging.FieldPath, event.Name),
				logging.String(logging.FieldEventType, "watch_add_failed"),
				logging.String(logging.FieldImpact, "files in this subdirectory will not be ingested"),
			)
			return
		}
		// Files may have landed before the watch was registered.
		w.scanDir(event.Name)
		return
	}

	if w.matches(event.Name) {
		w.sink.Ingest(event.Name)
	}
}

// scanDir enqueues matching files directly inside dir.
func (w *Watcher) scanDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if w.matches(path) {
			w.sink.Ingest(path)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	matched, err := filepath.Match(w.cfg.Pattern, filepath.Base(path))
	return err == nil && matched
}
