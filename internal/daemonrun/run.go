// Package daemonrun assembles and runs the daemon process: logging setup,
// pid file, preflight checks, component wiring, and signal handling.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"hopper/internal/config"
	"hopper/internal/daemon"
	"hopper/internal/handler"
	"hopper/internal/ingest"
	"hopper/internal/ipc"
	"hopper/internal/ledger"
	"hopper/internal/logging"
	"hopper/internal/notifications"
	"hopper/internal/preflight"
	"hopper/internal/stability"
	"hopper/internal/watcher"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the hopper daemon runtime loop and blocks until the process
// receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	sessionID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("hopper-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String("session_id", sessionID))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update hopper.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "hopper.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logPreflight(logger, preflight.RunAll(signalCtx, cfg))

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Error("open ledger store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)

	fileHandler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}
	worker, err := ingest.NewWorker(ingest.WorkerConfig{
		Queue:       ingest.NewQueue(),
		Prober:      stability.FlockProber{},
		Handler:     fileHandler,
		MaxAttempts: cfg.Stability.MaxAttempts,
		RetryDelay:  cfg.RetryDelay(),
		Logger:      logger,
		Reporter:    daemon.NewReporter(store, notifier, logger),
	})
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}

	watch, err := watcher.New(watcher.Config{
		Dir:         cfg.Paths.WatchDir,
		Pattern:     cfg.Watch.Pattern,
		Recursive:   cfg.Watch.Recursive,
		ScanOnStart: cfg.Watch.ScanOnStart,
		Logger:      logger,
	}, worker)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	d, err := daemon.New(cfg, store, logger, worker, watch)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := filepath.Join(cfg.Paths.LogDir, "hopper.sock")
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and watch directory access"),
			logging.String(logging.FieldImpact, "daemon will not process files until started over IPC"),
		)
	}

	<-signalCtx.Done()
	logger.Info("hopper daemon shutting down")
	return nil
}

func buildHandler(cfg *config.Config, logger *slog.Logger) (ingest.Handler, error) {
	switch cfg.Processing.Mode {
	case config.ProcessingModeCommand:
		h, err := handler.NewCommandHandler(cfg.Processing.Command, logger)
		if err != nil {
			return nil, fmt.Errorf("create command handler: %w", err)
		}
		return h, nil
	default:
		h, err := handler.NewCopyHandler(cfg.Paths.ArchiveDir, logger)
		if err != nil {
			return nil, fmt.Errorf("create copy handler: %w", err)
		}
		return h, nil
	}
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix the reported path or command before expecting files to process"))
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "hopper.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
