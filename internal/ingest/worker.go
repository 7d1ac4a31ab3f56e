package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"hopper/internal/logging"
	"hopper/internal/stability"
)

// Handler is the boundary to business logic. It receives a settled file path
// and must not delete the file; deletion is the worker's job and happens
// only after Process returns nil.
type Handler interface {
	Process(ctx context.Context, path string) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, path string) error

func (f HandlerFunc) Process(ctx context.Context, path string) error { return f(ctx, path) }

// WorkerConfig assembles the worker's collaborators and retry budget.
type WorkerConfig struct {
	Queue       *Queue
	Prober      stability.Prober
	Handler     Handler
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *slog.Logger
	Reporter    Reporter
}

// Worker is the single long-lived consumer of the ingestion queue.
type Worker struct {
	queue       *Queue
	prober      stability.Prober
	handler     Handler
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
	reporter    Reporter

	state atomic.Int32

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	active  bool
}

// NewWorker constructs a worker in the Uninitialized state.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Queue == nil {
		return nil, errors.New("worker requires a queue")
	}
	if cfg.Prober == nil {
		return nil, errors.New("worker requires a prober")
	}
	if cfg.Handler == nil {
		return nil, errors.New("worker requires a handler")
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts %d: must be at least 1", cfg.MaxAttempts)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		queue:       cfg.Queue,
		prober:      cfg.Prober,
		handler:     cfg.Handler,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		logger:      logging.WithComponent(logger, "worker"),
		reporter:    cfg.Reporter,
	}, nil
}

// State reports the current lifecycle state. The underlying value is atomic
// so the producer side always observes fresh state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// QueueDepth reports the number of pending paths.
func (w *Worker) QueueDepth() int {
	return w.queue.Len()
}

// Start launches the worker goroutine. Calling Start while the worker is
// already running is a no-op. ctx bounds the worker's whole lifetime:
// restarts triggered by later enqueues reuse it, and once it is canceled
// the worker can no longer be revived.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.baseCtx = ctx
	w.spawnLocked()
}

// Ingest appends path to the queue and wakes or revives the worker. It
// returns immediately; it is safe to call from the watch facility's event
// goroutine.
func (w *Worker) Ingest(path string) {
	w.queue.Enqueue(path)

	// Revive a stopped worker. The check and the spawn happen under the
	// same lock, so two producers cannot race a second goroutine into
	// existence.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.baseCtx == nil || w.baseCtx.Err() != nil {
		return
	}
	w.spawnLocked()
}

// Stop requests a halt and waits for the worker goroutine to exit. The item
// being processed runs to completion first; queued items stay queued.
// Stopping an already stopped worker is a no-op.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.state.Store(int32(StateStopping))
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	cancel()
	<-done
}

// spawnLocked starts the run goroutine unless one is already alive.
// Callers must hold w.mu.
func (w *Worker) spawnLocked() {
	if w.active || w.baseCtx == nil || w.baseCtx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithCancel(w.baseCtx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done
	w.active = true
	w.state.Store(int32(StateRunning))
	go w.run(runCtx, done)
}

func (w *Worker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		w.mu.Lock()
		w.active = false
		w.state.Store(int32(StateStopped))
		w.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		path, ok := w.queue.TryDequeue()
		if !ok {
			w.state.Store(int32(StateParked))
			select {
			case <-ctx.Done():
				return
			case <-w.queue.Wake():
			}
			w.state.Store(int32(StateRunning))
			continue
		}
		w.processOne(ctx, path)
	}
}

// processOne resolves a single file: probe with bounded retries, hand off,
// delete. Failures never escape; the loop must keep consuming the queue.
func (w *Worker) processOne(ctx context.Context, path string) {
	logger := w.logger.With(logging.String(logging.FieldPath, path))

	for attempt := 1; ; attempt++ {
		stable, err := w.prober.Probe(path)
		if err != nil {
			logger.Error("stability probe failed, file abandoned",
				logging.Error(err),
				logging.Int(logging.FieldAttempt, attempt),
				logging.String(logging.FieldEventType, "probe_error"),
				logging.String(logging.FieldErrorHint, "check file permissions and watch directory health"),
			)
			w.report(Result{Path: path, Outcome: OutcomeFailed, Attempts: attempt, Err: err})
			return
		}
		if stable {
			w.finishStable(ctx, logger, path, attempt)
			return
		}
		if attempt >= w.maxAttempts {
			logger.Warn("file never stabilized, abandoned in place",
				logging.Int(logging.FieldAttempt, attempt),
				logging.String(logging.FieldEventType, "retry_exhausted"),
				logging.String(logging.FieldErrorHint, "writer may be stalled; remove or re-drop the file"),
			)
			w.report(Result{
				Path:     path,
				Outcome:  OutcomeAbandoned,
				Attempts: attempt,
				Err:      fmt.Errorf("file still being written after %d probes", attempt),
			})
			return
		}
		logger.Debug("file still being written, will retry",
			logging.Int(logging.FieldAttempt, attempt),
			logging.Duration("retry_delay", w.retryDelay),
		)
		// The in-flight item always runs to completion: this delay is
		// deliberately not cut short by a stop request. Stop is observed
		// between items.
		time.Sleep(w.retryDelay)
	}
}

func (w *Worker) finishStable(ctx context.Context, logger *slog.Logger, path string, attempts int) {
	// The in-flight item runs to completion: a stop request cancels the run
	// context, but it must not interrupt a handler that has already started.
	// Stop is observed between items, so the handler gets a detached context.
	if err := w.invokeHandler(context.WithoutCancel(ctx), path); err != nil {
		logger.Error("processing failed, file left in place",
			logging.Error(err),
			logging.String(logging.FieldEventType, "handler_failed"),
			logging.String(logging.FieldErrorHint, "inspect the processing handler configuration"),
		)
		w.report(Result{Path: path, Outcome: OutcomeFailed, Attempts: attempts, Err: err})
		return
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("processed file could not be deleted",
			logging.Error(err),
			logging.String(logging.FieldEventType, "delete_failed"),
			logging.String(logging.FieldImpact, "file will be re-processed if another creation event arrives"),
		)
	}

	logger.Info("file processed",
		logging.Int(logging.FieldAttempt, attempts),
		logging.Int(logging.FieldQueueDepth, w.queue.Len()),
		logging.String(logging.FieldEventType, "file_completed"),
	)
	w.report(Result{Path: path, Outcome: OutcomeCompleted, Attempts: attempts})
}

// invokeHandler shields the worker loop from a panicking handler.
func (w *Worker) invokeHandler(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return w.handler.Process(ctx, path)
}

func (w *Worker) report(result Result) {
	if w.reporter == nil {
		return
	}
	w.reporter.Report(result)
}
