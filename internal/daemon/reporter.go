package daemon

import (
	"context"
	"log/slog"
	"time"

	"hopper/internal/ingest"
	"hopper/internal/ledger"
	"hopper/internal/logging"
	"hopper/internal/notifications"
)

const reportTimeout = 30 * time.Second

// NewReporter records every terminal result in the ledger and forwards
// completions and failures to the notifier. Ledger or notification errors
// are logged but never fed back into the worker.
func NewReporter(store *ledger.Store, notifier notifications.Service, logger *slog.Logger) ingest.Reporter {
	log := logging.WithComponent(logger, "reporter")
	return ingest.ReporterFunc(func(result ingest.Result) {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		entry := ledger.Entry{
			Path:     result.Path,
			Outcome:  ledger.Outcome(result.Outcome),
			Attempts: result.Attempts,
		}
		if result.Err != nil {
			entry.Detail = result.Err.Error()
		}
		if _, err := store.Record(ctx, entry); err != nil {
			log.Error("failed to record ledger entry",
				logging.String(logging.FieldPath, result.Path),
				logging.Error(err),
			)
		}

		if notifier == nil {
			return
		}
		var notifyErr error
		switch result.Outcome {
		case ingest.OutcomeCompleted:
			notifyErr = notifier.NotifyFileCompleted(ctx, result.Path, result.Attempts)
		case ingest.OutcomeAbandoned:
			notifyErr = notifier.NotifyFileAbandoned(ctx, result.Path, result.Attempts)
		case ingest.OutcomeFailed:
			notifyErr = notifier.NotifyError(ctx, result.Err, "processing "+result.Path)
		}
		if notifyErr != nil {
			log.Warn("failed to send notification",
				logging.String(logging.FieldPath, result.Path),
				logging.Error(notifyErr),
			)
		}
	})
}
