package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType tags log entries with a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldPath is the standardized key for the file path being ingested.
	FieldPath = "path"
	// FieldAttempt is the 1-based stability probe attempt number.
	FieldAttempt = "attempt"
	// FieldQueueDepth reports the ingestion queue length at log time.
	FieldQueueDepth = "queue_depth"
	// FieldWorkerState reports the processing worker lifecycle state.
	FieldWorkerState = "worker_state"
)
