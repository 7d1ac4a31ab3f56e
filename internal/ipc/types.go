package ipc

// StartRequest triggers daemon pipeline startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon processing.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/worker status information.
type StatusResponse struct {
	Running      bool           `json:"running"`
	WorkerState  string         `json:"worker_state"`
	QueueDepth   int            `json:"queue_depth"`
	WatchDir     string         `json:"watch_dir"`
	LedgerStats  map[string]int `json:"ledger_stats"`
	LockPath     string         `json:"lock_path"`
	LedgerDBPath string         `json:"ledger_db_path"`
	PID          int            `json:"pid"`
}

// AddFileRequest queues an arbitrary file for processing.
type AddFileRequest struct {
	Path string `json:"path"`
}

// AddFileResponse reports the queued absolute path.
type AddFileResponse struct {
	Path string `json:"path"`
}

// LedgerEntry mirrors a ledger row for IPC callers.
type LedgerEntry struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Outcome   string `json:"outcome"`
	Attempts  int    `json:"attempts"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// LedgerListRequest filters ledger listing by outcome.
type LedgerListRequest struct {
	Outcome string `json:"outcome"`
	Limit   int    `json:"limit"`
}

// LedgerListResponse contains ledger entries.
type LedgerListResponse struct {
	Entries []LedgerEntry `json:"entries"`
}

// LedgerClearRequest removes all entries.
type LedgerClearRequest struct{}

// LedgerClearResponse reports number of removed entries.
type LedgerClearResponse struct {
	Removed int64 `json:"removed"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
