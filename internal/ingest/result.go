package ingest

// Outcome is the terminal disposition of one pending file.
type Outcome string

const (
	// OutcomeCompleted: the file settled, the handler succeeded, and the
	// file was deleted from the watch directory.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAbandoned: the file never settled within the attempt budget
	// and was left in place.
	OutcomeAbandoned Outcome = "abandoned"
	// OutcomeFailed: probing hit a non-transient filesystem error, or the
	// handler failed; the file was left in place.
	OutcomeFailed Outcome = "failed"
)

// Result summarizes the processing of one file. Err is nil only for
// OutcomeCompleted.
type Result struct {
	Path     string
	Outcome  Outcome
	Attempts int
	Err      error
}

// Reporter receives every terminal Result. Implementations must not block
// for long: the worker calls them inline between queue items.
type Reporter interface {
	Report(result Result)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(result Result)

func (f ReporterFunc) Report(result Result) { f(result) }
