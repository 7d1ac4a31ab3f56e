package ledger

// Outcome classifies how the worker finished with a file.
type Outcome string

const (
	// OutcomeCompleted means the file stabilized, the handler succeeded,
	// and the file was removed from the watch directory.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAbandoned means the file never stabilized within the retry
	// budget and was left in place.
	OutcomeAbandoned Outcome = "abandoned"
	// OutcomeFailed means a probe IO error or a handler failure stopped
	// processing; the file was left in place.
	OutcomeFailed Outcome = "failed"
)

func (o Outcome) valid() bool {
	switch o {
	case OutcomeCompleted, OutcomeAbandoned, OutcomeFailed:
		return true
	}
	return false
}

// Outcomes lists every valid outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeCompleted, OutcomeAbandoned, OutcomeFailed}
}

// ParseOutcome validates a user-supplied outcome string.
func ParseOutcome(value string) (Outcome, bool) {
	o := Outcome(value)
	return o, o.valid()
}

// Entry is one finished file.
type Entry struct {
	ID        int64   `json:"id"`
	Path      string  `json:"path"`
	Outcome   Outcome `json:"outcome"`
	Attempts  int     `json:"attempts"`
	Detail    string  `json:"detail,omitempty"`
	CreatedAt string  `json:"created_at"`
}
