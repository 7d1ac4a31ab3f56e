package stability

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Prober reports whether a file has settled. A (false, nil) result means the
// file is still held by a writer and may be probed again later. A non-nil
// error is a *ProbeError and retrying will not help.
type Prober interface {
	Probe(path string) (bool, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(path string) (bool, error)

func (f ProberFunc) Probe(path string) (bool, error) { return f(path) }

// ProbeError wraps filesystem failures other than lock contention, such as a
// vanished file or a permission problem.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// FlockProber probes by attempting a non-blocking exclusive flock on the
// file and releasing it immediately on success.
type FlockProber struct{}

// NewFlockProber returns the default exclusive-lock prober.
func NewFlockProber() FlockProber { return FlockProber{} }

// Probe takes and releases an exclusive lock on path. The file must already
// exist: flock would otherwise create an empty file where the writer is
// about to put one.
func (FlockProber) Probe(path string) (bool, error) {
	if err := statFile(path); err != nil {
		return false, &ProbeError{Path: path, Err: err}
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return false, &ProbeError{Path: path, Err: err}
	}
	if !locked {
		return false, nil
	}
	if err := lock.Unlock(); err != nil {
		return false, &ProbeError{Path: path, Err: err}
	}
	return true, nil
}
