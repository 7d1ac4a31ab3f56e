package ingest

// State describes the worker lifecycle. Transitions:
//
//	Uninitialized -> Running       (Start)
//	Running       -> Parked        (queue drained)
//	Parked        -> Running       (enqueue wake)
//	Running|Parked -> Stopping     (Stop; current item runs to completion)
//	Stopping      -> Stopped
//	Stopped       -> Running       (enqueue or Start restarts)
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateParked
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateParked:
		return "parked"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
