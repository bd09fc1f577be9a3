package audiostream

// State identifies one of the possible states engine can be in.
type State int

// Engine states.
const (
	// Unconfigured means that sink is not created yet.
	Unconfigured State = iota
	// Ready means that sink is created and stream can be started.
	Ready
	// Running means that streaming goroutine is alive. It stays
	// Running after the loop terminated on its own, until Stop is called.
	Running
	// Stopped means that streaming goroutine was joined and stream can
	// be started again.
	Stopped
	// Closed means that sink is released and engine cannot be used.
	Closed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Closed:
		return "closed"
	}
	return "unknown"
}
