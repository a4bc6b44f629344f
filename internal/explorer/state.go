package explorer

// State is a step of the explorer loop.
type State int32

const (
	// Waiting means the explorer is blocked on the downstream queue.
	Waiting State = iota
	// Dispatch means a message was taken and is being inspected.
	Dispatch
	// Decode means the explorer is hashing a claimed node's payload.
	Decode
	// Skip means an END heartbeat was taken.
	Skip
	// Terminate means the explorer has stopped and will not take again.
	Terminate
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Dispatch:
		return "dispatch"
	case Decode:
		return "decode"
	case Skip:
		return "skip"
	case Terminate:
		return "terminate"
	default:
		return "unknown"
	}
}
