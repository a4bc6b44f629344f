package message

import "fmt"

const (
	// End is a keep-alive payload. Explorers skip it without producing output.
	End = "END"
	// Exit tells the explorer pool to stop.
	Exit = "EXIT"
)

// NoParent is the parent id of a node that was not reached from another node,
// such as the first solar system headquarters dispatches.
const NoParent = -1

// Message is a single unit on either queue. It is a plain value: copies are
// independent and nothing in the system mutates a Message after New.
type Message struct {
	// Parent is the node Current was reached from. Ignored for sentinels.
	Parent int
	// Current is the node this message is about.
	Current int
	// Payload is either application data (an encoded or decoded frequency)
	// or one of the sentinels End and Exit.
	Payload string
}

// New builds a message.
func New(parent, current int, payload string) Message {
	return Message{Parent: parent, Current: current, Payload: payload}
}

// Sentinel builds a control message carrying End or Exit.
func Sentinel(payload string) Message {
	return Message{Parent: NoParent, Current: NoParent, Payload: payload}
}

// IsEnd reports whether the payload is exactly End.
func (m Message) IsEnd() bool {
	return m.Payload == End
}

// IsExit reports whether the payload is exactly Exit.
func (m Message) IsExit() bool {
	return m.Payload == Exit
}

// IsSentinel reports whether the payload is one of the reserved values.
func (m Message) IsSentinel() bool {
	return m.IsEnd() || m.IsExit()
}

// WithPayload returns a copy of m carrying a different payload.
func (m Message) WithPayload(payload string) Message {
	return New(m.Parent, m.Current, payload)
}

func (m Message) String() string {
	return fmt.Sprintf("%d->%d:%q", m.Parent, m.Current, m.Payload)
}
