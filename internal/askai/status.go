// Package askai is the answer engine behind the search box's ask-AI mode.
package askai

// Status of the current answer.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitted
	StatusStreaming
	StatusReady
	StatusError
)

// Busy reports whether an answer is in flight.
func (s Status) Busy() bool {
	return s == StatusSubmitted || s == StatusStreaming
}

func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusStreaming:
		return "streaming"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}
