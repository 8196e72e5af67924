package vo

import "fmt"

// State is the lifecycle state of a [Renderer].
type State int

const (
	// StateUninitialized is the zero state, before [Config.NewRenderer].
	StateUninitialized State = iota
	// StateSizingKnown means the terminal display mode is held and the canvas
	// has been resolved, but no usable video configuration exists yet.
	StateSizingKnown
	// StateReady means frames can be drawn.
	StateReady
	// StateDisplaying means a frame has been published and awaits a flip.
	StateDisplaying
	// StateTooSmall means the canvas cannot show the video; draws and flips
	// do nothing.
	StateTooSmall
	// StateClosed means the renderer has been torn down.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSizingKnown:
		return "sizing-known"
	case StateReady:
		return "ready"
	case StateDisplaying:
		return "displaying"
	case StateTooSmall:
		return "too-small"
	case StateClosed:
		return "closed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}
