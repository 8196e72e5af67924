package kitty

import "go.jacobcolvin.com/kittyvo/canvas"

// Mode is the terminal display mode held while images are shown: the cursor
// is hidden on acquisition and restored on release.
//
// Create instances with [Acquire].
type Mode struct {
	e           *Emitter
	clearOnExit bool
	active      bool
}

// Acquire hides the cursor and returns the held [Mode]. When clearOnExit is
// set, [Mode.Release] also clears the screen and homes the cursor.
func Acquire(e *Emitter, clearOnExit bool) *Mode {
	e.HideCursor()
	e.Flush()

	return &Mode{e: e, clearOnExit: clearOnExit, active: true}
}

// Active reports whether the mode is still held.
func (m *Mode) Active() bool {
	return m.active
}

// Release restores the cursor and, if configured, clears the screen and homes
// the cursor. Release is idempotent, so it can be deferred on every exit path.
func (m *Mode) Release() {
	if !m.active {
		return
	}

	m.active = false

	m.e.ShowCursor()

	if m.clearOnExit {
		m.e.ClearScreen()
		m.e.MoveTo(canvas.CellOrigin{Row: 1, Col: 1})
	}

	m.e.Flush()
}
