// Package kitty writes the terminal escape sequences used to display images
// with the kitty graphics protocol, and manages the terminal display mode
// while images are being shown.
//
// Images are never transmitted inline. The pixel data lives in a named shared
// memory object and the terminal is told its name:
//
//	ESC [ <row> ; <col> f
//	ESC _ G a=T,f=32,t=s,s=<width>,v=<height>;<base64 name> ESC \
package kitty

import (
	"bufio"
	"encoding/base64"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"go.jacobcolvin.com/kittyvo/canvas"
)

// Emitter writes protocol commands to a terminal. Writes are buffered until
// [Emitter.Flush]; terminal I/O is best effort and write errors are not
// reported.
//
// Create instances with [NewEmitter].
type Emitter struct {
	w *bufio.Writer
}

// NewEmitter creates an [Emitter] writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// MoveTo positions the cursor at the 1-based cell o.
func (e *Emitter) MoveTo(o canvas.CellOrigin) {
	e.write(ansi.HVP(o.Col, o.Row))
}

// Display shows the width x height RGBA image stored in the shared memory
// object called name at the cursor position. The payload carries the name
// without its leading slash, which shm_open ignores.
func (e *Emitter) Display(name string, width, height int) {
	payload := base64.StdEncoding.EncodeToString([]byte(strings.TrimPrefix(name, "/")))

	e.write(ansi.KittyGraphics([]byte(payload),
		"a=T",
		"f=32",
		"t=s",
		"s="+strconv.Itoa(width),
		"v="+strconv.Itoa(height),
	))
}

// Announce moves the cursor to o, displays the image and flushes.
func (e *Emitter) Announce(o canvas.CellOrigin, name string, width, height int) {
	e.MoveTo(o)
	e.Display(name, width, height)
	e.Flush()
}

// HideCursor hides the text cursor.
func (e *Emitter) HideCursor() { e.write(ansi.HideCursor) }

// ShowCursor shows the text cursor.
func (e *Emitter) ShowCursor() { e.write(ansi.ShowCursor) }

// ClearScreen erases the whole screen.
func (e *Emitter) ClearScreen() { e.write(ansi.EraseEntireScreen) }

// Flush writes any buffered output to the terminal.
func (e *Emitter) Flush() {
	//nolint:errcheck // Terminal output is best effort.
	e.w.Flush()
}

func (e *Emitter) write(s string) {
	//nolint:errcheck // Errors surface on Flush, which is best effort.
	e.w.WriteString(s)
}
