// Package terminal queries the size of the controlling terminal in cells and
// pixels.
package terminal

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"go.jacobcolvin.com/kittyvo/canvas"
)

// Querier reports the current terminal size. Unknown fields are zero.
type Querier interface {
	Size() canvas.Size
}

// Func adapts a function to the [Querier] interface.
type Func func() canvas.Size

// Size calls f().
func (f Func) Size() canvas.Size { return f() }

// Device queries the window size of a terminal file.
//
// Create instances with [NewDevice].
type Device struct {
	f *os.File
}

// NewDevice returns a [Device] for f, typically [os.Stdout].
func NewDevice(f *os.File) *Device {
	return &Device{f: f}
}

// Size returns the rows, columns and pixel dimensions reported by the
// TIOCGWINSZ ioctl. The zero [canvas.Size] is returned when the file is not
// a terminal or the ioctl fails.
func (d *Device) Size() canvas.Size {
	fd := int(d.f.Fd())
	if !term.IsTerminal(fd) {
		return canvas.Size{}
	}

	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return canvas.Size{}
	}

	return canvas.Size{
		Rows:   int(ws.Row),
		Cols:   int(ws.Col),
		Width:  int(ws.Xpixel),
		Height: int(ws.Ypixel),
	}
}
