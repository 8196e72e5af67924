package canvas

import (
	"fmt"
	"image"
)

const (
	// FallbackWidth is the canvas width used when the terminal does not report
	// its pixel width.
	FallbackWidth = 320
	// FallbackHeight is the canvas height used when the terminal does not
	// report its pixel height.
	FallbackHeight = 240
)

// Size is a terminal size as reported by the terminal query primitive.
// Any field may be zero, meaning unknown.
type Size struct {
	Rows   int
	Cols   int
	Width  int // Pixels.
	Height int // Pixels.
}

// Override holds user supplied geometry. Zero values are unset and computed
// automatically.
type Override struct {
	Width  int // Canvas width in pixels.
	Height int // Canvas height in pixels.
	Top    int // 1-based cell row of the image origin.
	Left   int // 1-based cell column of the image origin.
}

// Canvas is the resolved drawing area.
type Canvas struct {
	Rows   int
	Cols   int
	Width  int
	Height int
}

// Resolve computes the [Canvas] for a terminal of the given size.
//
// A positive override always wins. Otherwise a non-positive pixel dimension
// reported by the terminal is replaced by the fallback for that axis only.
// Cell counts are passed through unchanged.
func Resolve(size Size, o Override) Canvas {
	c := Canvas{
		Rows:   size.Rows,
		Cols:   size.Cols,
		Width:  size.Width,
		Height: size.Height,
	}

	switch {
	case o.Width > 0:
		c.Width = o.Width
	case c.Width <= 0:
		c.Width = FallbackWidth
	}

	switch {
	case o.Height > 0:
		c.Height = o.Height
	case c.Height <= 0:
		c.Height = FallbackHeight
	}

	return c
}

// Valid reports whether both pixel dimensions are positive.
func (c Canvas) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// SamePixels reports whether c and other have identical pixel dimensions.
func (c Canvas) SamePixels(other Canvas) bool {
	return c.Width == other.Width && c.Height == other.Height
}

// Bounds returns the canvas pixel rectangle anchored at the origin.
func (c Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%dpx %dx%d cells", c.Width, c.Height, c.Cols, c.Rows)
}

// CellOrigin is the 1-based terminal cell at which the top-left corner of an
// image is drawn.
type CellOrigin struct {
	Row int
	Col int
}

// Origin maps the top-left corner of dst into terminal cells.
//
// Override top and left values win when positive. Otherwise the offset is
// scaled proportionally from canvas pixels to cells with integer floor
// division. An axis with no known cell count or pixel extent anchors at 1.
func Origin(c Canvas, dst image.Rectangle, o Override) CellOrigin {
	return CellOrigin{
		Row: cellOffset(o.Top, c.Rows, dst.Min.Y, c.Height),
		Col: cellOffset(o.Left, c.Cols, dst.Min.X, c.Width),
	}
}

func cellOffset(override, cells, px, extent int) int {
	if override > 0 {
		return override
	}

	if cells <= 0 || extent <= 0 || px <= 0 {
		return 1
	}

	return cells*px/extent + 1
}
