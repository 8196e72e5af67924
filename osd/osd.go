// Package osd defines the on-screen display hook that draws overlay graphics
// onto a frame after it has been scaled, and provides a timecode overlay.
package osd

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Renderer draws overlay content onto dst in place.
//
// Draw is called once per drawn frame with the frame's presentation timestamp,
// or zero when there is no current frame.
type Renderer interface {
	Draw(dst *image.RGBA, pts time.Duration)
}

// Func adapts a function to the [Renderer] interface.
type Func func(dst *image.RGBA, pts time.Duration)

// Draw calls f(dst, pts).
func (f Func) Draw(dst *image.RGBA, pts time.Duration) { f(dst, pts) }

// Nop is a [Renderer] that draws nothing.
type Nop struct{}

// Draw does nothing.
func (Nop) Draw(*image.RGBA, time.Duration) {}

// Timecode draws the presentation timestamp in the bottom-left corner of the
// frame on a translucent box.
//
// Create instances with [NewTimecode].
type Timecode struct {
	face    font.Face
	fg      image.Image
	bg      image.Image
	padding int
}

// NewTimecode returns a [Timecode] overlay using a fixed 7x13 bitmap font.
func NewTimecode() *Timecode {
	return &Timecode{
		face:    basicfont.Face7x13,
		fg:      image.NewUniform(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		bg:      image.NewUniform(color.RGBA{A: 0x99}),
		padding: 2,
	}
}

// Draw renders pts as H:MM:SS.mmm. Frames too small to hold the label are
// left untouched.
func (t *Timecode) Draw(dst *image.RGBA, pts time.Duration) {
	label := FormatTimestamp(pts)

	d := &font.Drawer{Face: t.face}
	textW := d.MeasureString(label).Ceil()

	m := t.face.Metrics()
	ascent := m.Ascent.Ceil()
	textH := m.Height.Ceil()

	b := dst.Bounds()

	boxW := textW + 2*t.padding
	boxH := textH + 2*t.padding

	if boxW > b.Dx() || boxH > b.Dy() {
		return
	}

	box := image.Rect(b.Min.X, b.Max.Y-boxH, b.Min.X+boxW, b.Max.Y)
	draw.Draw(dst, box, t.bg, image.Point{}, draw.Over)

	d.Dst = dst
	d.Src = t.fg
	d.Dot = fixed.P(box.Min.X+t.padding, box.Min.Y+t.padding+ascent)
	d.DrawString(label)
}

// FormatTimestamp formats d as H:MM:SS.mmm. Negative durations are clamped
// to zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond

	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
}
