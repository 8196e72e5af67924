package vo

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	"go.jacobcolvin.com/kittyvo/canvas"
	"go.jacobcolvin.com/kittyvo/kitty"
	"go.jacobcolvin.com/kittyvo/osd"
	"go.jacobcolvin.com/kittyvo/scale"
	"go.jacobcolvin.com/kittyvo/shm"
	"go.jacobcolvin.com/kittyvo/terminal"
)

var (
	// ErrReconfig indicates the renderer could not be configured for a
	// video; nothing is drawn until a supported configuration arrives.
	ErrReconfig = errors.New("reconfigure")
	// ErrNotConfigured indicates a draw before a successful reconfiguration.
	ErrNotConfigured = errors.New("renderer not configured")
	// ErrClosed indicates use of a closed renderer.
	ErrClosed = errors.New("renderer closed")
)

// Frame is a draw request.
type Frame struct {
	// Current is the decoded picture, or nil when there is nothing to show
	// (for example while seeking). The target is then cleared so the overlay
	// still has a canvas to draw on.
	Current image.Image
	// PTS is the presentation timestamp of Current.
	PTS time.Duration
	// Repeat marks a frame with the same content as the previous draw.
	Repeat bool
	// Redraw forces a repeated frame to be drawn, e.g. to update the overlay.
	Redraw bool
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithQuerier sets the terminal size source. The default queries the output
// when it is an [*os.File] and reports an unknown size otherwise.
func WithQuerier(q terminal.Querier) Option {
	return func(r *Renderer) {
		r.query = q
	}
}

// WithOverlay sets the overlay drawn on every frame. The default draws
// nothing.
func WithOverlay(o osd.Renderer) Option {
	return func(r *Renderer) {
		r.overlay = o
	}
}

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// Renderer displays video frames in a terminal using the kitty graphics
// protocol.
//
// Frames are drawn in two steps: [Renderer.Draw] scales the frame, composites
// the overlay and publishes the pixels to shared memory, and [Renderer.Flip]
// tells the terminal to show them. Each Draw is followed by at most one Flip,
// and both must be called from the same goroutine.
//
// Create instances with [Config.NewRenderer] and always call
// [Renderer.Close] to restore the terminal.
type Renderer struct {
	query   terminal.Querier
	overlay osd.Renderer
	log     *slog.Logger
	emitter *kitty.Emitter
	mode    *kitty.Mode
	buffers *shm.Manager
	scaler  *scale.Scaler
	held    *shm.Buffer
	target  *image.RGBA

	override canvas.Override
	fit      canvas.FitOptions
	canvas   canvas.Canvas
	params   scale.Params
	src      image.Rectangle
	dst      image.Rectangle
	origin   canvas.CellOrigin

	state      State
	configured bool
	skipFlip   bool
	wantRedraw bool
}

// NewRenderer validates c, hides the terminal cursor on out and returns a
// [Renderer] in [StateSizingKnown].
func (c *Config) NewRenderer(out io.Writer, opts ...Option) (*Renderer, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	scaler, err := scale.New(scale.Kernel(c.Scaler))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	r := &Renderer{
		overlay:  osd.Nop{},
		log:      slog.New(slog.DiscardHandler),
		emitter:  kitty.NewEmitter(out),
		buffers:  shm.NewManager(c.Segment()),
		scaler:   scaler,
		override: c.Override(),
		fit: canvas.FitOptions{
			KeepAspect: c.KeepAspect,
			Panscan:    c.Panscan,
		},
	}

	if f, ok := out.(*os.File); ok {
		r.query = terminal.NewDevice(f)
	} else {
		r.query = terminal.Func(func() canvas.Size { return canvas.Size{} })
	}

	for _, opt := range opts {
		opt(r)
	}

	r.mode = kitty.Acquire(r.emitter, c.ExitClear)
	r.canvas = r.resolve()
	r.state = StateSizingKnown

	r.log.Debug("renderer initialized",
		slog.String("canvas", r.canvas.String()),
		slog.String("segment", c.ShmName),
	)

	return r, nil
}

// State returns the current lifecycle state.
func (r *Renderer) State() State {
	return r.state
}

// WantRedraw reports whether the renderer needs the current frame drawn
// again, typically after a reconfiguration cleared the screen.
func (r *Renderer) WantRedraw() bool {
	return r.wantRedraw
}

// Placement returns the source crop, the destination rectangle on the canvas
// and the cell at which the image is anchored.
func (r *Renderer) Placement() (image.Rectangle, image.Rectangle, canvas.CellOrigin) {
	return r.src, r.dst, r.origin
}

// QueryFormat reports whether frames in format f can be displayed.
func (r *Renderer) QueryFormat(f scale.Format) bool {
	return r.scaler.Supports(f, scale.FormatRGBA)
}

// Reconfig configures the renderer for video described by p, then clears the
// screen and requests a redraw.
//
// A canvas too small for the video is not an error: the renderer enters
// [StateTooSmall] and draws nothing. An unsupported format or a failure to
// initialize the scaler returns an [ErrReconfig] error, and draws fail with
// [ErrNotConfigured] until a later Reconfig succeeds.
func (r *Renderer) Reconfig(p scale.Params) error {
	if r.state == StateClosed {
		return ErrClosed
	}

	r.params = p
	r.canvas = r.resolve()

	err := r.applyOutput()
	r.configured = err == nil

	r.emitter.ClearScreen()
	r.emitter.Flush()

	r.wantRedraw = true

	if err != nil {
		return err
	}

	r.log.Debug("reconfigured",
		slog.String("params", p.String()),
		slog.String("canvas", r.canvas.String()),
		slog.String("state", r.state.String()),
	)

	return nil
}

// SetPanscan changes the panscan amount and reconfigures the renderer when a
// video is configured.
func (r *Renderer) SetPanscan(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: panscan must be within [0, 1], got %g", ErrInvalidConfig, v)
	}

	r.fit.Panscan = v

	if !r.configured {
		return nil
	}

	return r.Reconfig(r.params)
}

// Draw renders f into shared memory, ready for [Renderer.Flip].
//
// The terminal size is checked on every call, and a change in canvas pixel
// size re-derives the placement and clears the screen before drawing. A
// repeated frame is skipped entirely, as is its flip, unless the overlay needs
// redrawing or the canvas was resized.
//
// Failing to publish to shared memory is logged and skips the frame, leaving
// the previous image on screen; Draw still returns nil.
func (r *Renderer) Draw(f Frame) error {
	switch {
	case r.state == StateClosed:
		return ErrClosed
	case !r.configured:
		return ErrNotConfigured
	}

	prev := r.canvas
	r.canvas = r.resolve()

	if !r.canvas.Valid() {
		r.enterTooSmall()

		return nil
	}

	resized := !prev.SamePixels(r.canvas)

	switch {
	case resized:
		r.log.Debug("canvas resized",
			slog.String("from", prev.String()),
			slog.String("to", r.canvas.String()),
		)

		err := r.applyOutput()

		r.emitter.ClearScreen()
		r.emitter.Flush()

		if err != nil {
			r.configured = false
			r.skipFlip = true

			return err
		}

	case prev.Rows != r.canvas.Rows || prev.Cols != r.canvas.Cols:
		r.origin = canvas.Origin(r.canvas, r.dst, r.override)
	}

	if r.state == StateTooSmall {
		r.skipFlip = true

		return nil
	}

	if f.Repeat && !f.Redraw && !r.wantRedraw && !resized {
		r.skipFlip = true

		return nil
	}

	r.skipFlip = false
	r.wantRedraw = false

	var pts time.Duration

	if f.Current != nil {
		err := r.scaler.Scale(r.target, f.Current)
		if err != nil {
			r.log.Warn("scaling frame", slog.Any("error", err))

			r.skipFlip = true

			return nil
		}

		pts = f.PTS
	} else {
		scale.Clear(r.target)
	}

	r.overlay.Draw(r.target, pts)

	if r.held != nil {
		r.log.Debug("discarding unflipped buffer")
		r.discardHeld()
	}

	buf, err := r.buffers.Publish(r.target)
	if err != nil {
		r.log.Warn("publishing frame", slog.Any("error", err))

		r.skipFlip = true
		r.state = StateReady

		return nil
	}

	r.held = buf
	r.state = StateDisplaying

	return nil
}

// Flip shows the frame published by the last [Renderer.Draw] and releases its
// buffer. It does nothing when the draw was skipped or failed.
//
// The terminal unlinks the segment once it has read it. Nothing confirms
// that it has, so a following Draw may overwrite a segment the terminal has
// not consumed yet.
func (r *Renderer) Flip() {
	if r.state == StateTooSmall || r.skipFlip || r.held == nil {
		return
	}

	r.emitter.Announce(r.origin, r.buffers.Segment().Name, r.held.Width(), r.held.Height())
	r.releaseHeld()

	r.state = StateReady
}

// Close restores the terminal cursor, clears the screen if configured, and
// releases the render target. A frame drawn but never flipped is discarded
// and its segment removed. Close is idempotent.
func (r *Renderer) Close() error {
	if r.state == StateClosed {
		return nil
	}

	r.mode.Release()
	r.discardHeld()
	r.target = nil
	r.state = StateClosed

	return nil
}

func (r *Renderer) resolve() canvas.Canvas {
	return canvas.Resolve(r.query.Size(), r.override)
}

// applyOutput discards the render target and held buffer, then derives the
// placement for the current canvas and rebuilds the target and scaler.
func (r *Renderer) applyOutput() error {
	r.discardHeld()
	r.target = nil

	if !r.canvas.Valid() {
		r.enterTooSmall()

		return nil
	}

	src := canvas.Source{
		Width:       r.params.Width,
		Height:      r.params.Height,
		PixelAspect: r.params.PixelAspect,
	}

	r.src, r.dst = canvas.Fit(src, r.canvas, r.fit)
	r.origin = canvas.Origin(r.canvas, r.dst, r.override)

	if !r.scaler.Supports(r.params.Format, scale.FormatRGBA) {
		r.state = StateSizingKnown

		return fmt.Errorf("%w: %w: %s", ErrReconfig, scale.ErrUnsupportedFormat, r.params.Format)
	}

	if r.dst.Empty() {
		r.enterTooSmall()

		return nil
	}

	err := r.scaler.Reinit(r.params, r.src, r.dst.Dx(), r.dst.Dy())
	if err != nil {
		r.state = StateSizingKnown

		return fmt.Errorf("%w: %w", ErrReconfig, err)
	}

	r.target = image.NewRGBA(image.Rect(0, 0, r.dst.Dx(), r.dst.Dy()))
	r.state = StateReady

	return nil
}

func (r *Renderer) enterTooSmall() {
	if r.state != StateTooSmall {
		r.log.Info("canvas too small, not rendering",
			slog.String("canvas", r.canvas.String()),
			slog.String("params", r.params.String()),
		)
	}

	r.state = StateTooSmall
	r.skipFlip = true
}

// releaseHeld releases the held buffer after it has been announced.
func (r *Renderer) releaseHeld() {
	if r.held == nil {
		return
	}

	err := r.held.Release()
	if err != nil {
		r.log.Warn("releasing buffer", slog.Any("error", err))
	}

	r.held = nil
}

// discardHeld drops a held buffer that was never announced, removing its
// segment.
func (r *Renderer) discardHeld() {
	if r.held == nil {
		return
	}

	err := r.held.Discard()
	if err != nil {
		r.log.Warn("discarding buffer", slog.Any("error", err))
	}

	r.held = nil
}
