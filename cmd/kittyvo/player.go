package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/trace"
	"time"

	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/kittyvo/scale"
	"go.jacobcolvin.com/kittyvo/vo"
)

// frameQueue is how many decoded frames may wait for the render loop.
const frameQueue = 8

// player paces frames from a source into a renderer.
type player struct {
	renderer *vo.Renderer
	src      source
	log      *slog.Logger
	fps      int
	loop     bool
}

// play decodes and renders until the source ends, or forever when looping.
// Cancelling ctx stops playback without error.
func (p *player) play(ctx context.Context) error {
	frames := make(chan frame, frameQueue)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)

		return p.decode(ctx, frames)
	})

	g.Go(func() error {
		return p.render(ctx, frames)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (p *player) decode(ctx context.Context, out chan<- frame) error {
	for pass := 0; ; pass++ {
		n, err := p.src.Frames(ctx, out)
		if err != nil {
			return err
		}

		p.log.Debug("end of stream", slog.Int("pass", pass), slog.Int("frames", n))

		if n == 0 {
			return ErrNoFrames
		}

		if !p.loop {
			return nil
		}
	}
}

// render draws one frame per tick. When the decoder has nothing new the last
// frame is drawn again as a repeat, which the renderer skips unless the
// terminal was resized.
func (p *player) render(ctx context.Context, frames <-chan frame) error {
	params := p.src.Params()

	err := p.renderer.Reconfig(params)
	if err != nil {
		return err
	}

	p.log.Info("playing",
		slog.String("params", params.String()),
		slog.Int("fps", p.fps),
		slog.String("state", p.renderer.State().String()),
	)

	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()

	var (
		last    frame
		started bool
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		req := vo.Frame{Current: last.img, PTS: last.pts, Repeat: true}

		select {
		case f, ok := <-frames:
			if !ok {
				return nil
			}

			next := scale.ParamsOf(f.img)
			if !sameGeometry(params, next) {
				next.PixelAspect = params.PixelAspect
				params = next

				err = p.renderer.Reconfig(params)
				if err != nil {
					return fmt.Errorf("frame at %s: %w", f.pts, err)
				}
			}

			last, started = f, true
			req = vo.Frame{Current: f.img, PTS: f.pts}

		default:
			if !started {
				continue
			}
		}

		err = p.renderFrame(ctx, req)
		if err != nil {
			return err
		}
	}
}

func (p *player) renderFrame(ctx context.Context, f vo.Frame) error {
	defer trace.StartRegion(ctx, "frame").End()

	err := p.renderer.Draw(f)
	if err != nil {
		return err
	}

	p.renderer.Flip()

	return nil
}

// sameGeometry reports whether a and b have the same format and size.
func sameGeometry(a, b scale.Params) bool {
	return a.Format == b.Format && a.Width == b.Width && a.Height == b.Height
}
