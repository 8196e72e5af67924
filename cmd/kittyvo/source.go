package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"go.jacobcolvin.com/kittyvo/scale"
)

// ErrNoFrames indicates a source that produced no frames.
var ErrNoFrames = errors.New("no frames")

// frame is a decoded picture and its presentation timestamp.
type frame struct {
	img image.Image
	pts time.Duration
}

// source produces decoded frames for playback.
type source interface {
	// Params describes the frames the source produces.
	Params() scale.Params
	// Frames sends every frame to out in presentation order and returns the
	// number sent. It returns early with ctx.Err() when ctx is done.
	Frames(ctx context.Context, out chan<- frame) (int, error)
}

// openSource opens input as a directory of PNG frames or, for any other
// file, as a video decoded by ffmpeg.
func openSource(ctx context.Context, input string, fps int) (source, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}

	if info.IsDir() {
		d, err := openFrameDir(input, fps)
		if err != nil {
			return nil, err
		}

		return d, nil
	}

	v, err := openVideo(ctx, input, fps)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// framePTS returns the timestamp of frame i at fps frames per second.
func framePTS(i, fps int) time.Duration {
	return time.Duration(i) * time.Second / time.Duration(fps)
}

// send delivers f to out unless ctx is done first.
func send(ctx context.Context, out chan<- frame, f frame) error {
	select {
	case out <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
