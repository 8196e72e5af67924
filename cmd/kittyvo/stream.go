package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.jacobcolvin.com/kittyvo/scale"
)

// ErrProbe indicates ffprobe output without a usable video stream.
var ErrProbe = errors.New("probe video")

// video decodes a video file with ffmpeg into yuv420p frames.
type video struct {
	path   string
	params scale.Params
	fps    int
}

// openVideo checks that ffmpeg and ffprobe are available and probes path for
// the geometry of its first video stream.
func openVideo(ctx context.Context, path string, fps int) (*video, error) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		_, err := exec.LookPath(bin)
		if err != nil {
			return nil, fmt.Errorf(
				"%s not found in PATH: install ffmpeg or use a directory of PNG frames instead", bin,
			)
		}
	}

	//nolint:gosec // path is a user-provided CLI argument, not untrusted input.
	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,sample_aspect_ratio",
		"-of", "json",
		path,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	params, err := parseProbe(out)
	if err != nil {
		return nil, err
	}

	return &video{path: path, params: params, fps: fps}, nil
}

// parseProbe reads ffprobe JSON output into yuv420p [scale.Params]. Odd
// dimensions are rounded down to even ones, as chroma subsampling requires.
func parseProbe(data []byte) (scale.Params, error) {
	var probe struct {
		Streams []struct {
			SampleAspectRatio string `json:"sample_aspect_ratio"`
			Width             int    `json:"width"`
			Height            int    `json:"height"`
		} `json:"streams"`
	}

	err := json.Unmarshal(data, &probe)
	if err != nil {
		return scale.Params{}, fmt.Errorf("%w: %w", ErrProbe, err)
	}

	if len(probe.Streams) == 0 {
		return scale.Params{}, fmt.Errorf("%w: no video stream", ErrProbe)
	}

	s := probe.Streams[0]

	w, h := s.Width&^1, s.Height&^1
	if w <= 0 || h <= 0 {
		return scale.Params{}, fmt.Errorf("%w: invalid size %dx%d", ErrProbe, s.Width, s.Height)
	}

	return scale.Params{
		Format:      scale.FormatYUV420P,
		Width:       w,
		Height:      h,
		PixelAspect: parseRatio(s.SampleAspectRatio),
	}, nil
}

// parseRatio parses an "N:D" ratio. Malformed or unknown ratios, which
// ffprobe reports as "0:1", return zero.
func parseRatio(s string) float64 {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return 0
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0
	}

	d, err := strconv.Atoi(den)
	if err != nil || d <= 0 {
		return 0
	}

	return float64(n) / float64(d)
}

// Params returns the probed geometry.
func (v *video) Params() scale.Params {
	return v.params
}

// Frames runs ffmpeg and sends each decoded frame. The process is killed
// when ctx is done.
func (v *video) Frames(ctx context.Context, out chan<- frame) (int, error) {
	vf := fmt.Sprintf("fps=%d,scale=%d:%d", v.fps, v.params.Width, v.params.Height)

	//nolint:gosec // path and fps are user-provided CLI arguments, not untrusted input.
	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-nostdin",
		"-v", "error",
		"-i", v.path,
		"-vf", vf,
		"-pix_fmt", "yuv420p",
		"-f", "rawvideo",
		"pipe:1",
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("creating stdout pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		return 0, fmt.Errorf("starting ffmpeg: %w", err)
	}

	n, readErr := v.read(ctx, stdout, out)
	if readErr != nil {
		// Unblock ffmpeg if it is still writing.
		//nolint:errcheck // Drained only to let the process exit.
		io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return n, ctx.Err()
	case readErr != nil:
		return n, readErr
	case waitErr != nil:
		return n, fmt.Errorf("running ffmpeg: %w: %s", waitErr, strings.TrimSpace(stderr.String()))
	}

	return n, nil
}

func (v *video) read(ctx context.Context, r io.Reader, out chan<- frame) (int, error) {
	for i := 0; ; i++ {
		img, err := readYCbCr(r, v.params.Width, v.params.Height)
		if errors.Is(err, io.EOF) {
			return i, nil
		}

		if err != nil {
			return i, fmt.Errorf("reading frame %d: %w", i, err)
		}

		err = send(ctx, out, frame{img: img, pts: framePTS(i, v.fps)})
		if err != nil {
			return i, err
		}
	}
}

// readYCbCr reads one planar yuv420p frame of w x h pixels from r. It returns
// [io.EOF] when r is exhausted at a frame boundary and
// [io.ErrUnexpectedEOF] for a truncated frame.
func readYCbCr(r io.Reader, w, h int) (*image.YCbCr, error) {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)

	_, err := io.ReadFull(r, img.Y)
	if err != nil {
		return nil, err
	}

	for _, plane := range [][]byte{img.Cb, img.Cr} {
		_, err = io.ReadFull(r, plane)
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		if err != nil {
			return nil, err
		}
	}

	return img, nil
}
