package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/kittyvo/scale"
	"go.jacobcolvin.com/kittyvo/vo"
)

func TestParseProbe(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  scale.Params
		err   bool
	}{
		"square pixels": {
			input: `{"streams":[{"width":1920,"height":1080,"sample_aspect_ratio":"1:1"}]}`,
			want:  scale.Params{Format: scale.FormatYUV420P, Width: 1920, Height: 1080, PixelAspect: 1},
		},
		"anamorphic": {
			input: `{"streams":[{"width":720,"height":480,"sample_aspect_ratio":"32:27"}]}`,
			want:  scale.Params{Format: scale.FormatYUV420P, Width: 720, Height: 480, PixelAspect: 32.0 / 27.0},
		},
		"odd size rounds down": {
			input: `{"streams":[{"width":641,"height":361}]}`,
			want:  scale.Params{Format: scale.FormatYUV420P, Width: 640, Height: 360},
		},
		"unknown aspect": {
			input: `{"streams":[{"width":64,"height":48,"sample_aspect_ratio":"0:1"}]}`,
			want:  scale.Params{Format: scale.FormatYUV420P, Width: 64, Height: 48},
		},
		"no streams": {
			input: `{"streams":[]}`,
			err:   true,
		},
		"too small": {
			input: `{"streams":[{"width":1,"height":1}]}`,
			err:   true,
		},
		"not json": {
			input: `width=640`,
			err:   true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := parseProbe([]byte(tc.input))
			if tc.err {
				require.ErrorIs(t, err, ErrProbe)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want.Format, got.Format)
			assert.Equal(t, tc.want.Width, got.Width)
			assert.Equal(t, tc.want.Height, got.Height)
			assert.InDelta(t, tc.want.PixelAspect, got.PixelAspect, 1e-9)
		})
	}
}

func TestReadYCbCr(t *testing.T) {
	t.Parallel()

	const w, h = 4, 2

	frameSize := w*h + 2*(w/2)*(h/2)

	data := make([]byte, 2*frameSize)
	for i := range data {
		data[i] = byte(i)
	}

	r := bytes.NewReader(data)

	first, err := readYCbCr(r, w, h)
	require.NoError(t, err)
	assert.Equal(t, scale.FormatYUV420P, scale.FormatOf(first))
	assert.Equal(t, data[:w*h], first.Y)
	assert.Equal(t, data[w*h:w*h+2], first.Cb)
	assert.Equal(t, data[w*h+2:frameSize], first.Cr)

	second, err := readYCbCr(r, w, h)
	require.NoError(t, err)
	assert.Equal(t, data[frameSize:frameSize+w*h], second.Y)

	_, err = readYCbCr(r, w, h)
	require.ErrorIs(t, err, io.EOF)

	_, err = readYCbCr(bytes.NewReader(data[:w*h+1]), w, h)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// opaque returns an opaque black image, which PNG round trips as RGBA.
func opaque(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	return img
}

func TestFrameDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	palette := image.NewPaletted(image.Rect(0, 0, 8, 6), color.Palette{color.Black, color.White})
	writePNG(t, filepath.Join(dir, "frame_002.png"), palette)
	writePNG(t, filepath.Join(dir, "frame_001.png"), opaque(8, 6))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	src, err := openSource(t.Context(), dir, 4)
	require.NoError(t, err)
	assert.Equal(t, scale.Params{Format: scale.FormatRGBA, Width: 8, Height: 6}, src.Params())

	out := make(chan frame, 4)

	n, err := src.Frames(t.Context(), out)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	close(out)

	var got []frame
	for f := range out {
		got = append(got, f)
	}

	require.Len(t, got, 2)
	assert.Equal(t, time.Duration(0), got[0].pts)
	assert.Equal(t, 250*time.Millisecond, got[1].pts)
	assert.IsType(t, &image.RGBA{}, got[1].img)
}

func TestOpenSourceErrors(t *testing.T) {
	t.Parallel()

	_, err := openSource(t.Context(), t.TempDir(), 24)
	require.ErrorIs(t, err, ErrNoFrames)

	_, err = openSource(t.Context(), filepath.Join(t.TempDir(), "missing.mp4"), 24)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// sliceSource replays a fixed list of images.
type sliceSource struct {
	imgs []image.Image
}

func (s *sliceSource) Params() scale.Params {
	return scale.ParamsOf(s.imgs[0])
}

func (s *sliceSource) Frames(ctx context.Context, out chan<- frame) (int, error) {
	for i, img := range s.imgs {
		err := send(ctx, out, frame{img: img, pts: framePTS(i, 1000)})
		if err != nil {
			return i, err
		}
	}

	return len(s.imgs), nil
}

// emptySource produces no frames.
type emptySource struct{}

func (emptySource) Params() scale.Params {
	return scale.Params{Format: scale.FormatRGBA, Width: 1, Height: 1}
}

func (emptySource) Frames(context.Context, chan<- frame) (int, error) { return 0, nil }

func newPlayer(t *testing.T, out io.Writer, src source, loop bool) *player {
	t.Helper()

	cfg := vo.NewConfig()
	cfg.ShmDir = t.TempDir()
	cfg.Width = 32
	cfg.Height = 24

	r, err := cfg.NewRenderer(out)
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, r.Close()) })

	return &player{
		renderer: r,
		src:      src,
		log:      slog.New(slog.DiscardHandler),
		fps:      1000,
		loop:     loop,
	}
}

func TestPlayer(t *testing.T) {
	t.Parallel()

	src := &sliceSource{imgs: []image.Image{
		image.NewRGBA(image.Rect(0, 0, 16, 12)),
		image.NewRGBA(image.Rect(0, 0, 16, 12)),
		image.NewYCbCr(image.Rect(0, 0, 16, 12), image.YCbCrSubsampleRatio420),
	}}

	var out bytes.Buffer

	p := newPlayer(t, &out, src, false)

	require.NoError(t, p.play(t.Context()))

	assert.Equal(t, 3, strings.Count(out.String(), "\x1b_G"))
	// One clear for the initial configuration and one for the format change.
	assert.Equal(t, 2, strings.Count(out.String(), "\x1b[2J"))
}

func TestPlayerNoFrames(t *testing.T) {
	t.Parallel()

	p := newPlayer(t, io.Discard, emptySource{}, true)

	require.ErrorIs(t, p.play(t.Context()), ErrNoFrames)
}

func TestPlayerCancel(t *testing.T) {
	t.Parallel()

	src := &sliceSource{imgs: []image.Image{image.NewRGBA(image.Rect(0, 0, 4, 4))}}
	p := newPlayer(t, io.Discard, src, true)

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(50*time.Millisecond, cancel)

	require.NoError(t, p.play(ctx))
}

func TestPrintSchema(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, printSchema(cmd))
	assert.Contains(t, out.String(), `"title": "kittyvo"`)
	assert.Contains(t, out.String(), `"panscan"`)
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&options{fps: 24}).validate())
	require.ErrorIs(t, (&options{}).validate(), vo.ErrInvalidConfig)
}
