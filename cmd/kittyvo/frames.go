package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/draw"

	"go.jacobcolvin.com/kittyvo/scale"
)

// frameDir plays the PNG files of a directory, sorted by name.
type frameDir struct {
	dir    string
	names  []string
	params scale.Params
	fps    int
}

// openFrameDir lists the PNG files in dir and decodes the first one to learn
// the frame geometry.
func openFrameDir(dir string, fps int) (*frameDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no PNG files found in %s", ErrNoFrames, dir)
	}

	slices.Sort(names)

	first, err := decodePNG(filepath.Join(dir, names[0]))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", names[0], err)
	}

	return &frameDir{
		dir:    dir,
		names:  names,
		params: scale.ParamsOf(first),
		fps:    fps,
	}, nil
}

// Params returns the geometry of the first frame.
func (d *frameDir) Params() scale.Params {
	return d.params
}

// Frames decodes and sends each file in turn.
func (d *frameDir) Frames(ctx context.Context, out chan<- frame) (int, error) {
	for i, name := range d.names {
		img, err := decodePNG(filepath.Join(d.dir, name))
		if err != nil {
			return i, fmt.Errorf("decoding %s: %w", name, err)
		}

		err = send(ctx, out, frame{img: img, pts: framePTS(i, d.fps)})
		if err != nil {
			return i, err
		}
	}

	return len(d.names), nil
}

// decodePNG decodes the PNG at path, converting pixel layouts the scaler
// does not read to RGBA.
func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // Frame paths come from the input directory.
	if err != nil {
		return nil, err
	}

	defer f.Close() //nolint:errcheck // Read only.

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	return normalize(img), nil
}

// normalize returns img unchanged when its format is known to the scaler and
// an RGBA copy otherwise.
func normalize(img image.Image) image.Image {
	if scale.FormatOf(img) != scale.FormatUnknown {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}
