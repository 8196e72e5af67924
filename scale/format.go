package scale

import (
	"fmt"
	"image"
	"strings"
)

// Format is a source pixel format.
type Format int

const (
	// FormatUnknown is any image type the scaler does not know how to read.
	FormatUnknown Format = iota
	// FormatRGBA is 8-bit premultiplied RGBA ([*image.RGBA]).
	FormatRGBA
	// FormatNRGBA is 8-bit non-premultiplied RGBA ([*image.NRGBA]).
	FormatNRGBA
	// FormatGray is 8-bit luma ([*image.Gray]).
	FormatGray
	// FormatYUV444P is planar Y'CbCr without chroma subsampling.
	FormatYUV444P
	// FormatYUV422P is planar Y'CbCr with horizontally halved chroma.
	FormatYUV422P
	// FormatYUV440P is planar Y'CbCr with vertically halved chroma.
	FormatYUV440P
	// FormatYUV420P is planar Y'CbCr with chroma halved on both axes.
	FormatYUV420P
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatRGBA:    "rgba",
	FormatNRGBA:   "nrgba",
	FormatGray:    "gray",
	FormatYUV444P: "yuv444p",
	FormatYUV422P: "yuv422p",
	FormatYUV440P: "yuv440p",
	FormatYUV420P: "yuv420p",
}

func (f Format) String() string {
	name, ok := formatNames[f]
	if !ok {
		return fmt.Sprintf("Format(%d)", int(f))
	}

	return name
}

// ParseFormat returns the [Format] with the given name.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	for f, name := range formatNames {
		if f != FormatUnknown && name == s {
			return f, nil
		}
	}

	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Align returns the horizontal and vertical alignment that crop offsets must
// respect. Cropping a subsampled format at an unaligned offset would split a
// chroma sample.
func (f Format) Align() (int, int) {
	switch f {
	case FormatYUV420P:
		return 2, 2
	case FormatYUV422P:
		return 2, 1
	case FormatYUV440P:
		return 1, 2
	}

	return 1, 1
}

// FormatOf returns the [Format] of img, or [FormatUnknown].
func FormatOf(img image.Image) Format {
	switch m := img.(type) {
	case *image.RGBA:
		return FormatRGBA
	case *image.NRGBA:
		return FormatNRGBA
	case *image.Gray:
		return FormatGray
	case *image.YCbCr:
		switch m.SubsampleRatio {
		case image.YCbCrSubsampleRatio444:
			return FormatYUV444P
		case image.YCbCrSubsampleRatio422:
			return FormatYUV422P
		case image.YCbCrSubsampleRatio440:
			return FormatYUV440P
		case image.YCbCrSubsampleRatio420:
			return FormatYUV420P
		}
	}

	return FormatUnknown
}

// Params describes a video source.
type Params struct {
	Format Format
	Width  int
	Height int
	// PixelAspect is the pixel width divided by the pixel height; zero means
	// square pixels.
	PixelAspect float64
}

// ParamsOf returns the [Params] of img with square pixels.
func ParamsOf(img image.Image) Params {
	b := img.Bounds()

	return Params{
		Format: FormatOf(img),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

func (p Params) String() string {
	return fmt.Sprintf("%s %dx%d", p.Format, p.Width, p.Height)
}
