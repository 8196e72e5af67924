package scale

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"golang.org/x/image/draw"
)

var (
	// ErrUnsupportedFormat indicates a pixel format conversion the scaler
	// cannot perform.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	// ErrInvalidSize indicates an empty source crop or destination size.
	ErrInvalidSize = errors.New("invalid size")
	// ErrNotInitialized indicates [Scaler.Scale] was called before a
	// successful [Scaler.Reinit].
	ErrNotInitialized = errors.New("scaler not initialized")
	// ErrFormatMismatch indicates a frame whose format differs from the one
	// the scaler was initialized for.
	ErrFormatMismatch = errors.New("frame format mismatch")
	// ErrUnknownKernel indicates an unrecognized [Kernel] name.
	ErrUnknownKernel = errors.New("unknown kernel")
)

// Background is the color a target is cleared to when there is no frame.
var Background = color.RGBA{A: 0xff}

// Kernel names a resampling algorithm.
type Kernel string

const (
	KernelNearest        Kernel = "nearest"
	KernelApproxBiLinear Kernel = "approx-bilinear"
	KernelBiLinear       Kernel = "bilinear"
	KernelCatmullRom     Kernel = "catmull-rom"
)

// GetAllKernelStrings returns the names of all supported kernels.
func GetAllKernelStrings() []string {
	return []string{
		string(KernelNearest),
		string(KernelApproxBiLinear),
		string(KernelBiLinear),
		string(KernelCatmullRom),
	}
}

// ParseKernel returns the [Kernel] with the given name.
func ParseKernel(s string) (Kernel, error) {
	if !slices.Contains(GetAllKernelStrings(), s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKernel, s)
	}

	return Kernel(s), nil
}

// Scaler converts source frames into RGBA images of a fixed size.
//
// A Scaler must be initialized with [Scaler.Reinit] for every combination of
// source format, crop rectangle and destination size before frames can be
// scaled. Kernel based algorithms precompute their weights during Reinit.
//
// Create instances with [New].
type Scaler struct {
	ctx    draw.Scaler
	kernel Kernel
	crop   image.Rectangle
	format Format
	dw, dh int
}

// New returns an uninitialized [Scaler] using kernel k.
func New(k Kernel) (*Scaler, error) {
	_, err := ParseKernel(string(k))
	if err != nil {
		return nil, err
	}

	return &Scaler{kernel: k}, nil
}

// Supports reports whether frames in src can be converted to dst. The only
// destination is [FormatRGBA].
func (s *Scaler) Supports(src, dst Format) bool {
	if dst != FormatRGBA {
		return false
	}

	_, known := formatNames[src]

	return known && src != FormatUnknown
}

// Reinit rebuilds the scaling context for frames described by p, cropped to
// crop and scaled to dw x dh pixels.
//
// The crop origin is rounded down to the alignment of the source format. On
// failure the scaler is left uninitialized.
func (s *Scaler) Reinit(p Params, crop image.Rectangle, dw, dh int) error {
	s.ctx = nil

	if !s.Supports(p.Format, FormatRGBA) {
		return fmt.Errorf("%w: %s to %s", ErrUnsupportedFormat, p.Format, FormatRGBA)
	}

	if dw <= 0 || dh <= 0 {
		return fmt.Errorf("%w: destination %dx%d", ErrInvalidSize, dw, dh)
	}

	crop = crop.Intersect(image.Rect(0, 0, p.Width, p.Height))
	if crop.Empty() {
		return fmt.Errorf("%w: empty crop of %dx%d source", ErrInvalidSize, p.Width, p.Height)
	}

	ax, ay := p.Format.Align()
	crop.Min.X -= crop.Min.X % ax
	crop.Min.Y -= crop.Min.Y % ay

	s.crop = crop
	s.format = p.Format
	s.dw, s.dh = dw, dh

	switch s.kernel {
	case KernelNearest:
		s.ctx = draw.NearestNeighbor
	case KernelApproxBiLinear:
		s.ctx = draw.ApproxBiLinear
	case KernelBiLinear:
		s.ctx = draw.BiLinear.NewScaler(dw, dh, crop.Dx(), crop.Dy())
	case KernelCatmullRom:
		s.ctx = draw.CatmullRom.NewScaler(dw, dh, crop.Dx(), crop.Dy())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKernel, s.kernel)
	}

	return nil
}

// Crop returns the aligned source crop rectangle from the last successful
// [Scaler.Reinit].
func (s *Scaler) Crop() image.Rectangle {
	return s.crop
}

// Scale crops src and scales it over the whole of dst.
func (s *Scaler) Scale(dst *image.RGBA, src image.Image) error {
	if s.ctx == nil {
		return ErrNotInitialized
	}

	f := FormatOf(src)
	if f != s.format {
		return fmt.Errorf("%w: got %s, want %s", ErrFormatMismatch, f, s.format)
	}

	db := dst.Bounds()
	if db.Dx() != s.dw || db.Dy() != s.dh {
		return fmt.Errorf("%w: target %dx%d, want %dx%d", ErrInvalidSize, db.Dx(), db.Dy(), s.dw, s.dh)
	}

	sb := src.Bounds()

	sr := s.crop.Add(sb.Min).Intersect(sb)
	if sr.Empty() {
		return fmt.Errorf("%w: crop %v outside frame %v", ErrInvalidSize, s.crop, sb)
	}

	s.ctx.Scale(dst, db, src, sr, draw.Src, nil)

	return nil
}

// Clear fills dst with [Background].
func Clear(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}
