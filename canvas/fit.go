package canvas

import (
	"image"
	"math"
)

// Source describes the geometry of a video source.
type Source struct {
	Width  int
	Height int
	// PixelAspect is the pixel width divided by the pixel height. Values
	// less than or equal to zero are treated as square pixels.
	PixelAspect float64
}

// FitOptions controls how a [Source] is placed on a [Canvas].
type FitOptions struct {
	// KeepAspect preserves the display aspect of the source. When false the
	// source is stretched over the whole canvas.
	KeepAspect bool
	// Panscan moves the scaled size from fitting inside the canvas (0) to
	// covering it (1), cropping the source along the overflowing axis.
	Panscan float64
}

// Fit returns the crop rectangle in source coordinates and the destination
// rectangle in canvas coordinates for src. Both are empty when src has no
// area. The destination may be empty when the canvas is too small to show
// even one pixel of the source along an axis.
func Fit(src Source, c Canvas, opts FitOptions) (image.Rectangle, image.Rectangle) {
	if src.Width <= 0 || src.Height <= 0 || !c.Valid() {
		return image.Rectangle{}, image.Rectangle{}
	}

	srcRect := image.Rect(0, 0, src.Width, src.Height)

	if !opts.KeepAspect {
		return srcRect, c.Bounds()
	}

	par := src.PixelAspect
	if par <= 0 {
		par = 1
	}

	dispW := float64(src.Width) * par
	dispH := float64(src.Height)

	sx := float64(c.Width) / dispW
	sy := float64(c.Height) / dispH

	fit := math.Min(sx, sy)
	fill := math.Max(sx, sy)
	scale := fit + clamp01(opts.Panscan)*(fill-fit)

	scaledW := int(math.Round(dispW * scale))
	scaledH := int(math.Round(dispH * scale))

	sx0, sx1, dx0, dx1 := fitAxis(scaledW, c.Width, src.Width)
	sy0, sy1, dy0, dy1 := fitAxis(scaledH, c.Height, src.Height)

	return image.Rect(sx0, sy0, sx1, sy1), image.Rect(dx0, dy0, dx1, dy1)
}

// fitAxis places a scaled extent along one axis of the canvas. Overflow is
// cropped symmetrically from the source; otherwise the extent is centered.
func fitAxis(scaled, canvasLen, srcLen int) (int, int, int, int) {
	if scaled > canvasLen {
		visible := float64(canvasLen) / float64(scaled)
		crop := int(math.Round(float64(srcLen) * (1 - visible) / 2))

		return crop, srcLen - crop, 0, canvasLen
	}

	off := (canvasLen - scaled) / 2

	return 0, srcLen, off, off + scaled
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
