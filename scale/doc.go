// Package scale converts decoded video frames into RGBA images sized for a
// terminal canvas.
//
// Frames are ordinary [image.Image] values; [FormatOf] maps the concrete Go
// image types onto the planar and packed pixel formats a video decoder
// produces. A [Scaler] is bound to one source format, crop rectangle and
// destination size by [Scaler.Reinit] and then converts any number of frames
// with [Scaler.Scale]:
//
//	s, err := scale.New(scale.KernelBiLinear)
//	err = s.Reinit(params, crop, width, height)
//
//	dst := image.NewRGBA(image.Rect(0, 0, width, height))
//	err = s.Scale(dst, frame)
//
// Resampling is done with [golang.org/x/image/draw].
package scale
