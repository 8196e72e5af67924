// Package canvas resolves the pixel area available for drawing images into a
// terminal and places a video source inside it.
//
// [Resolve] combines the size reported by the terminal with a user supplied
// [Override] into a [Canvas]. Terminals that do not report their pixel size get
// a fixed fallback of [FallbackWidth] x [FallbackHeight] pixels, so a canvas
// produced by Resolve is almost always usable.
//
// [Fit] derives the source crop and destination rectangles for a video of a
// given size and pixel aspect, and [Origin] maps the destination rectangle to
// the 1-based terminal cell where the image is anchored:
//
//	c := canvas.Resolve(size, override)
//	if !c.Valid() {
//	    return
//	}
//
//	src, dst := canvas.Fit(source, c, canvas.FitOptions{KeepAspect: true})
//	origin := canvas.Origin(c, dst, override)
package canvas
