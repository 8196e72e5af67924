// Package vo implements a video output that draws frames in terminals
// supporting the kitty graphics protocol.
//
// Frames are scaled to the terminal's pixel canvas, composited with an
// optional overlay, and handed to the terminal through a POSIX shared memory
// object rather than inline image data. Only the small announcement escape
// sequence travels over the terminal stream.
//
// Typical usage creates a [Config], registers flags, then drives a
// [Renderer] with decoded frames:
//
//	cfg := vo.NewConfig()
//	cfg.RegisterFlags(rootCmd.Flags())
//
//	r, err := cfg.NewRenderer(os.Stdout, vo.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	err = r.Reconfig(scale.ParamsOf(first))
//	// ...
//	for frame := range frames {
//		err = r.Draw(vo.Frame{Current: frame.Image, PTS: frame.PTS})
//		// ...
//		r.Flip()
//	}
//
// The renderer checks the terminal size on every draw and adapts to resizes
// on its own. A terminal that does not report its pixel size gets a
// 320x240 canvas, and the config can override either dimension.
package vo
