// Package shm hands RGBA images to a terminal emulator through a named POSIX
// shared memory object.
//
// A [Manager] owns one fixed [Segment]. [Manager.Publish] sizes the segment
// for the image, maps it and copies the pixels in with tightly packed rows; the
// caller then announces the segment name to the terminal and calls
// [Buffer.Release]:
//
//	m := shm.NewManager(shm.DefaultSegment())
//
//	buf, err := m.Publish(img)
//	if err != nil {
//	    return err
//	}
//
//	emitter.Announce(origin, m.Segment().Name, buf.Width(), buf.Height())
//	err = buf.Release()
//
// Publish, announce and release are strictly sequential: Publish refuses to
// run while a buffer is outstanding. The segment is never unlinked after a
// successful publish because the terminal removes it once it has read the
// image.
package shm
