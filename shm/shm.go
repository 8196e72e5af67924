package shm

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	// DefaultName is the segment name announced to the terminal.
	DefaultName = "/kitty_img"
	// DefaultDir is where Linux exposes POSIX shared memory objects.
	DefaultDir = "/dev/shm"

	depth = 4
)

var (
	// ErrBufferOutstanding indicates a publish while a previous [Buffer] has
	// not been released.
	ErrBufferOutstanding = errors.New("buffer still outstanding")
	// ErrEmptyImage indicates an image with no pixels.
	ErrEmptyImage = errors.New("empty image")
	// ErrCreate indicates the shared memory object could not be opened.
	ErrCreate = errors.New("create shared memory object")
	// ErrResize indicates the shared memory object could not be resized.
	ErrResize = errors.New("resize shared memory object")
	// ErrMap indicates the shared memory object could not be mapped.
	ErrMap = errors.New("map shared memory object")
)

// Segment identifies a named shared memory object.
type Segment struct {
	// Name is the POSIX shared memory name, with a leading slash.
	Name string
	// Dir is the directory backing shared memory objects.
	Dir string
}

// DefaultSegment returns the [Segment] for [DefaultName] in [DefaultDir].
func DefaultSegment() Segment {
	return Segment{Name: DefaultName, Dir: DefaultDir}
}

// Path returns the filesystem path of the segment.
func (s Segment) Path() string {
	return filepath.Join(s.Dir, strings.TrimPrefix(s.Name, "/"))
}

// Manager publishes images through a single [Segment]. At most one [Buffer]
// is outstanding at a time. A Manager is not safe for concurrent use.
//
// Create instances with [NewManager].
type Manager struct {
	held    *Buffer
	segment Segment
}

// NewManager creates a [Manager] for seg.
func NewManager(seg Segment) *Manager {
	return &Manager{segment: seg}
}

// Segment returns the segment the Manager publishes to.
func (m *Manager) Segment() Segment {
	return m.segment
}

// Outstanding reports whether a published [Buffer] has not been released.
func (m *Manager) Outstanding() bool {
	return m.held != nil
}

// Publish creates or reopens the segment, sizes it to exactly
// width*height*4 bytes, maps it and copies img into it with tightly packed
// rows.
//
// On failure nothing is left open or mapped, and the segment is unlinked
// since it was never announced.
func (m *Manager) Publish(img *image.RGBA) (*Buffer, error) {
	if m.held != nil {
		return nil, ErrBufferOutstanding
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	w, h := b.Dx(), b.Dy()
	size := w * h * depth
	path := m.segment.Path()

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCreate, m.segment.Name, err)
	}

	err = unix.Ftruncate(fd, int64(size))
	if err != nil {
		m.abandon(fd)

		return nil, fmt.Errorf("%w %s: %w", ErrResize, m.segment.Name, err)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		m.abandon(fd)

		return nil, fmt.Errorf("%w %s: %w", ErrMap, m.segment.Name, err)
	}

	rowBytes := w * depth
	for y := range h {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(data[y*rowBytes:(y+1)*rowBytes], img.Pix[off:off+rowBytes])
	}

	m.held = &Buffer{
		manager: m,
		data:    data,
		fd:      fd,
		width:   w,
		height:  h,
	}

	return m.held, nil
}

// abandon closes fd and removes the segment after a failed publish.
//
//nolint:errcheck // Best effort cleanup; the original error is reported.
func (m *Manager) abandon(fd int) {
	unix.Unlink(m.segment.Path())
	unix.Close(fd)
}

// Buffer is a published, mapped segment.
type Buffer struct {
	manager *Manager
	data    []byte
	fd      int
	width   int
	height  int
}

// Width returns the image width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *Buffer) Height() int { return b.height }

// Bytes returns the mapped pixel data. It is only valid until
// [Buffer.Release].
func (b *Buffer) Bytes() []byte { return b.data }

// Release unmaps the segment and closes its descriptor. The named object is
// not unlinked: once announced, the terminal owns it and removes it after
// reading. Releasing before the terminal has read the image is an accepted
// race, as the protocol has no acknowledgment. Release is idempotent.
func (b *Buffer) Release() error {
	if b.data == nil && b.fd < 0 {
		return nil
	}

	var errs []error

	if b.data != nil {
		err := unix.Munmap(b.data)
		if err != nil {
			errs = append(errs, fmt.Errorf("unmap: %w", err))
		}

		b.data = nil
	}

	if b.fd >= 0 {
		err := unix.Close(b.fd)
		if err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}

		b.fd = -1
	}

	if b.manager.held == b {
		b.manager.held = nil
	}

	return errors.Join(errs...)
}

// Discard releases a buffer that was never announced and removes its named
// object, which no terminal will unlink. A segment that is already gone is
// not an error. Discarding a released buffer does nothing, so a segment
// published after it is left alone.
func (b *Buffer) Discard() error {
	if b.data == nil && b.fd < 0 {
		return nil
	}

	err := b.Release()

	uerr := unix.Unlink(b.manager.segment.Path())
	if uerr != nil && !errors.Is(uerr, unix.ENOENT) {
		err = errors.Join(err, fmt.Errorf("unlink: %w", uerr))
	}

	return err
}
