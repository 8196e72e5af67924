package osd_test

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/kittyvo/osd"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   time.Duration
		want string
	}{
		"zero": {
			in:   0,
			want: "0:00:00.000",
		},
		"sub second": {
			in:   41 * time.Millisecond,
			want: "0:00:00.041",
		},
		"hours minutes seconds": {
			in:   time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond,
			want: "1:02:03.450",
		},
		"negative clamps": {
			in:   -time.Second,
			want: "0:00:00.000",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, osd.FormatTimestamp(tc.in))
		})
	}
}

func TestTimecodeDraw(t *testing.T) {
	t.Parallel()

	dst := image.NewRGBA(image.Rect(0, 0, 160, 40))
	osd.NewTimecode().Draw(dst, 90*time.Second)

	// The box is anchored at the bottom-left corner.
	assert.NotZero(t, dst.RGBAAt(0, 39).A)
	// The top-right corner is outside the box.
	assert.Zero(t, dst.RGBAAt(159, 0).A)
}

func TestTimecodeDrawTooSmall(t *testing.T) {
	t.Parallel()

	dst := image.NewRGBA(image.Rect(0, 0, 10, 5))
	osd.NewTimecode().Draw(dst, time.Second)

	for _, b := range dst.Pix {
		assert.Zero(t, b)
	}
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var (
		gotPTS time.Duration
		gotDst *image.RGBA
	)

	r := osd.Func(func(dst *image.RGBA, pts time.Duration) {
		gotDst = dst
		gotPTS = pts
	})

	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	r.Draw(dst, time.Minute)

	assert.Same(t, dst, gotDst)
	assert.Equal(t, time.Minute, gotPTS)

	osd.Nop{}.Draw(dst, 0)
	assert.Equal(t, []byte{0, 0, 0, 0}, dst.Pix)
}
