package canvas_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/kittyvo/canvas"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		size     canvas.Size
		override canvas.Override
		want     canvas.Canvas
	}{
		"terminal reports everything": {
			size: canvas.Size{Rows: 24, Cols: 80, Width: 800, Height: 600},
			want: canvas.Canvas{Rows: 24, Cols: 80, Width: 800, Height: 600},
		},
		"unknown width falls back on that axis only": {
			size: canvas.Size{Rows: 24, Cols: 80, Width: 0, Height: 600},
			want: canvas.Canvas{Rows: 24, Cols: 80, Width: 320, Height: 600},
		},
		"unknown height falls back on that axis only": {
			size: canvas.Size{Width: 1024, Height: -1},
			want: canvas.Canvas{Width: 1024, Height: 240},
		},
		"nothing reported": {
			size: canvas.Size{},
			want: canvas.Canvas{Width: 320, Height: 240},
		},
		"override wins over terminal": {
			size:     canvas.Size{Rows: 24, Cols: 80, Width: 800, Height: 600},
			override: canvas.Override{Width: 640, Height: 360},
			want:     canvas.Canvas{Rows: 24, Cols: 80, Width: 640, Height: 360},
		},
		"override wins over fallback": {
			size:     canvas.Size{},
			override: canvas.Override{Width: 100, Height: 50},
			want:     canvas.Canvas{Width: 100, Height: 50},
		},
		"negative override is unset": {
			size:     canvas.Size{Width: 800, Height: 600},
			override: canvas.Override{Width: -5, Height: 0},
			want:     canvas.Canvas{Width: 800, Height: 600},
		},
		"cell counts are never defaulted": {
			size: canvas.Size{Rows: 0, Cols: 0, Width: 800, Height: 600},
			want: canvas.Canvas{Width: 800, Height: 600},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := canvas.Resolve(tc.size, tc.override)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCanvasValid(t *testing.T) {
	t.Parallel()

	assert.True(t, canvas.Canvas{Width: 1, Height: 1}.Valid())
	assert.False(t, canvas.Canvas{Width: 0, Height: 1}.Valid())
	assert.False(t, canvas.Canvas{Width: 1, Height: -1}.Valid())
}

func TestOrigin(t *testing.T) {
	t.Parallel()

	grid := canvas.Canvas{Rows: 24, Cols: 40, Width: 800, Height: 600}

	tcs := map[string]struct {
		canvas   canvas.Canvas
		dst      image.Rectangle
		override canvas.Override
		want     canvas.CellOrigin
	}{
		"proportional mapping": {
			canvas: grid,
			dst:    image.Rect(100, 50, 700, 550),
			want:   canvas.CellOrigin{Row: 3, Col: 6},
		},
		"top left corner": {
			canvas: grid,
			dst:    image.Rect(0, 0, 800, 600),
			want:   canvas.CellOrigin{Row: 1, Col: 1},
		},
		"overrides win": {
			canvas:   grid,
			dst:      image.Rect(100, 50, 700, 550),
			override: canvas.Override{Top: 7, Left: 9},
			want:     canvas.CellOrigin{Row: 7, Col: 9},
		},
		"single axis override": {
			canvas:   grid,
			dst:      image.Rect(100, 50, 700, 550),
			override: canvas.Override{Left: 2},
			want:     canvas.CellOrigin{Row: 3, Col: 2},
		},
		"zero cells anchor at one": {
			canvas: canvas.Canvas{Width: 800, Height: 600},
			dst:    image.Rect(100, 50, 700, 550),
			want:   canvas.CellOrigin{Row: 1, Col: 1},
		},
		"zero cells with override": {
			canvas:   canvas.Canvas{Width: 800, Height: 600},
			dst:      image.Rect(100, 50, 700, 550),
			override: canvas.Override{Top: 4},
			want:     canvas.CellOrigin{Row: 4, Col: 1},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, canvas.Origin(tc.canvas, tc.dst, tc.override))
		})
	}
}
