package terminal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/kittyvo/canvas"
	"go.jacobcolvin.com/kittyvo/terminal"
)

func TestDeviceNotATerminal(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	defer func() { require.NoError(t, f.Close()) }()

	assert.Equal(t, canvas.Size{}, terminal.NewDevice(f).Size())
}

func TestFunc(t *testing.T) {
	t.Parallel()

	want := canvas.Size{Rows: 24, Cols: 80, Width: 800, Height: 480}

	var q terminal.Querier = terminal.Func(func() canvas.Size { return want })

	assert.Equal(t, want, q.Size())
}
