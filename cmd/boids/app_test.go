package main

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo/geom"
)

func newTestApp(t *testing.T, backend string) (*App, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)

	cfg := DefaultConfig
	cfg.Backend = backend
	cfg.N = 100
	cfg.Workers = 2

	app, err := NewApp(screen, cfg)
	require.NoError(t, err)
	return app, screen
}

func statusLine(screen tcell.SimulationScreen) string {
	w, h := screen.Size()
	var sb strings.Builder
	for x := range w {
		r, _, _, _ := screen.GetContent(x, h-1)
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

func TestApp(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{"grid", "hash", "linear", "bvh"} {
		t.Run(backend, func(t *testing.T) {
			app, screen := newTestApp(t, backend)

			require.NoError(t, app.Frame(ctx))
			prefix := app.flock.Space().Name() + " n=100"
			assert.True(t, strings.HasPrefix(statusLine(screen), prefix), statusLine(screen))

			require.GreaterOrEqual(t, app.focus, 0)
			assert.True(t, app.near.Contains(uint32(app.focus)))

			x, y, ok := app.toScreen(app.flock.Agents()[app.focus].Pos)
			require.True(t, ok)
			r, _, _, _ := screen.GetContent(x, y)
			assert.Equal(t, '@', r)
		})
	}
}

func TestAppInput(t *testing.T) {
	ctx := context.Background()

	t.Run("Quit", func(t *testing.T) {
		app, _ := newTestApp(t, "linear")
		assert.False(t, app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
		assert.False(t, app.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
		assert.True(t, app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	})

	t.Run("Pause", func(t *testing.T) {
		app, screen := newTestApp(t, "linear")
		require.NoError(t, app.Frame(ctx))

		app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
		before := append([]geom.Vec(nil), positions(app)...)
		require.NoError(t, app.Frame(ctx))

		assert.Equal(t, before, positions(app))
		assert.Contains(t, statusLine(screen), "[paused]")
	})

	t.Run("HighlightRadius", func(t *testing.T) {
		app, _ := newTestApp(t, "hash")
		app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone))
		assert.InDelta(t, 75, app.cfg.Highlight, 1e-9)

		for range 50 {
			app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '-', tcell.ModNone))
		}
		assert.Equal(t, 1.0, app.cfg.Highlight)
	})

	t.Run("Cursor", func(t *testing.T) {
		app, _ := newTestApp(t, "grid")
		start := app.cursor

		app.HandleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
		assert.InDelta(t, start.X+1000.0/80, app.cursor.X, 1e-9)

		app.HandleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
		assert.InDelta(t, start.Y-1000.0/24, app.cursor.Y, 1e-9)

		app.HandleEvent(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
		x, y, ok := app.toScreen(app.cursor)
		require.True(t, ok)
		assert.Equal(t, 0, x)
		assert.Equal(t, 0, y)
	})

	t.Run("RunQuits", func(t *testing.T) {
		app, screen := newTestApp(t, "linear")
		screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
		assert.NoError(t, app.Run())
	})
}

func TestNewAppInvalid(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	cfg := DefaultConfig
	cfg.Backend = "quadtree"
	_, err := NewApp(screen, cfg)
	assert.Error(t, err)

	cfg = DefaultConfig
	cfg.Radius = 0
	_, err = NewApp(screen, cfg)
	assert.Error(t, err)
}

func TestArrow(t *testing.T) {
	assert.Equal(t, '→', arrow(0))
	assert.Equal(t, '↓', arrow(math.Pi/2))
	assert.Equal(t, '←', arrow(math.Pi))
	assert.Equal(t, '←', arrow(-math.Pi))
	assert.Equal(t, '↑', arrow(-math.Pi/2))
	assert.Equal(t, '↗', arrow(-math.Pi/4))
	assert.Equal(t, '→', arrow(4*math.Pi))
	assert.Equal(t, '↓', arrow(-3*math.Pi/2))
}

func positions(app *App) []geom.Vec {
	agents := app.flock.Agents()
	pts := make([]geom.Vec, len(agents))
	for i, a := range agents {
		pts[i] = a.Pos
	}
	return pts
}
