package main

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/gdamore/tcell/v2"

	"github.com/hupe1980/spatialgo"
	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/internal/resource"
	"github.com/hupe1980/spatialgo/sim"
)

const fpsRefresh = 500 * time.Millisecond

// Config holds the host configuration.
type Config struct {
	Backend   string
	N         int
	World     float64
	FPS       float64
	Radius    float64
	Highlight float64
	Workers   int
	Seed      uint64
}

// DefaultConfig contains the default host configuration.
var DefaultConfig = Config{
	Backend:   "grid",
	N:         2000,
	World:     1000,
	FPS:       30,
	Radius:    25,
	Highlight: 60,
	Seed:      1,
}

var (
	agentStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	nearStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	focusStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	cursorStyle = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// Eight headings, clockwise from east with y pointing down.
var arrows = []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// App renders a flock on a tcell screen.
type App struct {
	screen tcell.Screen
	cfg    Config

	flock *sim.Flock
	fps   *sim.FPSCounter

	width, height int

	cursor geom.Vec
	focus  int
	near   *roaring.Bitmap
	stats  sim.StepStats
	paused bool
}

// NewApp creates a host for an initialized screen.
func NewApp(screen tcell.Screen, cfg Config) (*App, error) {
	space, err := newSpace(cfg)
	if err != nil {
		return nil, err
	}

	flock, err := sim.NewFlock(space, cfg.N, cfg.Seed, func(p *sim.Params) {
		p.World = geom.NewBox(0, 0, cfg.World, cfg.World)
		p.Radius = cfg.Radius
		p.SeparationRadius = math.Min(p.SeparationRadius, cfg.Radius)
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		screen: screen,
		cfg:    cfg,
		flock:  flock,
		fps:    sim.NewFPSCounter(fpsRefresh, nil),
		cursor: geom.V(cfg.World/2, cfg.World/2),
		focus:  -1,
		near:   roaring.New(),
	}
	a.width, a.height = screen.Size()

	return a, nil
}

func newSpace(cfg Config) (*spatialgo.Space[int], error) {
	if !(cfg.Radius > 0) || !(cfg.World > 0) {
		return nil, fmt.Errorf("radius and world must be positive")
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	opts := []spatialgo.Option{
		spatialgo.WithWorkers(workers),
		spatialgo.WithController(resource.NewController(resource.Config{MaxWorkers: int64(workers)})),
		// Agents overflowing a bin coast for one frame.
		spatialgo.WithDropPolicy(spatialgo.DropAndCount),
	}

	switch cfg.Backend {
	case "grid":
		bins := max(int(cfg.World/cfg.Radius), 1)
		return spatialgo.Grid[int](cfg.World, cfg.World).
			Resolution(bins).
			QueryRadius(cfg.Radius).
			Options(opts...).
			Build()
	case "hash":
		return spatialgo.Hash[int](cfg.Radius).
			TableSize(max(cfg.N, 64)).
			QueryRadius(cfg.Radius).
			Options(opts...).
			Build()
	case "linear":
		return spatialgo.Linear[int]().Options(opts...).Build()
	case "bvh":
		return spatialgo.BVH[int]().Options(opts...).Build()
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Run drives the frame loop until the user quits.
func (a *App) Run() error {
	a.screen.EnableMouse()
	a.screen.HideCursor()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / math.Max(a.cfg.FPS, 1)))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.fps.Restart(time.Now())

	for {
		select {
		case ev := <-events:
			if !a.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			if err := a.Frame(ctx); err != nil {
				return err
			}
			a.fps.Tick(now)
		}
	}
}

// HandleEvent applies one input event. It returns false when the user quits.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			a.nudge(-1, 0)
		case tcell.KeyRight:
			a.nudge(1, 0)
		case tcell.KeyUp:
			a.nudge(0, -1)
		case tcell.KeyDown:
			a.nudge(0, 1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				a.paused = !a.paused
			case '+':
				a.cfg.Highlight *= 1.25
			case '-':
				a.cfg.Highlight = math.Max(a.cfg.Highlight/1.25, 1)
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		a.cursor = a.toWorld(x, y)

	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.screen.Sync()
	}

	return true
}

// Frame advances the flock unless paused, refreshes the highlight and draws.
func (a *App) Frame(ctx context.Context) error {
	if !a.paused {
		stats, err := a.flock.Step(ctx)
		if err != nil {
			return err
		}
		a.stats = stats
	}

	a.focus = a.flock.Nearest(a.cursor)
	a.near.Clear()
	if a.focus >= 0 {
		near, err := a.flock.Within(a.flock.Agents()[a.focus].Pos, a.cfg.Highlight)
		if err != nil {
			return err
		}
		a.near = near
	}

	a.draw()
	return nil
}

func (a *App) draw() {
	a.screen.Clear()

	if cx, cy, ok := a.toScreen(a.cursor); ok {
		a.screen.SetContent(cx, cy, '+', nil, cursorStyle)
	}

	agents := a.flock.Agents()
	for i, ag := range agents {
		x, y, ok := a.toScreen(ag.Pos)
		if !ok || i == a.focus {
			continue
		}

		style := agentStyle
		if a.near.Contains(uint32(i)) {
			style = nearStyle
		}
		a.screen.SetContent(x, y, arrow(ag.Heading()), nil, style)
	}

	// Focus is drawn last and wins a shared cell.
	if a.focus >= 0 {
		if x, y, ok := a.toScreen(agents[a.focus].Pos); ok {
			a.screen.SetContent(x, y, '@', nil, focusStyle)
		}
	}

	a.drawStatus()
	a.screen.Show()
}

func (a *App) drawStatus() {
	if a.height < 1 {
		return
	}

	state := ""
	if a.paused {
		state = " [paused]"
	}
	line := fmt.Sprintf(" %s n=%d fps %.0f/%.0f/%.0f pairs=%d isolated=%d dropped=%d near=%d r=%.0f%s ",
		a.flock.Space().Name(),
		a.flock.Len(),
		a.fps.Min(), a.fps.Current(), a.fps.Max(),
		a.stats.Pairs,
		a.stats.Isolated,
		a.stats.Frame.Dropped,
		a.near.GetCardinality(),
		a.cfg.Highlight,
		state,
	)

	y := a.height - 1
	x := 0
	for _, r := range line {
		if x >= a.width {
			break
		}
		a.screen.SetContent(x, y, r, nil, statusStyle)
		x++
	}
}

// rows is the number of screen rows available to the world; the last row
// holds the status line.
func (a *App) rows() int { return max(a.height-1, 1) }

func (a *App) toScreen(p geom.Vec) (int, int, bool) {
	if a.width < 1 || a.height < 2 {
		return 0, 0, false
	}
	x := int(p.X / a.cfg.World * float64(a.width))
	y := int(p.Y / a.cfg.World * float64(a.rows()))
	if x < 0 || x >= a.width || y < 0 || y >= a.rows() {
		return 0, 0, false
	}
	return x, y, true
}

func (a *App) toWorld(x, y int) geom.Vec {
	w := float64(max(a.width, 1))
	return geom.V(
		(float64(x)+0.5)/w*a.cfg.World,
		(float64(y)+0.5)/float64(a.rows())*a.cfg.World,
	)
}

// nudge moves the cursor by one screen cell.
func (a *App) nudge(dx, dy int) {
	cw := a.cfg.World / float64(max(a.width, 1))
	ch := a.cfg.World / float64(a.rows())
	a.cursor = a.cursor.Add(geom.V(float64(dx)*cw, float64(dy)*ch)).
		Clamp(geom.V(0, 0), geom.V(a.cfg.World, a.cfg.World))
}

func arrow(heading float64) rune {
	oct := int(math.Round(geom.NormalizeAngle(heading) / (math.Pi / 4)))
	return arrows[(oct+len(arrows))%len(arrows)]
}
