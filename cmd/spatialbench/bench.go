package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"runtime"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/spatialgo"
	"github.com/hupe1980/spatialgo/codec"
	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/internal/compress"
	"github.com/hupe1980/spatialgo/internal/resource"
	"github.com/hupe1980/spatialgo/sim"
	"github.com/hupe1980/spatialgo/testutil"
	"github.com/hupe1980/spatialgo/trace"
)

// Workload modes.
const (
	ModeProfile   = "profile"
	ModeRealistic = "realistic"
)

// Backends lists every backend name accepted by -backend.
var Backends = []string{"grid", "hash", "linear", "bvh"}

// Config holds the benchmark configuration.
type Config struct {
	Backend string
	Mode    string

	N     int
	World float64

	Bins        int
	BinCapacity int
	CellSize    float64
	TableSize   int

	Radius  float64
	Frames  int
	Workers int
	FPS     float64
	Seed    uint64

	Record      string
	Replay      string
	Compression string
	Codec       string
	DropPolicy  string

	// MetricsAddr serves Prometheus metrics on /metrics while running when set.
	MetricsAddr string

	LogLevel slog.Level
}

// DefaultConfig matches the reference host: 10000 elements in a 1000×1000 world.
var DefaultConfig = Config{
	Backend:     "all",
	Mode:        ModeProfile,
	N:           10000,
	World:       1000,
	Bins:        20,
	BinCapacity: 100,
	CellSize:    50,
	TableSize:   1000,
	Radius:      50,
	Frames:      100,
	Seed:        1,
	Compression: "zstd",
	Codec:       "msgpack",
	DropPolicy:  "fail-fast",
	LogLevel:    slog.LevelWarn,
}

// Result is the outcome of one backend run.
type Result struct {
	Backend  string
	Frames   int
	Elements int
	Load     time.Duration
	Query    time.Duration
	Results  int64
	Dropped  int
	Elapsed  time.Duration
}

// PerFrame returns d averaged over the frames of r.
func (r Result) PerFrame(d time.Duration) time.Duration {
	if r.Frames == 0 {
		return 0
	}
	return d / time.Duration(r.Frames)
}

// FPS returns the achieved frame rate.
func (r Result) FPS() float64 {
	if r.Elapsed <= 0 {
		return math.Inf(1)
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

func codecNames() []string { return codec.Names() }

func (c Config) validate() error {
	switch c.Mode {
	case ModeProfile, ModeRealistic:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.N < 0 || c.Frames < 1 {
		return fmt.Errorf("n must not be negative and frames must be positive")
	}
	if !(c.World > 0) {
		return fmt.Errorf("world must be positive")
	}
	if c.Record != "" && c.Replay != "" {
		return errors.New("record and replay are mutually exclusive")
	}
	return nil
}

func (c Config) backends() ([]string, error) {
	if c.Backend == "all" {
		return Backends, nil
	}
	for _, b := range Backends {
		if b == c.Backend {
			return []string{b}, nil
		}
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}

func (c Config) world() geom.Box { return geom.NewBox(0, 0, c.World, c.World) }

// Run benchmarks every selected backend and writes a report to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	names, err := cfg.backends()
	if err != nil {
		return err
	}

	policy, err := spatialgo.ParseDropPolicy(cfg.DropPolicy)
	if err != nil {
		return err
	}

	logger := spatialgo.NewTextLogger(cfg.LogLevel)

	var replay [][]geom.Vec
	if cfg.Replay != "" {
		replay, err = readTrace(cfg.Replay)
		if err != nil {
			return err
		}
		logger.Info("trace loaded", "file", cfg.Replay, "frames", len(replay))
	}

	var prom *PrometheusCollector
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		prom = NewPrometheusCollector(reg)

		srv, err := serveMetrics(cfg.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Close(ctx); err != nil {
				logger.Warn("metrics server shutdown", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", "http://"+srv.Addr()+"/metrics")
	}

	var rec *recorder
	if cfg.Record != "" {
		rec, err = newRecorder(cfg)
		if err != nil {
			return err
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, 0, len(names))
	for i, name := range names {
		ctrl := resource.NewController(resource.Config{
			FrameRate:  cfg.FPS,
			MaxWorkers: int64(workers),
		})

		opts := []spatialgo.Option{
			spatialgo.WithLogger(logger),
			spatialgo.WithDropPolicy(policy),
			spatialgo.WithWorkers(workers),
			spatialgo.WithController(ctrl),
		}
		if prom != nil {
			opts = append(opts, spatialgo.WithMetricsCollector(prom.For(name)))
		}

		sp, err := newSpace(cfg, name, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		var r *recorder
		if i == 0 {
			r = rec
		}

		res, err := runBackend(ctx, cfg, sp, ctrl, replay, r)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, res)
	}

	if rec != nil {
		if err := rec.Close(); err != nil {
			return err
		}
		logger.Info("trace recorded", "file", cfg.Record, "frames", rec.w.Frames(), "bytes", rec.w.BytesWritten())
	}

	return report(out, cfg, results)
}

func newSpace(cfg Config, name string, opts ...spatialgo.Option) (*spatialgo.Space[int], error) {
	switch name {
	case "grid":
		return spatialgo.Grid[int](cfg.World, cfg.World).
			Resolution(cfg.Bins).
			BinCapacity(cfg.BinCapacity).
			QueryRadius(cfg.Radius).
			Options(opts...).
			Build()
	case "hash":
		return spatialgo.Hash[int](cfg.CellSize).
			TableSize(cfg.TableSize).
			QueryRadius(cfg.Radius).
			Options(opts...).
			Build()
	case "linear":
		return spatialgo.Linear[int]().Options(opts...).Build()
	case "bvh":
		return spatialgo.BVH[int]().Options(opts...).Build()
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runBackend(ctx context.Context, cfg Config, sp *spatialgo.Space[int], ctrl *resource.Controller, replay [][]geom.Vec, rec *recorder) (Result, error) {
	res := Result{Backend: sp.Name()}
	start := time.Now()

	var (
		flock  *sim.Flock
		points []geom.Vec
		elems  []index.Element[int]
		err    error
	)

	switch {
	case replay != nil:
	case cfg.Mode == ModeRealistic:
		flock, err = sim.NewFlock(sp, cfg.N, cfg.Seed, func(p *sim.Params) {
			p.World = cfg.world()
			p.Radius = cfg.Radius
			p.SeparationRadius = math.Min(p.SeparationRadius, cfg.Radius)
		})
		if err != nil {
			return res, err
		}
	default:
		points = testutil.NewRNG(int64(cfg.Seed)).Points(cfg.N, cfg.world())
	}

	buf := index.NewResults(0)

	for frame := 0; frame < cfg.Frames; frame++ {
		if err := ctrl.WaitFrame(ctx); err != nil {
			return res, err
		}

		if replay != nil {
			points = replay[frame%len(replay)]
		}

		if flock != nil {
			t0 := time.Now()
			stats, err := flock.Step(ctx)
			if err != nil {
				return res, err
			}
			res.Load += stats.Frame.Elapsed
			res.Query += time.Since(t0) - stats.Frame.Elapsed
			res.Results += stats.Pairs
			res.Dropped += stats.Frame.Dropped
			res.Elements = flock.Len()

			if rec != nil {
				if err := rec.Write(uint64(frame), agentPositions(flock)); err != nil {
					return res, err
				}
			}
			res.Frames++
			continue
		}

		elems = toElements(elems, points)
		stats, err := sp.Load(ctx, elems)
		if err != nil {
			return res, err
		}
		res.Load += stats.Elapsed
		res.Dropped += stats.Dropped
		res.Elements = len(points)

		t0 := time.Now()
		if cfg.Mode == ModeRealistic {
			var found atomic.Int64
			err = sp.ForEachNeighbor(ctx, cfg.Radius, func(nb *spatialgo.Neighborhood[int]) error {
				found.Add(int64(nb.Len()))
				return nil
			})
			if err != nil {
				return res, err
			}
			res.Results += found.Load()
		} else {
			if err := sp.Near(buf, cursor(cfg, frame), cfg.Radius); err != nil {
				return res, err
			}
			res.Results += int64(buf.Len())
		}
		res.Query += time.Since(t0)

		if rec != nil {
			if err := rec.Write(uint64(frame), points); err != nil {
				return res, err
			}
		}
		res.Frames++
	}

	res.Elapsed = time.Since(start)

	return res, nil
}

// cursor moves the profile query point along a Lissajous curve inside the world.
func cursor(cfg Config, frame int) geom.Vec {
	w := cfg.world()
	c := w.Center()
	amp := w.Width/2 - cfg.Radius
	t := float64(frame)
	return c.Add(geom.V(amp*math.Sin(t*0.07), amp*math.Cos(t*0.05)))
}

func toElements(dst []index.Element[int], pts []geom.Vec) []index.Element[int] {
	dst = dst[:0]
	for i, p := range pts {
		dst = append(dst, index.Element[int]{Pos: p, Data: i})
	}
	return dst
}

func agentPositions(f *sim.Flock) []geom.Vec {
	agents := f.Agents()
	pts := make([]geom.Vec, len(agents))
	for i, a := range agents {
		pts[i] = a.Pos
	}
	return pts
}

func report(out io.Writer, cfg Config, results []Result) error {
	fmt.Fprintf(out, "mode=%s n=%d world=%g radius=%g frames=%d\n\n", cfg.Mode, cfg.N, cfg.World, cfg.Radius, cfg.Frames)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tELEMENTS\tLOAD/FRAME\tQUERY/FRAME\tRESULTS/FRAME\tDROPPED\tFPS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\t%d\t%d\t%.1f\n",
			r.Backend,
			r.Elements,
			r.PerFrame(r.Load),
			r.PerFrame(r.Query),
			r.Results/int64(max(r.Frames, 1)),
			r.Dropped,
			r.FPS(),
		)
	}
	return tw.Flush()
}

type recorder struct {
	f *os.File
	w *trace.Writer
}

func newRecorder(cfg Config) (*recorder, error) {
	c, ok := codec.ByName(cfg.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", trace.ErrUnknownCodec, cfg.Codec)
	}
	ct, err := compress.ParseType(cfg.Compression)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(cfg.Record)
	if err != nil {
		return nil, err
	}

	w, err := trace.NewWriter(f, trace.WithCodec(c), trace.WithCompression(ct))
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &recorder{f: f, w: w}, nil
}

func (r *recorder) Write(seq uint64, pts []geom.Vec) error {
	return r.w.WriteFrame(trace.Frame{Seq: seq, Points: pts})
}

func (r *recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		_ = r.f.Close()
		return err
	}
	return r.f.Close()
}

func readTrace(path string) ([][]geom.Vec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := trace.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var frames [][]geom.Vec
	for fr, err := range r.All() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		frames = append(frames, fr.Points)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%s: trace has no frames", path)
	}

	return frames, nil
}
