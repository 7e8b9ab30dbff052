// Command spatialbench drives the spatial index backends through per-frame
// workloads and reports timings.
//
// Profile mode mirrors an interactive host: every frame reloads all points
// and issues a single query around a moving cursor. Realistic mode runs the
// flocking simulation, which queries the neighborhood of every element.
//
//	spatialbench -backend all -n 10000 -frames 200
//	spatialbench -mode realistic -backend hash -cell 25 -radius 25 -workers 8
//	spatialbench -record run.sptr -compression zstd
//	spatialbench -replay run.sptr -backend grid
//	spatialbench -fps 60 -frames 6000 -metrics-addr :2112
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
)

const envLogLevel = "SPATIALGO_LOG_LEVEL"

func main() {
	cfg := DefaultConfig

	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "backend: grid, hash, linear, bvh or all")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "workload: profile or realistic")
	flag.IntVar(&cfg.N, "n", cfg.N, "number of elements")
	flag.Float64Var(&cfg.World, "world", cfg.World, "side length of the square world")
	flag.IntVar(&cfg.Bins, "bins", cfg.Bins, "grid: bins per axis")
	flag.IntVar(&cfg.BinCapacity, "bin-cap", cfg.BinCapacity, "grid: elements per bin")
	flag.Float64Var(&cfg.CellSize, "cell", cfg.CellSize, "hash: cell size")
	flag.IntVar(&cfg.TableSize, "table", cfg.TableSize, "hash: number of buckets")
	flag.Float64Var(&cfg.Radius, "radius", cfg.Radius, "query radius")
	flag.IntVar(&cfg.Frames, "frames", cfg.Frames, "number of frames per backend")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "query workers in realistic mode (0 = GOMAXPROCS)")
	flag.Float64Var(&cfg.FPS, "fps", cfg.FPS, "frame rate cap (0 = unpaced)")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	flag.StringVar(&cfg.Record, "record", cfg.Record, "record the frames of the first backend to this trace file")
	flag.StringVar(&cfg.Replay, "replay", cfg.Replay, "replay frames from this trace file instead of generating them")
	flag.StringVar(&cfg.Compression, "compression", cfg.Compression, "trace compression: none, lz4 or zstd")
	flag.StringVar(&cfg.Codec, "codec", cfg.Codec, "trace codec: "+strings.Join(codecNames(), ", "))
	flag.StringVar(&cfg.DropPolicy, "drop", cfg.DropPolicy, "load policy: fail-fast or drop-and-count")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address while running")
	logLevel := flag.String("log-level", envOr(envLogLevel, "warn"), "log level: debug, info, warn or error (env "+envLogLevel+")")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	cfg.LogLevel = level

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "spatialbench: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
