// Command boids renders the flocking simulation in a terminal.
//
// Every frame reloads the flock into the selected backend and queries the
// neighborhood of every agent. The agents around the cursor are highlighted
// with a separate radius query. Move the cursor with the mouse or the arrow
// keys, press space to pause, +/- to change the highlight radius and q or
// Esc to quit.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
)

func main() {
	cfg := DefaultConfig

	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "backend: grid, hash, linear or bvh")
	flag.IntVar(&cfg.N, "n", cfg.N, "number of agents")
	flag.Float64Var(&cfg.FPS, "fps", cfg.FPS, "frame rate cap")
	flag.Float64Var(&cfg.Radius, "radius", cfg.Radius, "perception radius")
	flag.Float64Var(&cfg.Highlight, "highlight", cfg.Highlight, "highlight radius around the cursor")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "query workers (0 = GOMAXPROCS)")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	app, err := NewApp(screen, cfg)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "boids: %v\n", err)
		os.Exit(1)
	}

	err = app.Run()
	screen.Fini()

	if err != nil {
		fmt.Fprintf(os.Stderr, "boids: %v\n", err)
		os.Exit(1)
	}
}
