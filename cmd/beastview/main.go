// Command beastview runs a demo and draws the arena in the terminal.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/demos"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	demo := flag.String("demo", "braitenberg", "Demo to run: "+strings.Join(demos.Names(), ", "))
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	speed := flag.Int("speed", 1, "Time steps per frame")
	fps := flag.Int("fps", 30, "Frames per second")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// The screen owns stdout; stage logs would tear the display.
	slog.SetDefault(slog.New(slog.DiscardHandler))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	setup, err := demos.Build(*demo, cfg, rand.New(rand.NewSource(*seed)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build demo: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	v := NewViewer(screen, setup.Sim, *speed)
	err = v.Run(time.Second / time.Duration(max(*fps, 1)))
	screen.Fini()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Simulation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(setup.Sim.Status())
}
