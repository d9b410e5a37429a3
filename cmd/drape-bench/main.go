package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/scene"
	"github.com/lixenwraith/drape/terrain"
	"github.com/lixenwraith/drape/vmath"
)

var (
	duration   = flag.Duration("duration", 10*time.Second, "Benchmark duration")
	lanterns   = flag.Int("lanterns", 64, "Number of lanterns")
	tapestries = flag.Int("tapestries", 4, "Number of tapestries")
	sweep      = flag.Bool("sweep", true, "Sweep the viewer through the hall to brush tapestries")
)

const hallHeight = 40

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	width := max(*lanterns, *tapestries*4) + 4
	g := terrain.NewGrid(width, hallHeight)
	g.FillRect(0, 0, width-1, 1, true)
	g.FillRect(0, hallHeight-2, width-1, hallHeight-1, true)

	cfg := config.Default()
	cfg.Simulation.ActiveRange = float64(width) * physics.TileSize
	s := scene.New(cfg, g)
	defer s.Clear()

	for i := range *lanterns {
		anchor := terrain.TileOrigin(i+2, 1).Add(vmath.V2(physics.TileSize/2, physics.TileSize-1))
		if _, err := s.AddLantern(anchor, 120+float64(i%5)*30, 1); err != nil {
			fmt.Fprintf(os.Stderr, "lantern %d: %v\n", i, err)
			os.Exit(1)
		}
	}
	for i := range *tapestries {
		if _, err := s.AddTapestry(2+i*4, 1); err != nil {
			fmt.Fprintf(os.Stderr, "tapestry %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	settleStart := time.Now()
	if err := <-s.Enter(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "settle: %v\n", err)
		os.Exit(1)
	}
	settleTime := time.Since(settleStart)

	var ticks int64
	var tickTotal time.Duration
	hall := float64(width) * physics.TileSize
	y := float64(hallHeight) * physics.TileSize / 3
	start := time.Now()

	for time.Since(start) < *duration && ctx.Err() == nil {
		if *sweep {
			x := hall * vmath.Tent01(float64(ticks%600)/600)
			prev := s.Viewer()
			pos := vmath.V2(x, y)
			s.SetViewer(pos, pos.Sub(prev))
		}

		t0 := time.Now()
		s.Tick()
		tickTotal += time.Since(t0)
		ticks++
	}

	elapsed := time.Since(start)
	if ticks == 0 {
		ticks = 1
	}

	fmt.Printf("Benchmark Results:\n")
	fmt.Printf("  Lanterns:     %d (%d ropes live)\n", *lanterns, s.Ropes().Len())
	fmt.Printf("  Tapestries:   %d\n", *tapestries)
	fmt.Printf("  Settle Time:  %v\n", settleTime)
	fmt.Printf("  Total Ticks:  %d\n", ticks)
	fmt.Printf("  Total Time:   %v\n", elapsed)
	fmt.Printf("  Ticks/sec:    %.2f\n", float64(ticks)/elapsed.Seconds())
	fmt.Printf("  Avg Tick:     %v\n", tickTotal/time.Duration(ticks))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("  Total Alloc:  %d bytes\n", m.TotalAlloc)
	fmt.Printf("  Mallocs:      %d\n", m.Mallocs)
}
