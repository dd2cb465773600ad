package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/skyvis/internal/logger"
	"github.com/samcharles93/skyvis/internal/scene"
)

func benchmarkCmd() *cli.Command {
	var (
		scenePath  string
		warmupRuns int64
		benchRuns  int64
	)

	flags := append([]cli.Flag{}, simulatorFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "scene",
			Aliases:     []string{"s"},
			Usage:       "path to a .json or .yaml scene",
			Required:    true,
			Destination: &scenePath,
		},
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of benchmark runs",
			Value:       5,
			Destination: &benchRuns,
		},
	)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "Time repeated timesteps of one scene",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applySimulatorConfig(cmd.IsSet, fileConfig)
			if benchRuns < 1 {
				return cli.Exit("error: --runs must be at least 1", 1)
			}

			sc, err := scene.Load(scenePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			basisStart := time.Now()
			sim, closeSim, err := newSimulator(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer closeSim()
			basisDuration := time.Since(basisStart)

			points, gaussians, shapelets := sc.Counts()
			fmt.Println("=== skyvis benchmark ===")
			fmt.Printf("Scene:      %s\n", scenePath)
			fmt.Printf("Cells:      %d (%d baselines x %d channels)\n", sc.NumCells(), len(sc.UVWs), len(sc.Freqs))
			fmt.Printf("Components: %d point, %d gaussian, %d shapelet\n", points, gaussians, shapelets)
			fmt.Printf("Backend:    %s\n", sim.Backend())
			fmt.Printf("CPUs:       %d\n", runtime.NumCPU())
			fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
			fmt.Printf("Setup:      %s\n", basisDuration.Round(time.Millisecond))
			fmt.Printf("Warmup:     %d runs\n", warmupRuns)
			fmt.Printf("Runs:       %d\n", benchRuns)
			fmt.Println()

			for i := range int(warmupRuns) {
				log.Info("warmup run", "run", i+1)
				if _, err := sim.Run(ctx, sc); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup run %d: %v", i+1, err), 1)
				}
			}

			durations := make([]time.Duration, 0, benchRuns)
			for i := range int(benchRuns) {
				log.Info("benchmark run", "run", i+1)
				res, err := sim.Run(ctx, sc)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: benchmark run %d: %v", i+1, err), 1)
				}
				durations = append(durations, res.Elapsed)
			}

			stats := summarise(durations, sc.NumCells())
			fmt.Println("=== Results ===")
			fmt.Printf("%-6s %12s %14s\n", "Run", "Duration", "Mcells/s")
			for i, d := range durations {
				fmt.Printf("%-6d %12s %14.3f\n", i+1, d.Round(time.Microsecond), cellRate(sc.NumCells(), d))
			}
			fmt.Printf("\n%-6s %12s %14.3f\n", "Avg", stats.mean.Round(time.Microsecond), stats.rate)
			fmt.Printf("%-6s %12s\n", "Min", stats.min.Round(time.Microsecond))
			fmt.Printf("%-6s %12s\n", "Max", stats.max.Round(time.Microsecond))

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			fmt.Printf("\nMemory: %.1f MB alloc, %.1f MB sys\n",
				float64(mem.Alloc)/(1024*1024),
				float64(mem.Sys)/(1024*1024))
			return nil
		},
	}
}

type benchStats struct {
	mean, min, max time.Duration
	rate           float64
}

func summarise(durations []time.Duration, cells int) benchStats {
	if len(durations) == 0 {
		return benchStats{}
	}
	s := benchStats{min: durations[0], max: durations[0]}
	var total time.Duration
	for _, d := range durations {
		total += d
		s.min = min(s.min, d)
		s.max = max(s.max, d)
	}
	s.mean = total / time.Duration(len(durations))
	s.rate = cellRate(cells, s.mean)
	return s
}

// cellRate is the throughput in millions of cells per second.
func cellRate(cells int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(cells) / d.Seconds() / 1e6
}
