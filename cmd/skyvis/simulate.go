package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/skyvis/internal/logger"
	"github.com/samcharles93/skyvis/internal/scene"
	"github.com/samcharles93/skyvis/internal/visplot"
)

func simulateCmd() *cli.Command {
	var (
		scenePath string
		outPath   string
		asJSON    bool
		withVis   bool
		plotPath  string
		channel   int
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
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "write visibilities to a .safetensors file",
			Destination: &outPath,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the result as JSON",
			Destination: &asJSON,
		},
		&cli.BoolFlag{
			Name:        "vis",
			Usage:       "include every cell in the JSON output",
			Destination: &withVis,
		},
		&cli.StringFlag{
			Name:        "plot",
			Usage:       "write an amplitude vs uv-distance PNG",
			Destination: &plotPath,
		},
		&cli.IntFlag{
			Name:        "channel",
			Usage:       "channel index to plot",
			Destination: &channel,
		},
	)

	return &cli.Command{
		Name:  "simulate",
		Usage: "Model the visibilities of one timestep",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applySimulatorConfig(cmd.IsSet, fileConfig)

			sc, err := scene.Load(scenePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			sim, closeSim, err := newSimulator(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer closeSim()

			points, gaussians, shapelets := sc.Counts()
			log.Info("simulating scene",
				"scene", sc.Name,
				"baselines", len(sc.UVWs),
				"freqs", len(sc.Freqs),
				"points", points,
				"gaussians", gaussians,
				"shapelets", shapelets,
			)
			res, err := sim.Run(ctx, sc)
			if err != nil {
				if res != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), res.Status)
				}
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if outPath != "" {
				if err := res.WriteSafetensors(outPath); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				log.Info("wrote visibilities", "path", outPath)
			}
			if plotPath != "" {
				if err := visplot.SavePNG(plotPath, res, channel, 800, 600); err != nil {
					return cli.Exit(fmt.Sprintf("error: plot: %v", err), 1)
				}
				log.Info("wrote plot", "path", plotPath, "channel", channel)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Record(withVis))
			}
			fmt.Printf("scene:      %s\n", sc.Name)
			fmt.Printf("backend:    %s\n", res.Backend)
			fmt.Printf("cells:      %d (%d baselines x %d channels)\n", len(res.Vis), len(res.UVWs), len(res.Freqs))
			fmt.Printf("components: %d point, %d gaussian, %d shapelet\n", points, gaussians, shapelets)
			fmt.Printf("peak |XX|:  %.6g Jy\n", res.PeakAmplitude())
			fmt.Printf("elapsed:    %s\n", res.Elapsed.Round(time.Microsecond))
			return nil
		},
	}
}
