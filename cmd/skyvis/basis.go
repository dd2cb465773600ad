package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/skyvis/internal/logger"
	"github.com/samcharles93/skyvis/internal/shapelet"
)

func basisCmd() *cli.Command {
	var (
		outPath string
		orders  int
		samples int
		step    float64
	)

	return &cli.Command{
		Name:  "basis",
		Usage: "Generate a shapelet basis table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .safetensors path",
				Required:    true,
				Destination: &outPath,
			},
			&cli.IntFlag{
				Name:        "orders",
				Usage:       "number of basis orders",
				Value:       shapelet.DefaultSpec.Orders,
				Destination: &orders,
			},
			&cli.IntFlag{
				Name:        "samples",
				Usage:       "samples per order (odd keeps x = 0 on a sample)",
				Value:       shapelet.DefaultSpec.Samples,
				Destination: &samples,
			},
			&cli.Float64Flag{
				Name:        "step",
				Usage:       "sample spacing in x",
				Value:       shapelet.DefaultSpec.Step,
				Destination: &step,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			spec := basisSpec(orders, samples, step)
			t, err := shapelet.Generate(spec)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: generate basis: %v", err), 1)
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := shapelet.Save(outPath, t); err != nil {
				return cli.Exit(fmt.Sprintf("error: save basis: %v", err), 1)
			}
			log.Info("wrote basis table", "path", outPath, "table", t.String())
			return nil
		},
	}
}

// basisSpec centres the sample grid on x = 0.
func basisSpec(orders, samples int, step float64) shapelet.Spec {
	return shapelet.Spec{
		Orders:  orders,
		Samples: samples,
		Centre:  float64(samples-1) / 2,
		Step:    step,
	}
}
