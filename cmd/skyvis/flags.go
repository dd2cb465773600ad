package main

import "github.com/urfave/cli/v3"

var (
	backendName   string
	workers       int
	basisPath     string
	interpolation string
	fitLists      bool
	logLevel      string
	logFormat     string
	debug         bool
)

func executorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "execution backend (auto, cpu, serial, cuda)",
			Value:       "auto",
			Destination: &backendName,
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "dedicated CPU workers (0 shares the default pool)",
			Destination: &workers,
		},
	}
}

func basisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "basis",
			Usage:       "path to a shapelet basis .safetensors table (default: generated)",
			Destination: &basisPath,
		},
		&cli.StringFlag{
			Name:        "interpolation",
			Usage:       "basis lookup rule (linear, nearest)",
			Value:       "linear",
			Destination: &interpolation,
		},
	}
}

func simulatorFlags() []cli.Flag {
	flags := append(executorFlags(), basisFlags()...)
	return append(flags, &cli.BoolFlag{
		Name:        "fit-lists",
		Usage:       "replace list flux densities with fitted power laws",
		Destination: &fitLists,
	})
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
