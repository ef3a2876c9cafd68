package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// GluttonFlags covers slot simulation and cost model selection.

func GluttonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network rules that size the idle slots (main|test|fake)",
			Value: "fake",
		},
		cli.StringFlag{
			Name:  "weights",
			Usage: "YAML calibration file (defaults to the reference calibration)",
		},
		cli.Uint64Flag{
			Name:  "slots",
			Usage: "Number of idle slots to run",
			Value: 10,
		},
		cli.DurationFlag{
			Name:  "slot.interval",
			Usage: "Pause between two idle slots (0 runs them back to back)",
		},
		cli.StringFlag{
			Name:  "profile",
			Usage: "Load profile applied before the first slot",
		},
	}
}

// AllFlags returns every flag the launcher understands.
func AllFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, CommonFlags()...)
	all = append(all, StoreFlags()...)
	all = append(all, GluttonFlags()...)
	return all
}

