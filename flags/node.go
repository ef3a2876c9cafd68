package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// StoreFlags holds knobs of the database backing the pallet state.

func StoreFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom name of this instance, shown in logs",
		},
		cli.BoolFlag{
			Name:  "db.memory",
			Usage: "Keep the pallet state in memory only (lost on exit)",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the database cache",
			Value: 128,
		},
		cli.IntFlag{
			Name:  "handles",
			Usage: "Number of open file handles the database may use",
			Value: 256,
		},
	}
}
