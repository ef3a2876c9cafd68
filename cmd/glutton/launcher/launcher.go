package launcher

import (
	"sort"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-glutton/flags"
)

var (
	// Git SHA1 commit hash of the release (set via linker flags).
	gitCommit = ""

	app = flags.NewApp(gitCommit, "idle-slot weight governor")
)

func init() {
	app.Flags = flags.AllFlags()
	app.Action = runSlots
	app.Commands = []cli.Command{
		runCommand,
		setComputeCommand,
		setStorageCommand,
		initializeCommand,
		profileCommand,
		statusCommand,
		dumpWeightsCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}
