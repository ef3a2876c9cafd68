package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before config files and flags override them.

type Defaults struct {
	Node    NodeDefaults
	Storage StorageDefaults
	Logging LoggingDefaults
	Metrics MetricsDefaults
	Glutton GluttonDefaults
}

// NodeDefaults captures top-level instance settings.
type NodeDefaults struct {
	DataDir string //	Filesystem root where the pallet database lives. Changing it lets you keep several independent configurations side by side.
	Name    string //	Human-readable instance name attached to every log line; helps telling runs apart in aggregated logs.
}

// StorageDefaults configures the database.
type StorageDefaults struct {
	InMemory    bool   //	Keep state in memory only. Handy for one-off experiments, nothing survives the process.
	Dir         string //	Directory below DataDir holding the LevelDB files.
	CacheSizeMB int    //	Memory (in megabytes) reserved for the LevelDB block cache and write buffer.
	Handles     int    //	Number of file handles LevelDB may keep open.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	logrus level (0=panic, 1=fatal, 2=error, 3=warn, 4=info, 5=debug, 6=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs (helpful on terminals, best disabled when piping to files).
	SentryDSN string //	When set, error level entries are also reported to Sentry.
}

type MetricsDefaults struct {
	Enabled bool //	Collect governor metrics and print a snapshot at the end of a run.
}

// GluttonDefaults sizes the simulated slots and selects the cost model.
type GluttonDefaults struct {
	Network     string //	Rules preset (main, test, fake) whose slot size and idle share define the budget of each slot.
	WeightsFile string //	Optional YAML calibration; the reference calibration priced for the network's database is used otherwise.
	Slots       uint64 //	How many idle slots a run executes.
	Profile     string //	Load profile applied before the first slot, empty keeps the stored limits.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.glutton",
			Name:    "glutton",
		},
		Storage: StorageDefaults{
			InMemory:    false,
			Dir:         "gluttondata",
			CacheSizeMB: 128,
			Handles:     256,
		},
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     true,
		},
		Metrics: MetricsDefaults{
			Enabled: false,
		},
		Glutton: GluttonDefaults{
			Network: "fake",
			Slots:   10,
		},
	}
}
