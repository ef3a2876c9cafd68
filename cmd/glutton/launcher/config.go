// This file maps the CLI context and the optional config file to the
// launcher Config.

package launcher

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node    NodeConfig    `yaml:"node"`
	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
	Glutton GluttonConfig `yaml:"glutton"`
}

type NodeConfig struct {
	DataDir string `yaml:"datadir"`
	Name    string `yaml:"name"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
	SentryDSN string `yaml:"sentryDSN"`
}

type StoreConfig struct {
	InMemory bool   `yaml:"inMemory"`
	Path     string `yaml:"path"`
	CacheMB  int    `yaml:"cacheMB"`
	Handles  int    `yaml:"handles"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type GluttonConfig struct {
	Network      string        `yaml:"network"`
	WeightsFile  string        `yaml:"weights"`
	Slots        uint64        `yaml:"slots"`
	SlotInterval time.Duration `yaml:"slotInterval"`
	Profile      string        `yaml:"profile"`
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(d.Node.DataDir),
			Name:    d.Node.Name,
		},
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
			SentryDSN: d.Logging.SentryDSN,
		},
		Store: StoreConfig{
			InMemory: d.Storage.InMemory,
			Path:     d.Storage.Dir,
			CacheMB:  d.Storage.CacheSizeMB,
			Handles:  d.Storage.Handles,
		},
		Metrics: MetricsConfig{
			Enabled: d.Metrics.Enabled,
		},
		Glutton: GluttonConfig{
			Network:     d.Glutton.Network,
			WeightsFile: d.Glutton.WeightsFile,
			Slots:       d.Glutton.Slots,
			Profile:     d.Glutton.Profile,
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file, and CLI
// overrides into a single config struct.

func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if metrics.Enabled {
		cfg.Metrics.Enabled = true
	}
	if !cfg.Store.InMemory {
		if err := ensureDir(cfg.Node.DataDir); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// StorePath is the directory of the on-disk database.
func (c Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Node.DataDir, c.Store.Path)
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

// loadConfigFile decodes path on top of cfg, so keys missing from the file
// keep their defaults.
func loadConfigFile(path string, cfg *Config) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return err
	}
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("identity") {
		cfg.Node.Name = ctx.String("identity")
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.String("sentry.dsn")
	}
	if ctx.IsSet("metrics") {
		cfg.Metrics.Enabled = ctx.Bool("metrics")
	}

	if ctx.IsSet("db.memory") {
		cfg.Store.InMemory = ctx.Bool("db.memory")
	}
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
	if ctx.IsSet("handles") {
		cfg.Store.Handles = ctx.Int("handles")
	}

	if ctx.IsSet("network") {
		cfg.Glutton.Network = ctx.String("network")
	}
	if ctx.IsSet("weights") {
		cfg.Glutton.WeightsFile = resolvePath(ctx.String("weights"))
	}
	if ctx.IsSet("slots") {
		cfg.Glutton.Slots = ctx.Uint64("slots")
	}
	if ctx.IsSet("slot.interval") {
		cfg.Glutton.SlotInterval = ctx.Duration("slot.interval")
	}
	if ctx.IsSet("profile") {
		cfg.Glutton.Profile = ctx.String("profile")
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
