package launcher

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-glutton/flags"
)

// helper to run MakeAllConfigs with a synthetic CLI context.

func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.AllFlags()

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}

	if err := app.Run(append([]string{"glutton"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return got, cfgErr
}

// TestMakeAllConfigs_flagOverrides verifies that every command-line flag
// overrides the corresponding field in the aggregated Config struct.
func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	dir, err := ioutil.TempDir("", "glutton-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	tests := []struct {
		name string                         // descriptive name for the scenario
		args []string                       // CLI arguments to feed into MakeAllConfigs
		want func(t *testing.T, cfg Config) // assertion helper examining the final config
	}{
		{
			name: "defaults",
			args: []string{"--datadir", dir},
			want: func(t *testing.T, cfg Config) {
				d := DefaultConfig()
				require.Equal(t, d.Node.Name, cfg.Node.Name)
				require.Equal(t, d.Logging.Verbosity, cfg.Logging.Verbosity)
				require.Equal(t, d.Glutton.Network, cfg.Glutton.Network)
				require.Equal(t, d.Glutton.Slots, cfg.Glutton.Slots)
				require.False(t, cfg.Store.InMemory)
				require.Equal(t, filepath.Join(dir, d.Storage.Dir), cfg.StorePath())
			},
		},
		{
			name: "datadir and identity",
			args: []string{"--datadir", filepath.Join(dir, "node-data"), "--identity", "ugo-node"},
			want: func(t *testing.T, cfg Config) {
				if cfg.Node.DataDir != filepath.Join(dir, "node-data") {
					t.Fatalf("Datadir = %q, want %q", cfg.Node.DataDir, filepath.Join(dir, "node-data"))
				}
				if cfg.Node.Name != "ugo-node" {
					t.Fatalf("Identity = %q, want ugo-node", cfg.Node.Name)
				}
				if _, err := os.Stat(cfg.Node.DataDir); err != nil {
					t.Fatalf("datadir not created: %v", err)
				}
			},
		},
		{
			name: "logging",
			args: []string{"--datadir", dir, "--log.format", "json", "--log.verbosity", "6", "--log.color", "--sentry.dsn", "https://key@sentry.example/1"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, LoggingConfig{Verbosity: 6, Format: "json", Color: true, SentryDSN: "https://key@sentry.example/1"}, cfg.Logging)
			},
		},
		{
			name: "store",
			args: []string{"--db.memory", "--cache", "64", "--handles", "32"},
			want: func(t *testing.T, cfg Config) {
				require.True(t, cfg.Store.InMemory)
				require.Equal(t, 64, cfg.Store.CacheMB)
				require.Equal(t, 32, cfg.Store.Handles)
			},
		},
		{
			name: "glutton",
			args: []string{"--datadir", dir, "--network", "main", "--slots", "42", "--slot.interval", "250ms", "--profile", "half", "--weights", filepath.Join(dir, "w.yaml"), "--metrics"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, GluttonConfig{
					Network:      "main",
					WeightsFile:  filepath.Join(dir, "w.yaml"),
					Slots:        42,
					SlotInterval: 250 * time.Millisecond,
					Profile:      "half",
				}, cfg.Glutton)
				require.True(t, cfg.Metrics.Enabled)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, test.args)
			require.NoError(t, err)
			test.want(t, cfg)
			t.Logf("args = %#v", test.args) //	NOTE: this will only be printed if the test fails
		})
	}
}

// TestMakeAllConfigs_configFile verifies the file is applied on top of the
// defaults and below the flags.
func TestMakeAllConfigs_configFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "glutton-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "glutton.yaml")
	yml := `node:
  datadir: ` + dir + `
  name: from-file
store:
  inMemory: true
glutton:
  network: test
  slots: 3
  slotInterval: 2s
`
	require.NoError(t, ioutil.WriteFile(file, []byte(yml), 0o600))

	cfg, err := runConfigFromArgs(t, []string{"--config", file, "--slots", "5"})
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Node.DataDir)
	require.Equal(t, "from-file", cfg.Node.Name)
	require.True(t, cfg.Store.InMemory)
	require.Equal(t, "test", cfg.Glutton.Network)
	require.Equal(t, uint64(5), cfg.Glutton.Slots, "flags win over the file")
	require.Equal(t, 2*time.Second, cfg.Glutton.SlotInterval)
	require.Equal(t, DefaultConfig().Storage.CacheSizeMB, cfg.Store.CacheMB, "keys missing from the file keep their defaults")
}

func TestMakeAllConfigs_badConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "glutton-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = runConfigFromArgs(t, []string{"--config", filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, ioutil.WriteFile(broken, []byte("glutton: [\n"), 0o600))
	_, err = runConfigFromArgs(t, []string{"--config", broken})
	require.Error(t, err)
}
