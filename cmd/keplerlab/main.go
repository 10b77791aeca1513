package main

import (
	"fmt"
	"os"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/keplerlab/internal/config"
)

const envPrefix = "KEPLERLAB"

var (
	dataDir    string
	configFile string
	preset     string
	quiet      bool

	v      = viper.New()
	logger kitlog.Logger
)

// orbitFlags bind to config keys, so a changed flag beats the environment,
// which beats the config file, which beats the preset.
var orbitFlags = []struct {
	name, key, usage string
}{
	{"a", "orbit.semi_major_axis", "semi-major axis (periapsis distance q for parabolas)"},
	{"e", "orbit.eccentricity", "eccentricity"},
	{"omega", "orbit.argument_of_periapsis", "argument of periapsis, radians"},
	{"gravity", "orbit.gravity", "gravitational parameter before distance scaling"},
	{"scale", "orbit.gravity_distance_scale", "distance scale applied to gravity"},
	{"epoch", "orbit.epoch", "time since periapsis at the start of a run"},
	{"integrator", "run.integrator", "integrator name"},
	{"dt", "run.dt", "timestep"},
	{"time", "run.duration", "duration"},
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "keplerlab",
		Short:         "two-body orbit lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(quiet)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".keplerlab", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress log output")
	for _, f := range orbitFlags {
		switch f.key {
		case "run.integrator":
			pf.String(f.name, "", f.usage)
		default:
			pf.Float64(f.name, 0, f.usage)
		}
		if err := v.BindPFlag(f.key, pf.Lookup(f.name)); err != nil {
			panic(err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range config.OverlayKeys() {
		if err := v.BindEnv(key); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		classifyCmd(),
		geometryCmd(),
		anomalyCmd(),
		stateCmd(),
		ephemerisCmd(),
		runCmd(),
		compareCmd(),
		tuneCmd(),
		listCmd(),
		plotCmd(),
		exportCSVCmd(),
		exportJSONCmd(),
		svgCmd(),
		liveCmd(),
		presetsCmd(),
		configCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(quiet bool) kitlog.Logger {
	if quiet {
		return kitlog.NewNopLogger()
	}
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	return kitlog.With(l, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)
}

// loadConfig resolves the effective configuration: preset, then file, then
// environment and flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.Overlay(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
