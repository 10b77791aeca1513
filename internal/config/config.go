package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/keplerlab/internal/dynamo"
	"github.com/san-kum/keplerlab/internal/integrators"
	"github.com/san-kum/keplerlab/internal/kepler"
	"github.com/san-kum/keplerlab/internal/orbit"
)

const (
	DefaultSemiMajorAxis = 10.0
	DefaultEccentricity  = 0.5
	DefaultGravity       = 100.0
	DefaultDt            = 0.01
	DefaultSamples       = 256
)

type Config struct {
	Orbit  OrbitConfig  `yaml:"orbit"`
	Solver SolverConfig `yaml:"solver"`
	Run    RunConfig    `yaml:"run"`
	View   ViewConfig   `yaml:"view"`
}

// OrbitConfig is the host-facing element set. Epoch is the time since
// periapsis at the start of a run.
type OrbitConfig struct {
	orbit.Config `yaml:",inline"`
	Epoch        float64 `yaml:"epoch"`
}

type SolverConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

type RunConfig struct {
	Integrator  string  `yaml:"integrator"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	RecordEvery int     `yaml:"record_every"`
	Adaptive    bool    `yaml:"adaptive"`
	Tolerance   float64 `yaml:"tolerance"`
}

type ViewConfig struct {
	Samples int `yaml:"samples"`
	// TimeScale is simulated time per wall-clock second in the live view.
	TimeScale float64 `yaml:"time_scale"`
}

func DefaultConfig() *Config {
	return &Config{
		Orbit: OrbitConfig{Config: orbit.Config{
			SemiMajorAxis:        DefaultSemiMajorAxis,
			Eccentricity:         DefaultEccentricity,
			Gravity:              DefaultGravity,
			GravityDistanceScale: 1,
		}},
		Solver: SolverConfig{
			Tolerance:     kepler.DefaultTolerance,
			MaxIterations: kepler.DefaultMaxIterations,
		},
		Run: RunConfig{
			Integrator:  "rk4",
			Dt:          DefaultDt,
			Duration:    20.0,
			RecordEvery: 10,
			Tolerance:   1e-9,
		},
		View: ViewConfig{
			Samples:   DefaultSamples,
			TimeScale: 2,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the fields
// it changes.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads a YAML file over cfg, such as a preset.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// overlayKeys maps viper keys onto config fields. Nested keys use the YAML
// names, so KEPLERLAB_ORBIT_ECCENTRICITY sets orbit.eccentricity when the
// viper instance has a "_" key replacer.
var overlayKeys = map[string]func(*Config, *viper.Viper, string){
	"orbit.semi_major_axis":        func(c *Config, v *viper.Viper, k string) { c.Orbit.SemiMajorAxis = v.GetFloat64(k) },
	"orbit.eccentricity":           func(c *Config, v *viper.Viper, k string) { c.Orbit.Eccentricity = v.GetFloat64(k) },
	"orbit.argument_of_periapsis":  func(c *Config, v *viper.Viper, k string) { c.Orbit.ArgumentOfPeriapsis = v.GetFloat64(k) },
	"orbit.gravity":                func(c *Config, v *viper.Viper, k string) { c.Orbit.Gravity = v.GetFloat64(k) },
	"orbit.gravity_distance_scale": func(c *Config, v *viper.Viper, k string) { c.Orbit.GravityDistanceScale = v.GetFloat64(k) },
	"orbit.epoch":                  func(c *Config, v *viper.Viper, k string) { c.Orbit.Epoch = v.GetFloat64(k) },
	"solver.tolerance":             func(c *Config, v *viper.Viper, k string) { c.Solver.Tolerance = v.GetFloat64(k) },
	"solver.max_iterations":        func(c *Config, v *viper.Viper, k string) { c.Solver.MaxIterations = v.GetInt(k) },
	"run.integrator":               func(c *Config, v *viper.Viper, k string) { c.Run.Integrator = v.GetString(k) },
	"run.dt":                       func(c *Config, v *viper.Viper, k string) { c.Run.Dt = v.GetFloat64(k) },
	"run.duration":                 func(c *Config, v *viper.Viper, k string) { c.Run.Duration = v.GetFloat64(k) },
	"run.record_every":             func(c *Config, v *viper.Viper, k string) { c.Run.RecordEvery = v.GetInt(k) },
	"run.adaptive":                 func(c *Config, v *viper.Viper, k string) { c.Run.Adaptive = v.GetBool(k) },
	"run.tolerance":                func(c *Config, v *viper.Viper, k string) { c.Run.Tolerance = v.GetFloat64(k) },
	"view.samples":                 func(c *Config, v *viper.Viper, k string) { c.View.Samples = v.GetInt(k) },
	"view.time_scale":              func(c *Config, v *viper.Viper, k string) { c.View.TimeScale = v.GetFloat64(k) },
}

// OverlayKeys lists the keys Overlay understands, for binding.
func OverlayKeys() []string {
	keys := make([]string, 0, len(overlayKeys))
	for k := range overlayKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Overlay copies every key set in v (flag, environment or file) onto c.
func (c *Config) Overlay(v *viper.Viper) {
	for key, set := range overlayKeys {
		if v.IsSet(key) {
			set(c, v, key)
		}
	}
}

func (c *Config) Validate() error {
	if err := c.Elements().Validate(); err != nil {
		return fmt.Errorf("config: orbit: %w", err)
	}
	if !(c.Orbit.GravityDistanceScale > 0) {
		return fmt.Errorf("config: orbit: gravity_distance_scale must be positive, got %g", c.Orbit.GravityDistanceScale)
	}
	if !slices.Contains(integrators.Names(), c.Run.Integrator) {
		return fmt.Errorf("config: run: %w: %q", dynamo.ErrUnknownIntegrator, c.Run.Integrator)
	}
	if !(c.Run.Dt > 0) || !(c.Run.Duration > 0) {
		return fmt.Errorf("config: run: %w: dt=%g duration=%g", dynamo.ErrInvalidConfig, c.Run.Dt, c.Run.Duration)
	}
	if c.View.Samples < 2 {
		return fmt.Errorf("config: view: samples must be at least 2, got %d", c.View.Samples)
	}
	return nil
}

// Elements carries the configured solver limits along with the orbit.
func (c *Config) Elements() kepler.Elements {
	return c.PathConfig().Elements()
}

func (c *Config) PathConfig() orbit.Config {
	pc := c.Orbit.Config
	pc.Solver = c.KeplerSolver()
	return pc
}

func (c *Config) KeplerSolver() kepler.Solver {
	return kepler.Solver{Tolerance: c.Solver.Tolerance, MaxIterations: c.Solver.MaxIterations}
}

func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Run.Dt
	cfg.Duration = c.Run.Duration
	cfg.RecordEvery = c.Run.RecordEvery
	cfg.Adaptive = c.Run.Adaptive
	if c.Run.Tolerance > 0 {
		cfg.Tolerance = c.Run.Tolerance
	}
	cfg.MaxDt = c.Run.Dt * 100
	return cfg
}
