package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/palette"
	"github.com/san-kum/chaosfan/internal/pendulum"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

const (
	DefaultCount       = 160
	DefaultVelocity    = 0.3
	DefaultTraceLength = 100
	DefaultFPS         = 60
	DefaultScheme      = "rainbow"
	DefaultIntegrator  = "rk4"
)

var (
	ErrUnknownScheme     = errors.New("config: unknown color scheme")
	ErrUnknownIntegrator = errors.New("config: unknown integrator")
	ErrUnknownPreset     = errors.New("config: unknown preset")
)

type Config struct {
	Count       int        `yaml:"count"`
	Angles      [2]float64 `yaml:"angles"`
	Velocity    float64    `yaml:"velocity"`
	Mass        float64    `yaml:"mass"`
	Length      float64    `yaml:"length"`
	Gravity     float64    `yaml:"gravity"`
	Dt          float64    `yaml:"dt"`
	Damping     bool       `yaml:"damping"`
	TraceLength int        `yaml:"trace_length"`
	ShowArms    bool       `yaml:"show_arms"`
	ShowTrace   bool       `yaml:"show_trace"`
	ColorScheme string     `yaml:"color_scheme"`
	FPS         int        `yaml:"fps"`
	Integrator  string     `yaml:"integrator"`
}

func DefaultConfig() *Config {
	return &Config{
		Count:       DefaultCount,
		Angles:      [2]float64{90, -20},
		Velocity:    DefaultVelocity,
		Mass:        physics.DefaultMass,
		Length:      physics.DefaultLength,
		Gravity:     physics.DefaultGravity,
		Dt:          pendulum.DefaultDt,
		TraceLength: DefaultTraceLength,
		ShowArms:    true,
		ShowTrace:   true,
		ColorScheme: DefaultScheme,
		FPS:         DefaultFPS,
		Integrator:  DefaultIntegrator,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver decodes the file at path onto a copy of base, so keys missing
// from the file keep base's values. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the names that cannot be clamped.
func (c *Config) Validate() error {
	if !palette.Has(c.ColorScheme) {
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownScheme, c.ColorScheme, palette.Names())
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownIntegrator, c.Integrator, integrators.Names())
	}
	return nil
}

// Clamp pulls every numeric field into the ranges the controls allow, so
// the physics never sees a non-positive mass, length, gravity or dt.
func (c *Config) Clamp() {
	c.Count = clampInt(c.Count, 1, 1000)
	c.Angles[0] = clampFloat(c.Angles[0], -180, 180)
	c.Angles[1] = clampFloat(c.Angles[1], -180, 180)
	c.Velocity = clampFloat(c.Velocity, -10, 10)
	c.Mass = clampFloat(c.Mass, 0.1, 10)
	c.Length = clampFloat(c.Length, 10, 400)
	c.Gravity = clampFloat(c.Gravity, 0.1, 50)
	c.Dt = clampFloat(c.Dt, 0.001, 0.1)
	c.TraceLength = clampInt(c.TraceLength, 0, 1000)
	c.FPS = clampInt(c.FPS, 1, 240)
}

// Defaults converts the config into pool factory parameters.
func (c *Config) Defaults() sim.Defaults {
	return sim.Defaults{
		Settings: pendulum.Settings{
			Masses:         [2]float64{c.Mass, c.Mass},
			Lengths:        [2]float64{c.Length, c.Length},
			Gravity:        c.Gravity,
			Dt:             c.Dt,
			Damping:        c.Damping,
			MaxTraceLength: c.TraceLength,
			ShowArms:       c.ShowArms,
			ShowTrace:      c.ShowTrace,
		},
		AnglesDeg: c.Angles,
		Velocity:  c.Velocity,
	}
}

// NewPool builds the pool this config describes.
func (c *Config) NewPool() (*sim.Pool, error) {
	integ, err := integrators.New(c.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, c.Integrator)
	}
	return sim.NewPool(c.Count, c.Defaults()).WithIntegrator(integ), nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
