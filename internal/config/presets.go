package config

import (
	"fmt"
	"sort"
)

// Presets only override what differs from DefaultConfig.
var Presets = map[string]func(*Config){
	"classic": func(c *Config) {},
	"gentle": func(c *Config) {
		c.Angles = [2]float64{20, -10}
		c.Velocity = 0
		c.TraceLength = 200
	},
	"inverted": func(c *Config) {
		c.Angles = [2]float64{179, 179}
		c.Velocity = 0
		c.Count = 240
	},
	"damped": func(c *Config) {
		c.Damping = true
		c.Velocity = 1.0
	},
	"golden": func(c *Config) {
		c.Count = 1
		c.Angles = [2]float64{90, -20}
		c.Velocity = 0
		c.Mass = 1
		c.Length = 200
		c.Gravity = 9.81
		c.Dt = 0.02
		c.Damping = false
	},
}

func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
