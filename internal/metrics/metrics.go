// Package metrics observes a pool once per tick and reduces what it sees to
// a single number.
package metrics

import "github.com/san-kum/chaosfan/internal/sim"

type Metric interface {
	Name() string
	Observe(p *sim.Pool)
	Value() float64
	Reset()
}

// Defaults is the metric set used by headless runs.
func Defaults() []Metric {
	return []Metric{NewEnergyDrift(), NewSpread(0), NewStability()}
}

// Collect returns every metric's current value keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
