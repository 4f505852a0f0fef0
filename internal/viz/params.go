package viz

import "github.com/san-kum/chaosfan/internal/sim"

// param is one tunable slider of the side panel. Every change is a
// broadcast to the whole pool.
type param struct {
	name     string
	lo, hi   float64
	step     float64
	format   string
	get      func(d sim.Defaults) float64
	override func(v float64) sim.Options
}

var params = []param{
	{
		name: "gravity", lo: 0.1, hi: 50, step: 0.5, format: "%.2f",
		get:      func(d sim.Defaults) float64 { return d.Gravity },
		override: func(v float64) sim.Options { return sim.Options{Gravity: sim.Float(v)} },
	},
	{
		name: "length", lo: 10, hi: 400, step: 10, format: "%.0f",
		get:      func(d sim.Defaults) float64 { return d.Lengths[0] },
		override: func(v float64) sim.Options { return sim.Options{Length: sim.Float(v)} },
	},
	{
		name: "mass", lo: 0.1, hi: 10, step: 0.1, format: "%.1f",
		get:      func(d sim.Defaults) float64 { return d.Masses[0] },
		override: func(v float64) sim.Options { return sim.Options{Mass: sim.Float(v)} },
	},
	{
		name: "dt", lo: 0.001, hi: 0.1, step: 0.001, format: "%.3f",
		get:      func(d sim.Defaults) float64 { return d.Dt },
		override: func(v float64) sim.Options { return sim.Options{Dt: sim.Float(v)} },
	},
	{
		name: "velocity", lo: -10, hi: 10, step: 0.1, format: "%.2f",
		get:      func(d sim.Defaults) float64 { return d.Velocity },
		override: func(v float64) sim.Options { return sim.Options{Velocity: sim.Float(v)} },
	},
	{
		name: "trace", lo: 0, hi: 1000, step: 10, format: "%.0f",
		get:      func(d sim.Defaults) float64 { return float64(d.MaxTraceLength) },
		override: func(v float64) sim.Options { return sim.Options{TraceCap: sim.Int(int(v))} },
	},
}

// nudge moves p by dir steps from its current value and clamps.
func (p param) nudge(d sim.Defaults, dir float64) sim.Options {
	v := p.get(d) + dir*p.step
	v = max(p.lo, min(p.hi, v))
	return p.override(v)
}
