package sim

import (
	"context"

	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/pendulum"
	"github.com/san-kum/chaosfan/internal/physics"
)

// AngleOffset is the per-index phase offset, in radians, added to θ1 and
// subtracted from θ2 of entry i (i·AngleOffset).
const AngleOffset = 1.0 / 1000

// Defaults are the factory parameters for new pool entries.
type Defaults struct {
	pendulum.Settings
	// AnglesDeg is the initial (θ1, θ2) pair in degrees before offsets.
	AnglesDeg [2]float64
	// Velocity is the initial ω1 and ω2 of every new entry.
	Velocity float64
}

func DefaultDefaults() Defaults {
	return Defaults{
		Settings:  pendulum.DefaultSettings(),
		AnglesDeg: [2]float64{90, -20},
		Velocity:  0.3,
	}
}

type Pool struct {
	defaults   Defaults
	integrator dynamo.Integrator
	entries    []*pendulum.Pendulum
	running    bool
	frames     int
	steps      int
}

// NewPool builds n entries from d, integrated with RK4. The pool starts
// paused.
func NewPool(n int, d Defaults) *Pool {
	p := &Pool{
		defaults:   d,
		integrator: integrators.NewRK4(),
	}
	p.Resize(n)
	return p
}

// WithIntegrator swaps the integrator used by Step.
func (p *Pool) WithIntegrator(integ dynamo.Integrator) *Pool {
	p.integrator = integ
	return p
}

func (p *Pool) Defaults() Defaults { return p.defaults }

func (p *Pool) Len() int { return len(p.entries) }

func (p *Pool) At(i int) *pendulum.Pendulum { return p.entries[i] }

// All returns the entries in index order. The slice is the pool's own;
// callers must not append to it.
func (p *Pool) All() []*pendulum.Pendulum { return p.entries }

func (p *Pool) Running() bool       { return p.running }
func (p *Pool) SetRunning(run bool) { p.running = run }
func (p *Pool) Toggle() bool        { p.running = !p.running; return p.running }

// Frames counts Tick calls, Steps counts physics advances.
func (p *Pool) Frames() int { return p.frames }
func (p *Pool) Steps() int  { return p.steps }

// newEntry builds entry i of a pool of n.
func (p *Pool) newEntry(i, n int) *pendulum.Pendulum {
	d := p.defaults
	angles := [2]float64{
		physics.DegToRad(d.AnglesDeg[0]) + float64(i)*AngleOffset,
		physics.DegToRad(d.AnglesDeg[1]) - float64(i)*AngleOffset,
	}
	velocities := [2]float64{d.Velocity, d.Velocity}
	return pendulum.New(angles, velocities, float64(i)/float64(n), d.Settings)
}

// Step integrates every entry once, in index order.
func (p *Pool) Step() {
	for _, e := range p.entries {
		e.Update(p.integrator)
	}
	p.steps++
}

// Tick runs one frame: Step when running, then the draw-side trace record
// for every entry. Paused pools still record so they can be redrawn.
func (p *Pool) Tick(origin physics.Vec2) bool {
	advanced := p.running
	if advanced {
		p.Step()
	}
	for _, e := range p.entries {
		e.Record(origin)
	}
	p.frames++
	return advanced
}

// Run ticks until ticks frames have been produced or ctx is done. The
// context is checked between ticks only.
func (p *Pool) Run(ctx context.Context, ticks int, origin physics.Vec2, onTick func(*Pool)) error {
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		p.Tick(origin)
		if onTick != nil {
			onTick(p)
		}
	}
	return nil
}

// Resize grows the pool by appending fresh entries or shrinks it by
// truncating the tail. Surviving entries are untouched.
func (p *Pool) Resize(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n == len(p.entries):
		return
	case n < len(p.entries):
		for i := n; i < len(p.entries); i++ {
			p.entries[i] = nil
		}
		p.entries = p.entries[:n]
	default:
		for i := len(p.entries); i < n; i++ {
			p.entries = append(p.entries, p.newEntry(i, n))
		}
	}
}

// Reset discards every entry and rebuilds the same number from anglesDeg
// and the current defaults.
func (p *Pool) Reset(anglesDeg [2]float64) {
	n := len(p.entries)
	p.defaults.AnglesDeg = anglesDeg
	p.entries = make([]*pendulum.Pendulum, 0, n)
	for i := 0; i < n; i++ {
		p.entries = append(p.entries, p.newEntry(i, n))
	}
	p.steps = 0
}

// Apply broadcasts the present fields of o to every entry and to the
// defaults.
func (p *Pool) Apply(o Options) {
	if o.empty() {
		return
	}
	apply := func(s *pendulum.Settings) {
		if o.Gravity != nil {
			s.Gravity = *o.Gravity
		}
		if o.Length != nil {
			s.Lengths = [2]float64{*o.Length, *o.Length}
		}
		if o.Mass != nil {
			s.Masses = [2]float64{*o.Mass, *o.Mass}
		}
		if o.Dt != nil {
			s.Dt = *o.Dt
		}
		if o.Damping != nil {
			s.Damping = *o.Damping
		}
		if o.TraceCap != nil {
			s.MaxTraceLength = *o.TraceCap
		}
		if o.ShowArms != nil {
			s.ShowArms = *o.ShowArms
		}
		if o.ShowTrace != nil {
			s.ShowTrace = *o.ShowTrace
		}
	}

	apply(&p.defaults.Settings)
	if o.Velocity != nil {
		p.defaults.Velocity = *o.Velocity
	}

	for _, e := range p.entries {
		apply(&e.Settings)
		if o.Velocity != nil {
			e.Velocities = [2]float64{*o.Velocity, *o.Velocity}
		}
		if o.TraceCap != nil {
			e.Trace().Trim(e.MaxTraceLength)
		}
	}
}

// Energy is the summed mechanical energy of every entry.
func (p *Pool) Energy() float64 {
	total := 0.0
	for _, e := range p.entries {
		total += e.Energy()
	}
	return total
}

// FirstInvalid returns the index of the first entry with a non-finite
// state, or -1.
func (p *Pool) FirstInvalid() int {
	for i, e := range p.entries {
		if !e.Valid() {
			return i
		}
	}
	return -1
}
