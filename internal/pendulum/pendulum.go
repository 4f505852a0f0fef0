package pendulum

import (
	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/physics"
)

// DampingFactor multiplies both angular velocities once per update when
// damping is enabled. It is not scaled by dt.
const DampingFactor = 0.999

const (
	DefaultDt             = 0.02
	DefaultMaxTraceLength = 100
)

// Settings are the parameters every pendulum of a pool shares at creation.
type Settings struct {
	Masses         [2]float64
	Lengths        [2]float64
	Gravity        float64
	Dt             float64
	Damping        bool
	MaxTraceLength int
	ShowArms       bool
	ShowTrace      bool
}

func DefaultSettings() Settings {
	return Settings{
		Masses:         [2]float64{physics.DefaultMass, physics.DefaultMass},
		Lengths:        [2]float64{physics.DefaultLength, physics.DefaultLength},
		Gravity:        physics.DefaultGravity,
		Dt:             DefaultDt,
		MaxTraceLength: DefaultMaxTraceLength,
		ShowArms:       true,
		ShowTrace:      true,
	}
}

type Pendulum struct {
	Angles     [2]float64
	Velocities [2]float64
	Settings

	// ColorIndex in [0, 1) selects this pendulum's colour from a palette.
	ColorIndex float64

	trace Trace
	sys   physics.DoublePendulum
	x     dynamo.State
}

func New(angles, velocities [2]float64, colorIndex float64, s Settings) *Pendulum {
	return &Pendulum{
		Angles:     angles,
		Velocities: velocities,
		Settings:   s,
		ColorIndex: colorIndex,
		x:          make(dynamo.State, 4),
	}
}

func (p *Pendulum) Params() physics.Params {
	return physics.Params{
		M1: p.Masses[0], M2: p.Masses[1],
		L1: p.Lengths[0], L2: p.Lengths[1],
		Gravity: p.Gravity,
	}
}

// State packs the pendulum as [θ1, θ2, ω1, ω2].
func (p *Pendulum) State() dynamo.State {
	return dynamo.State{p.Angles[0], p.Angles[1], p.Velocities[0], p.Velocities[1]}
}

// Update advances angles and velocities by Dt with integ, then applies
// damping. Both pairs are replaced together from the integrator's result.
func (p *Pendulum) Update(integ dynamo.Integrator) {
	if len(p.x) != 4 {
		p.x = make(dynamo.State, 4)
	}
	p.x[0], p.x[1] = p.Angles[0], p.Angles[1]
	p.x[2], p.x[3] = p.Velocities[0], p.Velocities[1]
	p.sys.Params = p.Params()

	next := integ.Step(&p.sys, p.x, p.Dt)

	p.Angles = [2]float64{next[0], next[1]}
	p.Velocities = [2]float64{next[2], next[3]}

	if p.Damping {
		p.Velocities[0] *= DampingFactor
		p.Velocities[1] *= DampingFactor
	}
}

// Arms returns both bob positions for a pivot at origin.
func (p *Pendulum) Arms(origin physics.Vec2) (bob1, bob2 physics.Vec2) {
	return physics.Positions(origin, p.Angles, p.Lengths)
}

// Position returns the lower bob's position for a pivot at origin.
func (p *Pendulum) Position(origin physics.Vec2) physics.Vec2 {
	_, bob2 := p.Arms(origin)
	return bob2
}

// Record appends the current lower bob position to the trace. This is the
// draw-side half of a tick.
func (p *Pendulum) Record(origin physics.Vec2) physics.Vec2 {
	pos := p.Position(origin)
	p.trace.Push(pos, p.MaxTraceLength)
	return pos
}

func (p *Pendulum) Trace() *Trace { return &p.trace }

func (p *Pendulum) Energy() float64 {
	return physics.Energy(p.Angles, p.Velocities, p.Params())
}

// Valid reports whether angles and velocities are all finite.
func (p *Pendulum) Valid() bool {
	return p.State().IsValid()
}
