package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/chaosfan/internal/dynamo"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 200.0
	DefaultGravity = 9.81
)

// Params are the physical constants of one double pendulum. Link 1 is the
// upper link; m2 hangs at the end of link 2.
type Params struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
}

func DefaultParams() Params {
	return Params{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		Gravity: DefaultGravity,
	}
}

// Accelerations returns the angular accelerations (α1, α2) for angles
// (a1, a2) and angular velocities (w1, w2).
func Accelerations(a1, a2, w1, w2 float64, p Params) (alpha1, alpha2 float64) {
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity

	den := 2*m1 + m2 - m2*math.Cos(2*a1-2*a2)

	num1 := -g * (2*m1 + m2) * math.Sin(a1)
	num2 := -m2 * g * math.Sin(a1-2*a2)
	num3 := -2 * math.Sin(a1-a2) * m2
	num4 := w2*w2*l2 + w1*w1*l1*math.Cos(a1-a2)
	alpha1 = (num1 + num2 + num3*num4) / (l1 * den)

	num5 := 2 * math.Sin(a1-a2)
	num6 := w1 * w1 * l1 * (m1 + m2)
	num7 := g * (m1 + m2) * math.Cos(a1)
	num8 := w2 * w2 * l2 * m2 * math.Cos(a1-a2)
	alpha2 = (num5 * (num6 + num7 + num8)) / (l2 * den)

	return alpha1, alpha2
}

// Energy is the total mechanical energy, with potential measured from the
// pivot height (so the hanging rest state has negative energy).
func Energy(theta, omega [2]float64, p Params) float64 {
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity
	w1, w2 := omega[0], omega[1]

	v1sq := l1 * l1 * w1 * w1
	v2sq := l1*l1*w1*w1 + l2*l2*w2*w2 +
		2*l1*l2*w1*w2*math.Cos(theta[0]-theta[1])

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(theta[0])
	y2 := y1 - l2*math.Cos(theta[1])
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}

// DoublePendulum adapts Params to the dynamo interfaces.
type DoublePendulum struct {
	Params
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{Params: DefaultParams()}
}

func (d *DoublePendulum) StateDim() int { return 4 }

// Derive returns [ω1, ω2, α1, α2] for x = [θ1, θ2, ω1, ω2].
func (d *DoublePendulum) Derive(x dynamo.State) dynamo.State {
	alpha1, alpha2 := Accelerations(x[0], x[1], x[2], x[3], d.Params)
	return dynamo.State{x[2], x[3], alpha1, alpha2}
}

func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	return Energy([2]float64{x[0], x[1]}, [2]float64{x[2], x[3]}, d.Params)
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"m1": d.M1,
		"m2": d.M2,
		"l1": d.L1,
		"l2": d.L2,
		"g":  d.Gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%s=%g: %w", name, value, dynamo.ErrParameterBounds)
	}
	switch name {
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	case "g":
		d.Gravity = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}

// NormalModes returns the small-angle angular frequencies of the slow
// (in-phase) and fast (anti-phase) modes for equal masses and equal
// lengths l: ω² = (g/l)(2 ∓ √2).
func NormalModes(g, l float64) (slow, fast float64) {
	slow = math.Sqrt(g / l * (2 - math.Sqrt2))
	fast = math.Sqrt(g / l * (2 + math.Sqrt2))
	return slow, fast
}
