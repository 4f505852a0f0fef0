package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/physics"
)

// Lyapunov estimates the largest Lyapunov exponent of the double pendulum
// p started at x0, integrated with RK4. A second trajectory starts eps away
// in θ1; after every step the separation is logged and pulled back to eps
// along its current direction.
func Lyapunov(p physics.Params, x0 dynamo.State, dt float64, steps int, eps float64) (float64, error) {
	return LyapunovExponent(&physics.DoublePendulum{Params: p}, integrators.NewRK4(), x0, dt, steps, eps)
}

// LyapunovExponent is Lyapunov for any system and integrator. x0 must have
// dyn.StateDim() components.
func LyapunovExponent(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt float64, steps int, eps float64) (float64, error) {
	if len(x0) != dyn.StateDim() {
		return 0, fmt.Errorf("lyapunov: state has %d components, system wants %d: %w",
			len(x0), dyn.StateDim(), dynamo.ErrDimensionMismatch)
	}
	if steps <= 0 || eps <= 0 || dt <= 0 {
		return 0, nil
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += eps

	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dt)
		xp = integ.Step(dyn, xp, dt)

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}

		sumLog += math.Log(sep / eps)
		count++

		scale := eps / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}
