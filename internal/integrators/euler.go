package integrators

import "github.com/san-kum/chaosfan/internal/dynamo"

// Euler is first order and drifts quickly on the pendulum; it exists for
// side-by-side comparison with RK4.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, dt float64) dynamo.State {
	dx := dyn.Derive(x)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
