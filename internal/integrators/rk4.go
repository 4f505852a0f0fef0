package integrators

import "github.com/san-kum/chaosfan/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta step:
//
//	k1 = f(x)
//	k2 = f(x + dt/2·k1)
//	k3 = f(x + dt/2·k2)
//	k4 = f(x + dt·k3)
//	x' = x + dt/6·(k1 + 2k2 + 2k3 + k4)
//
// For a pendulum state [θ, ω] the stage 2 angle estimate is advanced with
// the current ω (k1's rate). Stages 3 and 4 advance the angle with the
// previous stage's velocity estimate.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derive(x))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + 0.5*r.k1[i]*dt
	}
	copy(r.k2, dyn.Derive(r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + 0.5*r.k2[i]*dt
	}
	copy(r.k3, dyn.Derive(r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k3[i]*dt
	}
	copy(r.k4, dyn.Derive(r.scratch))

	result := make(dynamo.State, n)
	dt6 := dt / 6
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
