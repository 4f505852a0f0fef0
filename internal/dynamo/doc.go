// Package dynamo provides the core primitives shared by the pendulum fan.
//
// The package defines the small vocabulary the physics and integrator
// packages agree on:
//
//   - [State]: flat state vector, for a double pendulum [θ1, θ2, ω1, ω2]
//   - [System]: first-order ODE system dX/dt = f(X)
//   - [Integrator]: fixed-step numerical integrator
//   - [Hamiltonian]: systems that can report total mechanical energy
//
// # Example
//
//	dp := physics.NewDoublePendulum()
//	rk := integrators.NewRK4()
//	x := dynamo.State{math.Pi / 2, 0, 0, 0}
//	x = rk.Step(dp, x, 0.02)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// Use one integrator per goroutine.
package dynamo
