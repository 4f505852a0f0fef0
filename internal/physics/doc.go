// Package physics provides the two-link rigid double pendulum used by the fan.
//
// [Accelerations] is the closed-form angular acceleration model derived from
// the double pendulum Lagrangian. [DoublePendulum] wraps it as a
// [dynamo.System] over the state [θ1, θ2, ω1, ω2] so any fixed-step
// integrator can advance it, and implements [dynamo.Hamiltonian] and
// [dynamo.Configurable].
//
// Angles are measured from the downward vertical. Screen coordinates are
// used for positions: x to the right, y growing downward from the pivot.
//
// # Degenerate configurations
//
// Nothing here validates its inputs. With m1 = 0 the shared denominator can
// vanish and the accelerations become NaN or Inf; callers guarantee m1 > 0.
package physics
