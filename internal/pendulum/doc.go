// Package pendulum holds the per-instance state of one double pendulum in
// the fan: angles, angular velocities, physical parameters, the damping
// flag, visibility flags and the bounded trace of the lower bob.
//
// A [Pendulum] is advanced by [Pendulum.Update] once per simulation tick and
// its trace is appended by [Pendulum.Record] once per render tick. Neither
// call validates anything; degenerate parameters surface as NaN or Inf in
// the state, which [Pendulum.Valid] reports.
package pendulum
