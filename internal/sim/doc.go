// Package sim owns the fan: an ordered pool of independent double pendulums
// advanced together once per tick.
//
// Entries never share mutable state, so the order in which [Pool.Step]
// visits them does not change any trajectory; it is still fixed (index
// order) so runs are reproducible.
//
// A Pool is not safe for concurrent use. Callers apply [Options] between
// ticks, never while a step is in progress.
package sim
