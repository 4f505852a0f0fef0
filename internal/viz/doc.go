// Package viz is the terminal live view of a pendulum fan, built on
// Bubble Tea.
//
//   - [Model]: ticks a [sim.Pool] and draws it on a braille [Canvas]
//   - [Canvas]: braille dots with one colour per character cell
//   - [Theme]: side panel colours
//
// # Key Bindings
//
//	Space - Run/Pause
//	R     - Reset to the start angles
//	Tab   - Select parameter, ↑/↓ to tune
//	A T D - Toggle arms, traces, damping
//	+/-   - Grow or shrink the fan
//	C     - Cycle colour scheme
package viz
