// Package analysis characterises single double-pendulum trajectories.
//
//   - [Lyapunov]: largest Lyapunov exponent by renormalised separation
//   - [PowerSpectrum], [DominantFrequency]: spectra of a sampled angle
//   - [Phase]: (θ, ω) portrait of one link
//   - [Poincare]: section taken where θ1 crosses zero upward
//
// A positive largest Lyapunov exponent indicates chaotic motion:
//
//	lambda, err := analysis.Lyapunov(params, x0, 0.01, 20000, 1e-8)
//	if err == nil && lambda > 0 {
//	    // nearby fans will separate
//	}
package analysis
