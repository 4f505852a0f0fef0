package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the discrete Fourier transform of real samples. Any length
// is accepted.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// PowerSpectrum returns the magnitudes of the lower half of the spectrum.
func PowerSpectrum(data []float64) []float64 {
	spectrum := FFT(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-zero frequency, in Hz, of
// samples taken every dt seconds. Samples are truncated to the largest
// power of two and the mean is removed first.
func DominantFrequency(samples []float64, dt float64) float64 {
	n := 1
	for n*2 <= len(samples) {
		n *= 2
	}
	if n < 4 || dt <= 0 {
		return 0
	}

	mean := 0.0
	for _, v := range samples[:n] {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range samples[:n] {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	return float64(peak) / (float64(n) * dt)
}
