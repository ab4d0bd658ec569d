// Package wavelet generates source time functions.
package wavelet

import (
	"math"

	"github.com/hupe1980/wavop/geometry"
)

// Ricker returns a Ricker wavelet sampled every dt ms up to tmax ms with
// peak frequency f0 in kHz. The peak is delayed by 1/f0 so the wavelet
// starts near zero.
func Ricker(tmax, dt, f0 float64) []float32 {
	nt := geometry.NumSamples(dt, tmax)
	out := make([]float32, nt)
	t0 := 1 / f0
	for i := range out {
		r := math.Pi * f0 * (float64(i)*dt - t0)
		r2 := r * r
		out[i] = float32((1 - 2*r2) * math.Exp(-r2))
	}
	return out
}

// Tile repeats w once per source coordinate of shot i, matching the
// trace-major layout of a source vector.
func Tile(w []float32, ntraces int) []float32 {
	out := make([]float32, 0, len(w)*ntraces)
	for range ntraces {
		out = append(out, w...)
	}
	return out
}
