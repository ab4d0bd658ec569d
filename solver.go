package wavop

import (
	"context"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
)

// Solver runs the wave equation for one shot. Traces are trace-major with
// src.NT samples each; src and rec share their sampling.
//
// Implementations must be safe for concurrent use: shots run in parallel
// on the same model.
type Solver interface {
	// Forward models receiver data from one wavelet trace per source
	// coordinate.
	Forward(ctx context.Context, m *model.Model, src, rec geometry.Shot, q []float32) ([]float32, error)

	// Adjoint maps receiver data back onto the source coordinates.
	Adjoint(ctx context.Context, m *model.Model, src, rec geometry.Shot, d []float32) ([]float32, error)

	// Born returns the linearized data perturbation for a model
	// perturbation dm (one value per cell of m).
	Born(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, dm []float32) ([]float32, error)

	// Gradient applies the adjoint of Born to a data residual and returns
	// one value per cell of m.
	Gradient(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, res []float32) ([]float32, error)
}

// Linearizer is an optional Solver capability for Born variants: the
// inverse scattering imaging condition and frequency-domain gradients.
// freqs are in kHz; an empty list keeps the time domain. The gradient must
// be the exact adjoint of the Born map with the same settings.
type Linearizer interface {
	LinearizedBorn(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, dm []float32, isic bool, freqs []float64) ([]float32, error)
	LinearizedGradient(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, res []float32, isic bool, freqs []float64) ([]float32, error)
}

// Propagator is an optional Solver capability for full-domain fields.
// Fields are time-major: nt snapshots of m.N() cells.
type Propagator interface {
	Propagate(ctx context.Context, m *model.Model, nt int, dt float64, f []float32) ([]float32, error)
	PropagateAdjoint(ctx context.Context, m *model.Model, nt int, dt float64, u []float32) ([]float32, error)
}
