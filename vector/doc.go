// Package vector holds the operands that wave-equation operators act on.
//
//   - Vector: per-shot seismic traces (source wavelets or recorded data)
//     tied to a geometry. Each shot is stored trace-major: sample t of
//     trace r lives at Data[shot][r*nt + t].
//   - Wavefield: per-shot full-domain fields, time-major
//     (Data[shot][t*n + cell]).
//   - Image: one value per model grid cell (perturbations, gradients).
//
// Arithmetic between operands of different shapes fails with an error
// matching ErrShapeMismatch.
package vector
