// Package solver provides a reference per-shot wave solver.
//
// Kinematic models every source-receiver pair as a straight ray: the trace
// is the source wavelet delayed by the integrated slowness along the ray and
// scaled by a geometric spreading factor. Born scattering uses a Gaussian
// sensitivity kernel around each ray. Every operation has an exact discrete
// adjoint, so dot-product tests hold to float32 round-off.
//
// LinearizedBorn and LinearizedGradient add two variants. The inverse
// scattering imaging condition damps the kernel on the direct path between
// source and receiver. A frequency list replaces the source-side field by its
// synthesis from an on-the-fly DFT at those frequencies.
//
// Kinematic is a stand-in for a finite-difference engine. It is fast enough
// for tests and examples, not for imaging.
package solver
