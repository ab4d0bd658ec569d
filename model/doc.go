// Package model defines the physical domain used by the wave-equation
// operators.
//
// A Model is a regular grid (2-D or 3-D) with spacing, origin and medium
// parameters: squared slowness M (s²/km²) and an optional density Rho.
// Coordinates are metres and velocities km/s, so travel times come out in
// milliseconds.
//
// # Layout
//
// Fields are stored flat with the first axis fastest:
//
//	2-D (nx, nz):     idx = ix + nx*iz
//	3-D (nx, ny, nz): idx = ix + nx*(iy + ny*iz)
//
// The last axis is always depth. Models are immutable once constructed and
// are shared by pointer between every operator built from them.
package model
