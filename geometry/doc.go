// Package geometry describes where sources and receivers sit for each shot
// and how their traces are sampled in time.
//
// A Geometry is a sequence of independent single-shot geometries. Each shot
// has its own coordinate lists, sampling interval Dt and recording length T
// (both in ms); the number of samples is NT = floor(T/Dt) + 1.
//
//	rec, _ := geometry.New(
//	    [][]float64{xs}, [][]float64{ys}, [][]float64{zs},
//	    2, 1000, 2, // dt=2ms, t=1000ms, broadcast to 2 shots
//	)
//	first, _ := rec.Subset([]int{0})
package geometry
