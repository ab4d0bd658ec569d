// Package wavop provides lazy, composable linear operators for seismic
// forward modeling, adjoint modeling and Born linearization.
//
// Operators are cheap immutable descriptors over a shared model and
// per-shot geometries. Nothing is computed until Apply is called; every
// apply fans out over shots on a bounded worker pool.
//
// # Quick Start
//
//	ctx := context.Background()
//	m, _ := model.FromVelocity([]int{120, 100}, []float64{10, 10}, []float64{0, 0}, vp)
//	src, _ := geometry.New(xsrc, ysrc, zsrc, 2, 1000, 2)
//	rec, _ := geometry.New(xrec, yrec, zrec, 2, 1000, 2)
//
//	f, _ := wavop.NewFullModeling(m, src, rec, solver.NewKinematic())
//	d, _ := f.Apply(ctx, q)                 // observed data
//	back, _ := f.Adjoint().Apply(ctx, d)    // source-side adjoint
//
// # Composition
//
// Operators compose with Mul; shapes are checked immediately:
//
//	pr, _ := wavop.NewProjection(info, rec)
//	ps, _ := wavop.NewProjection(info, src)
//	F, _ := wavop.NewModeling(m, info, s)
//	fwd, _ := wavop.Mul(pr, F, ps.Transpose())  // same as NewFullModeling
//	adj, _ := wavop.Mul(ps, F.Transpose(), pr.Transpose())
//
// # Shots
//
// Every operator can be restricted to a subset of shots with Subset, Index
// or Slice. Indices are 0-based and slices half-open. Subsample works on
// operators and vectors alike:
//
//	f0, _ := wavop.Index(f, 0)
//	d01, _ := wavop.Subsample(d, []int{0, 1})
//
// # Inversion
//
// Objective returns the least-squares misfit and its gradient:
//
//	fval, grad, _ := wavop.Objective(ctx, m0, q, d, s)
//
// ModelingOptions.ISIC and ModelingOptions.Frequencies select the inverse
// scattering imaging condition and frequency-domain gradients. Both need a
// solver implementing Linearizer.
//
// # Errors
//
// Shape errors match ErrShapeMismatch, bad shot indices ErrIndexOutOfRange
// and solver failures ErrSolverFailure (the solver's own error stays
// reachable through errors.As). Failed record writes surface as
// *record.PartialWriteError.
package wavop
