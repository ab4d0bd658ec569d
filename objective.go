package wavop

import (
	"context"

	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// Objective evaluates the least-squares misfit between modeled and observed
// data and its gradient with respect to the squared slowness:
//
//	fval = ½‖F q − d‖²,  grad = Jᵀ (F q − d)
//
// q is the source wavelet on the source geometry, d the observed data on
// the receiver geometry.
func Objective(ctx context.Context, m *model.Model, q, d *vector.Vector, s Solver, optFns ...Option) (fval float64, grad *vector.Image, err error) {
	cfg, err := applyOptions(optFns)
	if err != nil {
		return 0, nil, err
	}
	defer func() { cfg.logger.LogObjective(ctx, q.NSrc(), fval, err) }()

	f, err := newFullModeling(m, NewInfo(m, q.Geometry), q.Geometry, d.Geometry, s, cfg)
	if err != nil {
		return 0, nil, err
	}
	pred, err := f.Apply(ctx, q)
	if err != nil {
		return 0, nil, err
	}
	res, err := pred.(*vector.Vector).Sub(d)
	if err != nil {
		return 0, nil, err
	}
	norm := res.Norm()
	fval = 0.5 * norm * norm

	j, err := NewJacobian(f, q)
	if err != nil {
		return 0, nil, err
	}
	g, err := j.Adjoint().Apply(ctx, res)
	if err != nil {
		return 0, nil, err
	}
	return fval, g.(*vector.Image), nil
}

// ObjectiveShots evaluates Objective on a subset of the shots of q and d.
func ObjectiveShots(ctx context.Context, m *model.Model, q, d *vector.Vector, s Solver, shots []int, optFns ...Option) (float64, *vector.Image, error) {
	if err := checkShots(q.NSrc(), shots); err != nil {
		return 0, nil, err
	}
	qs, err := Subsample(q, shots)
	if err != nil {
		return 0, nil, err
	}
	ds, err := Subsample(d, shots)
	if err != nil {
		return 0, nil, err
	}
	return Objective(ctx, m, qs, ds, s, optFns...)
}
