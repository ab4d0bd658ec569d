package wavop

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// FullModeling maps source wavelets to receiver data: Pr * F * Ps^T. Its
// transpose maps data residuals back to the source side.
type FullModeling struct {
	model   *model.Model
	info    *Info
	src     *geometry.Geometry
	rec     *geometry.Geometry
	solver  Solver
	adjoint bool
	cfg     *config
}

// NewFullModeling builds the forward modeling operator for the given source
// and receiver geometries. Both must have the same shots and sampling.
func NewFullModeling(m *model.Model, src, rec *geometry.Geometry, s Solver, optFns ...Option) (*FullModeling, error) {
	cfg, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return newFullModeling(m, NewInfo(m, src), src, rec, s, cfg)
}

func newFullModeling(m *model.Model, info *Info, src, rec *geometry.Geometry, s Solver, cfg *config) (*FullModeling, error) {
	if !src.SameSampling(rec) {
		return nil, fmt.Errorf("%w: source and receiver geometries differ in shots or sampling", ErrShapeMismatch)
	}
	if !info.matches(src) || info.N != m.N() {
		return nil, fmt.Errorf("%w: info does not describe the model and source geometry", ErrShapeMismatch)
	}
	return &FullModeling{model: m, info: info, src: src, rec: rec, solver: s, cfg: cfg}, nil
}

// SrcGeometry returns the source geometry regardless of transposition.
func (f *FullModeling) SrcGeometry() *geometry.Geometry { return f.src }

// RecGeometry returns the receiver geometry regardless of transposition.
func (f *FullModeling) RecGeometry() *geometry.Geometry { return f.rec }

// DomainGeometry is the geometry of the operand Apply accepts.
func (f *FullModeling) DomainGeometry() *geometry.Geometry {
	if f.adjoint {
		return f.rec
	}
	return f.src
}

// RangeGeometry is the geometry of the result Apply returns.
func (f *FullModeling) RangeGeometry() *geometry.Geometry {
	if f.adjoint {
		return f.src
	}
	return f.rec
}

// Options returns the modeling options bundle.
func (f *FullModeling) Options() ModelingOptions { return f.cfg.modeling }

// Solver returns the injected solver.
func (f *FullModeling) Solver() Solver { return f.solver }

func (f *FullModeling) Kind() Kind {
	if f.adjoint {
		return KindFullAdjoint
	}
	return KindFullForward
}

func (f *FullModeling) DType() DType        { return Float32 }
func (f *FullModeling) Transposed() bool    { return f.adjoint }
func (f *FullModeling) Info() *Info         { return f.info }
func (f *FullModeling) Model() *model.Model { return f.model }

func (f *FullModeling) Shape() Shape {
	s := Shape{Rows: f.rec.TotalSamples(), Cols: f.src.TotalSamples()}
	if f.adjoint {
		return s.T()
	}
	return s
}

func (f *FullModeling) Transpose() Operator {
	out := *f
	out.adjoint = !f.adjoint
	return &out
}

func (f *FullModeling) Conjugate() Operator {
	out := *f
	return &out
}

func (f *FullModeling) Adjoint() Operator { return f.Transpose().Conjugate() }

func (f *FullModeling) Subset(shots []int) (Operator, error) {
	sub, err := f.subset(shots)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (f *FullModeling) subset(shots []int) (*FullModeling, error) {
	info, err := f.info.Subset(shots)
	if err != nil {
		return nil, err
	}
	src, err := f.src.Subset(shots)
	if err != nil {
		return nil, translateError(err)
	}
	rec, err := f.rec.Subset(shots)
	if err != nil {
		return nil, translateError(err)
	}
	out := *f
	out.info, out.src, out.rec = info, src, rec
	return &out, nil
}

// Apply models data from a source *vector.Vector, or maps a data
// *vector.Vector back to the sources when transposed.
func (f *FullModeling) Apply(ctx context.Context, x vector.Operand) (out vector.Operand, err error) {
	start := time.Now()
	defer func() { f.cfg.observe(ctx, f.Kind(), f.info.NSrc, start, err) }()

	if err := checkOperand(f, x); err != nil {
		return nil, err
	}
	v, ok := x.(*vector.Vector)
	if !ok {
		return nil, operandError(f, "*vector.Vector", x)
	}
	if err := checkVector(f.DomainGeometry(), v); err != nil {
		return nil, err
	}
	if f.solver == nil {
		return nil, ErrNoSolver
	}

	if f.adjoint {
		q, err := f.sourceSide(ctx, v)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	d, err := f.forward(ctx, v)
	if err != nil {
		return nil, err
	}
	if f.cfg.modeling.SaveDataToDisk {
		if err := f.persist(ctx, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (f *FullModeling) forward(ctx context.Context, q *vector.Vector) (*vector.Vector, error) {
	d := vector.Zeros(f.rec)
	err := f.eachShot(ctx, KindFullForward, func(ctx context.Context, i int, sm *shotModel, src, rec geometry.Shot) error {
		res, err := f.solver.Forward(ctx, sm.sub, src, rec, q.Data[i])
		if err != nil {
			return err
		}
		return store(d.Data, i, res)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (f *FullModeling) sourceSide(ctx context.Context, d *vector.Vector) (*vector.Vector, error) {
	q := vector.Zeros(f.src)
	err := f.eachShot(ctx, KindFullAdjoint, func(ctx context.Context, i int, sm *shotModel, src, rec geometry.Shot) error {
		res, err := f.solver.Adjoint(ctx, sm.sub, src, rec, d.Data[i])
		if err != nil {
			return err
		}
		return store(q.Data, i, res)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// eachShot runs fn for every shot on its (possibly limited) model.
func (f *FullModeling) eachShot(ctx context.Context, kind Kind, fn func(ctx context.Context, i int, sm *shotModel, src, rec geometry.Shot) error) error {
	mem := workingBytes(f.model.N(), maxInt(f.rec.NT)*maxCoords(f.rec))
	return f.cfg.forEachShot(ctx, kind, f.info.NSrc, mem, func(ctx context.Context, i int) error {
		src, rec := f.src.Shot(i), f.rec.Shot(i)
		sm, err := limitModel(f.model, f.cfg.modeling, src, rec)
		if err != nil {
			return err
		}
		return fn(ctx, i, sm, src, rec)
	})
}

// persist writes one record per shot of d.
func (f *FullModeling) persist(ctx context.Context, d *vector.Vector) error {
	start := time.Now()
	names, err := f.cfg.records.WriteVector(ctx, f.cfg.modeling.FileName, d, f.src)
	f.cfg.metrics.RecordPersist(len(names), time.Since(start), err)
	f.cfg.logger.LogRecordWrite(ctx, f.cfg.modeling.FileName, len(names), err)
	return err
}

// store places a solver result into a pre-sized per-shot slot.
func store(dst [][]float32, i int, res []float32) error {
	if len(res) != len(dst[i]) {
		return fmt.Errorf("%w: solver returned %d samples, want %d", ErrShapeMismatch, len(res), len(dst[i]))
	}
	dst[i] = res
	return nil
}

func checkVector(g *geometry.Geometry, v *vector.Vector) error {
	if v.NSrc() != g.NSrc() {
		return fmt.Errorf("%w: %d shots for %d geometry shots", ErrShapeMismatch, v.NSrc(), g.NSrc())
	}
	for i := range v.Data {
		if len(v.Data[i]) != g.Samples(i) {
			return fmt.Errorf("%w: shot %d has %d samples, geometry needs %d", ErrShapeMismatch, i, len(v.Data[i]), g.Samples(i))
		}
	}
	return nil
}

func maxCoords(g *geometry.Geometry) int {
	n := 0
	for _, x := range g.X {
		n = max(n, len(x))
	}
	return n
}
