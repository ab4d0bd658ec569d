package wavop

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// Modeling propagates full-domain source fields through the model. The
// forward and adjoint propagators are distinct kinds: transposing a
// KindModeling operator yields a KindModelingAdjoint one and vice versa.
type Modeling struct {
	model  *model.Model
	info   *Info
	solver Solver
	kind   Kind
	cfg    *config
}

// NewModeling builds the forward propagator for m. Applying it needs a
// solver that implements Propagator.
func NewModeling(m *model.Model, info *Info, s Solver, optFns ...Option) (*Modeling, error) {
	cfg, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	if info.N != m.N() {
		return nil, fmt.Errorf("%w: info has %d cells, model has %d", ErrShapeMismatch, info.N, m.N())
	}
	return &Modeling{model: m, info: info, solver: s, kind: KindModeling, cfg: cfg}, nil
}

// Options returns the modeling options bundle.
func (f *Modeling) Options() ModelingOptions { return f.cfg.modeling }

// Solver returns the injected solver.
func (f *Modeling) Solver() Solver { return f.solver }

func (f *Modeling) Kind() Kind          { return f.kind }
func (f *Modeling) DType() DType        { return Float32 }
func (f *Modeling) Transposed() bool    { return f.kind == KindModelingAdjoint }
func (f *Modeling) Info() *Info         { return f.info }
func (f *Modeling) Model() *model.Model { return f.model }

func (f *Modeling) Shape() Shape {
	n := f.info.N * f.info.TotalNT()
	return Shape{Rows: n, Cols: n}
}

func (f *Modeling) Transpose() Operator {
	out := *f
	if f.kind == KindModeling {
		out.kind = KindModelingAdjoint
	} else {
		out.kind = KindModeling
	}
	return &out
}

func (f *Modeling) Conjugate() Operator {
	out := *f
	return &out
}

func (f *Modeling) Adjoint() Operator { return f.Transpose().Conjugate() }

func (f *Modeling) Subset(shots []int) (Operator, error) {
	info, err := f.info.Subset(shots)
	if err != nil {
		return nil, err
	}
	out := *f
	out.info = info
	return &out, nil
}

// Apply propagates a *vector.Wavefield source field, forward or backward in
// time depending on the kind.
func (f *Modeling) Apply(ctx context.Context, x vector.Operand) (out vector.Operand, err error) {
	start := time.Now()
	defer func() { f.cfg.observe(ctx, f.kind, f.info.NSrc, start, err) }()

	if err := checkOperand(f, x); err != nil {
		return nil, err
	}
	src, ok := x.(*vector.Wavefield)
	if !ok {
		return nil, operandError(f, "*vector.Wavefield", x)
	}
	if src.N != f.info.N || src.NSrc() != f.info.NSrc {
		return nil, fmt.Errorf("%w: wavefield of %d cells x %d shots", ErrShapeMismatch, src.N, src.NSrc())
	}
	if f.solver == nil {
		return nil, ErrNoSolver
	}
	prop, ok := f.solver.(Propagator)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot propagate wavefields", ErrUnsupported, f.solver)
	}

	u := vector.NewWavefield(f.info.N, f.info.NT, f.info.Dt)
	mem := workingBytes(2 * f.info.N * maxInt(f.info.NT))
	err = f.cfg.forEachShot(ctx, f.kind, f.info.NSrc, mem, func(ctx context.Context, i int) error {
		var res []float32
		var err error
		if f.kind == KindModeling {
			res, err = prop.Propagate(ctx, f.model, f.info.NT[i], f.info.Dt[i], src.Data[i])
		} else {
			res, err = prop.PropagateAdjoint(ctx, f.model, f.info.NT[i], f.info.Dt[i], src.Data[i])
		}
		if err != nil {
			return err
		}
		if len(res) != len(u.Data[i]) {
			return fmt.Errorf("%w: solver returned %d samples, want %d", ErrShapeMismatch, len(res), len(u.Data[i]))
		}
		u.Data[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}
