package wavop

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// Jacobian is the Born linearization of a FullModeling operator around a
// background source wavelet. Forward maps a model perturbation to a data
// perturbation; the transpose maps a data residual to a gradient image.
type Jacobian struct {
	full       *FullModeling
	q          *vector.Vector
	transposed bool
}

// NewJacobian linearizes f around the source wavelet q, which must match
// f's source geometry. A transposed f is used in its forward role.
func NewJacobian(f *FullModeling, q *vector.Vector) (*Jacobian, error) {
	if f.adjoint {
		f = f.Transpose().(*FullModeling)
	}
	if err := checkVector(f.src, q); err != nil {
		return nil, err
	}
	return &Jacobian{full: f, q: q}, nil
}

// Full returns the forward modeling operator being linearized.
func (j *Jacobian) Full() *FullModeling { return j.full }

// Wavelet returns the background source wavelet.
func (j *Jacobian) Wavelet() *vector.Vector { return j.q }

func (j *Jacobian) Kind() Kind          { return KindJacobian }
func (j *Jacobian) DType() DType        { return Float32 }
func (j *Jacobian) Transposed() bool    { return j.transposed }
func (j *Jacobian) Info() *Info         { return j.full.info }
func (j *Jacobian) Model() *model.Model { return j.full.model }

// Shape is (Σ nt·nrec, N), swapped when transposed.
func (j *Jacobian) Shape() Shape {
	s := Shape{Rows: j.full.rec.TotalSamples(), Cols: j.full.model.N()}
	if j.transposed {
		return s.T()
	}
	return s
}

func (j *Jacobian) Transpose() Operator {
	out := *j
	out.transposed = !j.transposed
	return &out
}

func (j *Jacobian) Conjugate() Operator {
	out := *j
	return &out
}

func (j *Jacobian) Adjoint() Operator { return j.Transpose().Conjugate() }

func (j *Jacobian) Subset(shots []int) (Operator, error) {
	f, err := j.full.subset(shots)
	if err != nil {
		return nil, err
	}
	q, err := j.q.Subset(shots)
	if err != nil {
		return nil, translateError(err)
	}
	out := *j
	out.full, out.q = f, q
	return &out, nil
}

// Apply runs Born modeling on a *vector.Image, or migrates a data
// *vector.Vector into a *vector.Image when transposed.
func (j *Jacobian) Apply(ctx context.Context, x vector.Operand) (out vector.Operand, err error) {
	start := time.Now()
	defer func() { j.full.cfg.observe(ctx, KindJacobian, j.full.info.NSrc, start, err) }()

	if err := checkOperand(j, x); err != nil {
		return nil, err
	}
	if j.full.solver == nil {
		return nil, ErrNoSolver
	}
	lin, err := j.linearizer()
	if err != nil {
		return nil, err
	}
	if j.transposed {
		d, ok := x.(*vector.Vector)
		if !ok {
			return nil, operandError(j, "*vector.Vector", x)
		}
		if err := checkVector(j.full.rec, d); err != nil {
			return nil, err
		}
		img, err := j.gradient(ctx, lin, d)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	dm, ok := x.(*vector.Image)
	if !ok {
		return nil, operandError(j, "*vector.Image", x)
	}
	d, err := j.born(ctx, lin, dm)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// linearizer returns the solver's Linearizer when the options select a Born
// variant, and nil otherwise.
func (j *Jacobian) linearizer() (Linearizer, error) {
	if !j.full.cfg.modeling.linearized() {
		return nil, nil
	}
	lin, ok := j.full.solver.(Linearizer)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no imaging condition or frequency variants", ErrUnsupported, j.full.solver)
	}
	return lin, nil
}

func (j *Jacobian) born(ctx context.Context, lin Linearizer, dm *vector.Image) (*vector.Vector, error) {
	d := vector.Zeros(j.full.rec)
	mo := j.full.cfg.modeling
	err := j.full.eachShot(ctx, KindJacobian, func(ctx context.Context, i int, sm *shotModel, src, rec geometry.Shot) error {
		var res []float32
		var err error
		if lin != nil {
			res, err = lin.LinearizedBorn(ctx, sm.sub, src, rec, j.q.Data[i], sm.extract(dm.Data), mo.ISIC, mo.Frequencies)
		} else {
			res, err = j.full.solver.Born(ctx, sm.sub, src, rec, j.q.Data[i], sm.extract(dm.Data))
		}
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

func (j *Jacobian) gradient(ctx context.Context, lin Linearizer, r *vector.Vector) (*vector.Image, error) {
	parts := make([][]float32, j.full.info.NSrc)
	windows := make([]*shotModel, j.full.info.NSrc)
	mo := j.full.cfg.modeling
	err := j.full.eachShot(ctx, KindJacobian, func(ctx context.Context, i int, sm *shotModel, src, rec geometry.Shot) error {
		var res []float32
		var err error
		if lin != nil {
			res, err = lin.LinearizedGradient(ctx, sm.sub, src, rec, j.q.Data[i], r.Data[i], mo.ISIC, mo.Frequencies)
		} else {
			res, err = j.full.solver.Gradient(ctx, sm.sub, src, rec, j.q.Data[i], r.Data[i])
		}
		if err != nil {
			return err
		}
		if len(res) != sm.sub.N() {
			return fmt.Errorf("%w: solver returned %d cells, want %d", ErrShapeMismatch, len(res), sm.sub.N())
		}
		parts[i], windows[i] = res, sm
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Summing in shot order keeps the result independent of scheduling.
	img := vector.NewImage(j.full.model.Shape)
	for i, part := range parts {
		windows[i].addTo(img.Data, part)
	}
	return img, nil
}
