package wavop

import (
	"context"
	"errors"
	"slices"

	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// Composite is a lazy product of operators. Factors are stored left to
// right and applied right to left.
type Composite struct {
	factors []Operator
}

// Compose returns a*b. It fails with a *ShapeMismatchError unless
// a.Cols == b.Rows. Nested products are flattened, and the factor chains
// Pr*F*Ps^T and Ps*F^T*Pr^T collapse into the matching FullModeling
// operator.
func Compose(a, b Operator) (Operator, error) {
	if a == nil || b == nil {
		return nil, errors.New("wavop: compose with nil operator")
	}
	if a.Shape().Cols != b.Shape().Rows {
		return nil, &ShapeMismatchError{Op: "compose", Left: a.Shape(), Right: b.Shape()}
	}
	factors := slices.Concat(flatten(a), flatten(b))
	if f := collapse(factors); f != nil {
		return f, nil
	}
	return &Composite{factors: factors}, nil
}

// Mul composes ops left to right: Mul(a, b, c) is a*b*c.
func Mul(ops ...Operator) (Operator, error) {
	if len(ops) == 0 {
		return nil, errors.New("wavop: empty product")
	}
	out := ops[0]
	for _, op := range ops[1:] {
		var err error
		if out, err = Compose(out, op); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flatten(op Operator) []Operator {
	if c, ok := op.(*Composite); ok {
		return slices.Clone(c.factors)
	}
	return []Operator{op}
}

// collapse recognizes the three-factor modeling chains.
func collapse(factors []Operator) *FullModeling {
	if len(factors) != 3 {
		return nil
	}
	left, ok1 := factors[0].(*Projection)
	mid, ok2 := factors[1].(*Modeling)
	right, ok3 := factors[2].(*Projection)
	if !ok1 || !ok2 || !ok3 || left.transposed || !right.transposed {
		return nil
	}

	var src, rec *Projection
	switch mid.kind {
	case KindModeling:
		rec, src = left, right
	case KindModelingAdjoint:
		src, rec = left, right
	default:
		return nil
	}
	if !src.info.Equal(mid.info) || !rec.info.Equal(mid.info) {
		return nil
	}
	f, err := newFullModeling(mid.model, mid.info, src.geom, rec.geom, mid.solver, mid.cfg)
	if err != nil {
		return nil
	}
	f.adjoint = mid.kind == KindModelingAdjoint
	return f
}

// Factors returns the factors left to right.
func (c *Composite) Factors() []Operator { return slices.Clone(c.factors) }

func (c *Composite) Kind() Kind   { return KindComposite }
func (c *Composite) DType() DType { return Float32 }

// Transposed is false: the transpose of a product is the reversed product
// of transposed factors.
func (c *Composite) Transposed() bool { return false }

func (c *Composite) Shape() Shape {
	return Shape{Rows: c.factors[0].Shape().Rows, Cols: c.factors[len(c.factors)-1].Shape().Cols}
}

func (c *Composite) Info() *Info {
	for _, f := range c.factors {
		if info := f.Info(); info != nil {
			return info
		}
	}
	return nil
}

func (c *Composite) Model() *model.Model {
	for _, f := range c.factors {
		if m := f.Model(); m != nil {
			return m
		}
	}
	return nil
}

func (c *Composite) Transpose() Operator {
	out := make([]Operator, len(c.factors))
	for i, f := range c.factors {
		out[len(c.factors)-1-i] = f.Transpose()
	}
	return &Composite{factors: out}
}

func (c *Composite) Conjugate() Operator {
	out := make([]Operator, len(c.factors))
	for i, f := range c.factors {
		out[i] = f.Conjugate()
	}
	return &Composite{factors: out}
}

func (c *Composite) Adjoint() Operator { return c.Transpose().Conjugate() }

func (c *Composite) Subset(shots []int) (Operator, error) {
	out := make([]Operator, len(c.factors))
	for i, f := range c.factors {
		sub, err := f.Subset(shots)
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return &Composite{factors: out}, nil
}

// Apply evaluates the factors right to left.
func (c *Composite) Apply(ctx context.Context, x vector.Operand) (vector.Operand, error) {
	if err := checkOperand(c, x); err != nil {
		return nil, err
	}
	out := x
	for i := len(c.factors) - 1; i >= 0; i-- {
		var err error
		if out, err = c.factors[i].Apply(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
