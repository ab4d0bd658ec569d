package wavop

import (
	"context"
	"fmt"

	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// Kind identifies what an operator computes.
type Kind int

const (
	KindProjection Kind = iota
	KindModeling
	KindModelingAdjoint
	KindFullForward
	KindFullAdjoint
	KindJacobian
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindProjection:
		return "projection"
	case KindModeling:
		return "modeling"
	case KindModelingAdjoint:
		return "modeling-adjoint"
	case KindFullForward:
		return "full-forward"
	case KindFullAdjoint:
		return "full-adjoint"
	case KindJacobian:
		return "jacobian"
	case KindComposite:
		return "composite"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DType is the element type of an operator.
type DType int

const (
	Float32 DType = iota
)

func (d DType) String() string {
	if d == Float32 {
		return "float32"
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// Shape is the (rows, cols) size of an operator's matrix.
type Shape struct {
	Rows int
	Cols int
}

// T returns the transposed shape.
func (s Shape) T() Shape { return Shape{Rows: s.Cols, Cols: s.Rows} }

func (s Shape) String() string { return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols) }

// Operator is a lazy linear operator over per-shot operands.
//
// Operators are immutable descriptors: Transpose, Conjugate, Subset and
// composition return new values and never copy the model.
type Operator interface {
	Kind() Kind
	Shape() Shape
	DType() DType

	// Transposed reports whether the operator plays its transposed role.
	Transposed() bool
	Transpose() Operator
	Conjugate() Operator
	// Adjoint is Conjugate(Transpose()).
	Adjoint() Operator

	// Info returns the per-shot bookkeeping. Nil for operators without
	// shots.
	Info() *Info
	// Model returns the model pointer, or nil.
	Model() *model.Model

	// Subset restricts the operator to the given shots.
	Subset(shots []int) (Operator, error)

	Apply(ctx context.Context, x vector.Operand) (vector.Operand, error)
}

// NSrc returns the number of shots op acts on.
func NSrc(op Operator) int {
	if info := op.Info(); info != nil {
		return info.NSrc
	}
	return 0
}

// Index restricts op to shot i.
func Index(op Operator, i int) (Operator, error) {
	return op.Subset([]int{i})
}

// Slice restricts op to shots [i, j).
func Slice(op Operator, i, j int) (Operator, error) {
	n := NSrc(op)
	if i < 0 || i >= n {
		return nil, &IndexError{Index: i, NSrc: n}
	}
	if j <= i || j > n {
		return nil, &IndexError{Index: j, NSrc: n}
	}
	idx := make([]int, 0, j-i)
	for s := i; s < j; s++ {
		idx = append(idx, s)
	}
	return op.Subset(idx)
}

// Subsetter is anything that can be restricted to a shot subset.
type Subsetter[T any] interface {
	Subset(shots []int) (T, error)
}

// Subsample restricts x to the given shots without modifying it. It works
// on operators and vectors alike.
func Subsample[T Subsetter[T]](x T, shots []int) (T, error) {
	out, err := x.Subset(shots)
	return out, translateError(err)
}

// Equal reports whether a and b are the same operator: kind, shape,
// transposition role, model identity and geometry values.
func Equal(a, b Operator) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Shape() != b.Shape() || a.DType() != b.DType() ||
		a.Transposed() != b.Transposed() || a.Model() != b.Model() {
		return false
	}
	switch x := a.(type) {
	case *Projection:
		y, ok := b.(*Projection)
		return ok && x.info.Equal(y.info) && x.geom.Equal(y.geom)
	case *Modeling:
		y, ok := b.(*Modeling)
		return ok && x.info.Equal(y.info)
	case *FullModeling:
		y, ok := b.(*FullModeling)
		return ok && x.src.Equal(y.src) && x.rec.Equal(y.rec)
	case *Jacobian:
		y, ok := b.(*Jacobian)
		return ok && Equal(x.full, y.full) && x.q.Geometry.Equal(y.q.Geometry)
	case *Composite:
		y, ok := b.(*Composite)
		if !ok || len(x.factors) != len(y.factors) {
			return false
		}
		for i := range x.factors {
			if !Equal(x.factors[i], y.factors[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// checkOperand verifies the length of an operand against the column count.
func checkOperand(op Operator, x vector.Operand) error {
	if x == nil {
		return fmt.Errorf("%w: nil operand", ErrOperandType)
	}
	if x.Len() != op.Shape().Cols {
		return &ShapeMismatchError{
			Op:    op.Kind().String() + " apply",
			Left:  op.Shape(),
			Right: Shape{Rows: x.Len(), Cols: 1},
		}
	}
	return nil
}

func operandError(op Operator, want string, x vector.Operand) error {
	return fmt.Errorf("%w: %s wants %s, got %T", ErrOperandType, op.Kind(), want, x)
}
