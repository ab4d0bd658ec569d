package vector

import "errors"

var (
	// ErrShapeMismatch is returned when two operands do not have the same
	// layout.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEmpty is returned when an operation needs at least one operand.
	ErrEmpty = errors.New("vector: no operands")
)

// Operand is anything an operator can be applied to.
type Operand interface {
	// Len returns the total number of samples.
	Len() int
}
