package wavop

import (
	"errors"
	"fmt"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/vector"
)

var (
	// ErrShapeMismatch matches every shape incompatibility, including the
	// ones reported by the vector package.
	ErrShapeMismatch = vector.ErrShapeMismatch

	// ErrIndexOutOfRange matches every invalid shot index.
	ErrIndexOutOfRange = errors.New("shot index out of range")

	// ErrSolverFailure matches errors raised by the injected solver.
	ErrSolverFailure = errors.New("solver failure")

	// ErrUnsupported is returned when the solver lacks a capability an
	// operator needs (e.g. full-domain propagation).
	ErrUnsupported = errors.New("operation not supported by solver")

	// ErrOperandType is returned when Apply receives an operand of the
	// wrong kind (e.g. a Wavefield for a FullModeling operator).
	ErrOperandType = errors.New("unexpected operand type")

	// ErrNoSolver is returned when an operator needs a solver but was built
	// without one.
	ErrNoSolver = errors.New("no solver configured")
)

// ShapeMismatchError reports incompatible operand or operator shapes.
type ShapeMismatchError struct {
	Op    string
	Left  Shape
	Right Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch %v vs %v", e.Op, e.Left, e.Right)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// IndexError reports a shot index outside [0, NSrc).
type IndexError struct {
	Index int
	NSrc  int
	cause error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("shot index %d out of range [0, %d)", e.Index, e.NSrc)
}

// Is matches ErrIndexOutOfRange and the geometry sentinel.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange || target == geometry.ErrIndexOutOfRange
}

func (e *IndexError) Unwrap() error { return e.cause }

// SolverError wraps an error returned by the solver for one shot. The
// original error is reachable through errors.Unwrap and errors.As.
type SolverError struct {
	Kind  Kind
	Shot  int
	cause error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%s: shot %d: %v", e.Kind, e.Shot, e.cause)
}

// Is matches ErrSolverFailure.
func (e *SolverError) Is(target error) bool { return target == ErrSolverFailure }

func (e *SolverError) Unwrap() error { return e.cause }

func checkShots(nsrc int, idx []int) error {
	return translateError(geometry.CheckIndex(nsrc, idx))
}

// translateError normalizes errors from collaborator packages at the
// operator boundary.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var ie *IndexError
	if errors.As(err, &ie) {
		return err
	}
	var ge *geometry.IndexError
	if errors.As(err, &ge) {
		return &IndexError{Index: ge.Index, NSrc: ge.NSrc, cause: err}
	}
	if errors.Is(err, geometry.ErrIndexOutOfRange) {
		return &IndexError{Index: -1, cause: err}
	}
	return err
}
