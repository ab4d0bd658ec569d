package model

import (
	"fmt"
	"math"
	"slices"
)

// DefaultNBPML is the absorbing boundary width in cells.
const DefaultNBPML = 40

// Model describes a gridded acoustic medium.
//
// Treat every field as read-only after New returns.
type Model struct {
	// Shape is the number of cells per axis (x[, y], z).
	Shape []int
	// Spacing is the cell size per axis in metres.
	Spacing []float64
	// Origin is the physical position of cell 0 per axis in metres.
	Origin []float64
	// M is squared slowness in s²/km², one entry per cell.
	M []float32
	// Rho is density, one entry per cell. Nil for constant density.
	Rho []float32
	// NBPML is the absorbing layer width in cells.
	NBPML int
}

// Option configures optional model fields.
type Option func(*Model)

// WithDensity attaches a density field.
func WithDensity(rho []float32) Option {
	return func(m *Model) {
		m.Rho = rho
	}
}

// WithNBPML overrides the absorbing layer width.
func WithNBPML(n int) Option {
	return func(m *Model) {
		m.NBPML = n
	}
}

// New validates and builds a model. Slices are copied.
func New(shape []int, spacing, origin []float64, m []float32, optFns ...Option) (*Model, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return nil, fmt.Errorf("%w: %d dimensions", ErrInvalidShape, len(shape))
	}
	if len(spacing) != len(shape) || len(origin) != len(shape) {
		return nil, fmt.Errorf("%w: spacing/origin must have %d entries", ErrInvalidShape, len(shape))
	}
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidShape, shape)
		}
		n *= s
	}
	for _, d := range spacing {
		if !(d > 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSpacing, spacing)
		}
	}
	if len(m) != n {
		return nil, fmt.Errorf("%w: m has %d entries, grid has %d", ErrFieldSize, len(m), n)
	}

	mod := &Model{
		Shape:   slices.Clone(shape),
		Spacing: slices.Clone(spacing),
		Origin:  slices.Clone(origin),
		M:       slices.Clone(m),
		NBPML:   DefaultNBPML,
	}
	for _, fn := range optFns {
		fn(mod)
	}
	if mod.Rho != nil {
		if len(mod.Rho) != n {
			return nil, fmt.Errorf("%w: rho has %d entries, grid has %d", ErrFieldSize, len(mod.Rho), n)
		}
		mod.Rho = slices.Clone(mod.Rho)
	}
	if mod.NBPML < 0 {
		mod.NBPML = 0
	}
	return mod, nil
}

// FromVelocity builds a model from a velocity field in km/s.
func FromVelocity(shape []int, spacing, origin []float64, vp []float32, optFns ...Option) (*Model, error) {
	m := make([]float32, len(vp))
	for i, v := range vp {
		if v <= 0 {
			return nil, fmt.Errorf("model: non-positive velocity %g at cell %d", v, i)
		}
		m[i] = 1 / (v * v)
	}
	return New(shape, spacing, origin, m, optFns...)
}

// Layered builds a model of horizontal layers. tops holds the depth in
// metres where each layer starts (first entry is usually 0) and vp its
// velocity in km/s.
func Layered(shape []int, spacing, origin []float64, tops []float64, vp []float32, optFns ...Option) (*Model, error) {
	if len(tops) == 0 || len(tops) != len(vp) {
		return nil, fmt.Errorf("model: %d layer tops for %d velocities", len(tops), len(vp))
	}
	if len(shape) != 2 && len(shape) != 3 {
		return nil, fmt.Errorf("%w: %d dimensions", ErrInvalidShape, len(shape))
	}
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidShape, shape)
		}
		n *= s
	}
	if len(spacing) != len(shape) || len(origin) != len(shape) {
		return nil, fmt.Errorf("%w: spacing/origin must have %d entries", ErrInvalidShape, len(shape))
	}

	zAxis := len(shape) - 1
	plane := n / shape[zAxis]
	field := make([]float32, n)
	for iz := 0; iz < shape[zAxis]; iz++ {
		depth := origin[zAxis] + float64(iz)*spacing[zAxis]
		v := vp[0]
		for l, top := range tops {
			if depth >= top {
				v = vp[l]
			}
		}
		for k := 0; k < plane; k++ {
			field[iz*plane+k] = v
		}
	}
	return FromVelocity(shape, spacing, origin, field, optFns...)
}

// N returns the number of grid cells.
func (m *Model) N() int {
	n := 1
	for _, s := range m.Shape {
		n *= s
	}
	return n
}

// Dims returns 2 or 3.
func (m *Model) Dims() int { return len(m.Shape) }

// Index returns the flat index of the given cell coordinates.
func (m *Model) Index(idx ...int) int {
	flat, stride := 0, 1
	for a, i := range idx {
		flat += i * stride
		stride *= m.Shape[a]
	}
	return flat
}

// Grid returns the grid description of m. Slices are shared.
func (m *Model) Grid() Grid {
	return Grid{Shape: m.Shape, Spacing: m.Spacing, Origin: m.Origin}
}

// Fractional maps a physical point to fractional grid indices, one per
// axis. For 2-D models y is ignored.
func (m *Model) Fractional(x, y, z float64) []float64 {
	return m.Grid().Fractional(x, y, z)
}

// Position returns the physical centre of a flat cell index as (x, y, z).
func (m *Model) Position(flat int) (x, y, z float64) {
	return m.Grid().Position(flat)
}

// MaxVelocity returns the largest velocity in km/s.
func (m *Model) MaxVelocity() float64 {
	minM := float32(math.MaxFloat32)
	for _, v := range m.M {
		if v > 0 && v < minM {
			minM = v
		}
	}
	if minM == math.MaxFloat32 {
		return 0
	}
	return 1 / math.Sqrt(float64(minM))
}

// CriticalDt returns the CFL-stable time step in ms for a second order in
// time scheme.
func (m *Model) CriticalDt() float64 {
	vmax := m.MaxVelocity()
	if vmax == 0 {
		return math.Inf(1)
	}
	coeff := 0.38
	if m.Dims() == 3 {
		coeff = 0.42
	}
	return coeff * slices.Min(m.Spacing) / vmax
}

// Sub returns the model restricted to a window. The window origin becomes
// the new model origin.
func (m *Model) Sub(w Window) (*Model, error) {
	if err := w.validate(m); err != nil {
		return nil, err
	}
	origin := make([]float64, m.Dims())
	for a := range origin {
		origin[a] = m.Origin[a] + float64(w.Lo[a])*m.Spacing[a]
	}
	var optFns []Option
	optFns = append(optFns, WithNBPML(m.NBPML))
	if m.Rho != nil {
		optFns = append(optFns, WithDensity(w.Extract(m, m.Rho)))
	}
	return New(w.Shape, m.Spacing, origin, w.Extract(m, m.M), optFns...)
}
