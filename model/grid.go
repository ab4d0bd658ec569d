package model

import (
	"math"
	"slices"
)

// Grid is the geometric part of a model: extent, spacing and origin.
type Grid struct {
	Shape   []int
	Spacing []float64
	Origin  []float64
}

// N returns the number of cells.
func (g Grid) N() int {
	n := 1
	for _, s := range g.Shape {
		n *= s
	}
	return n
}

// Dims returns 2 or 3.
func (g Grid) Dims() int { return len(g.Shape) }

// Equal reports whether both grids describe the same cells.
func (g Grid) Equal(o Grid) bool {
	return slices.Equal(g.Shape, o.Shape) && slices.Equal(g.Spacing, o.Spacing) && slices.Equal(g.Origin, o.Origin)
}

// Fractional maps a physical point to fractional grid indices, one per
// axis. For 2-D grids y is ignored.
func (g Grid) Fractional(x, y, z float64) []float64 {
	if g.Dims() == 2 {
		return []float64{
			(x - g.Origin[0]) / g.Spacing[0],
			(z - g.Origin[1]) / g.Spacing[1],
		}
	}
	return []float64{
		(x - g.Origin[0]) / g.Spacing[0],
		(y - g.Origin[1]) / g.Spacing[1],
		(z - g.Origin[2]) / g.Spacing[2],
	}
}

// Position returns the physical position of a flat cell index as (x, y, z).
func (g Grid) Position(flat int) (x, y, z float64) {
	ix := flat % g.Shape[0]
	rest := flat / g.Shape[0]
	x = g.Origin[0] + float64(ix)*g.Spacing[0]
	if g.Dims() == 2 {
		z = g.Origin[1] + float64(rest)*g.Spacing[1]
		return x, 0, z
	}
	iy := rest % g.Shape[1]
	iz := rest / g.Shape[1]
	y = g.Origin[1] + float64(iy)*g.Spacing[1]
	z = g.Origin[2] + float64(iz)*g.Spacing[2]
	return x, y, z
}

// Nearest returns the flat index of the cell closest to a point, clamped
// to the grid.
func (g Grid) Nearest(x, y, z float64) int {
	f := g.Fractional(x, y, z)
	flat, stride := 0, 1
	for a, v := range f {
		i := min(max(int(math.Round(v)), 0), g.Shape[a]-1)
		flat += i * stride
		stride *= g.Shape[a]
	}
	return flat
}

// Interpolation returns the cells and multilinear weights of a point.
// Points outside the grid are clamped to the boundary. Weights sum to 1.
func (g Grid) Interpolation(x, y, z float64) ([]int, []float32) {
	f := g.Fractional(x, y, z)
	dims := len(f)
	lo := make([]int, dims)
	frac := make([]float64, dims)
	for a, v := range f {
		v = min(max(v, 0), float64(g.Shape[a]-1))
		i := int(math.Floor(v))
		if i >= g.Shape[a]-1 {
			i = max(g.Shape[a]-2, 0)
		}
		lo[a], frac[a] = i, v-float64(i)
	}

	corners := 1 << dims
	idx := make([]int, 0, corners)
	w := make([]float32, 0, corners)
	for c := range corners {
		flat, stride := 0, 1
		weight := 1.0
		for a := range dims {
			i := lo[a]
			if c&(1<<a) != 0 {
				i++
				weight *= frac[a]
			} else {
				weight *= 1 - frac[a]
			}
			if i >= g.Shape[a] {
				i = g.Shape[a] - 1
			}
			flat += i * stride
			stride *= g.Shape[a]
		}
		if weight == 0 {
			continue
		}
		idx = append(idx, flat)
		w = append(w, float32(weight))
	}
	return idx, w
}
