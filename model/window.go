package model

import (
	"fmt"
	"math"
)

// Window is an axis-aligned block of cells: Lo is the first cell per axis
// and Shape the extent per axis.
type Window struct {
	Lo    []int
	Shape []int
}

// Full returns the window covering the whole grid.
func (m *Model) Full() Window {
	return Window{Lo: make([]int, m.Dims()), Shape: append([]int(nil), m.Shape...)}
}

// Window returns the block covering every point in xs/ys/zs laterally,
// padded by buffer metres on each side and clamped to the grid. The depth
// axis is never restricted.
func (m *Model) Window(xs, ys, zs []float64, buffer float64) Window {
	w := m.Full()
	if len(xs) == 0 {
		return w
	}
	lateral := m.Dims() - 1
	coords := [][]float64{xs, ys}
	for a := 0; a < lateral; a++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, c := range coords[a] {
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}
		if math.IsInf(lo, 0) {
			continue
		}
		first := int(math.Floor((lo - buffer - m.Origin[a]) / m.Spacing[a]))
		last := int(math.Ceil((hi + buffer - m.Origin[a]) / m.Spacing[a]))
		first = max(first, 0)
		last = min(last, m.Shape[a]-1)
		if last < first {
			continue
		}
		w.Lo[a] = first
		w.Shape[a] = last - first + 1
	}
	return w
}

// N returns the number of cells in the window.
func (w Window) N() int {
	n := 1
	for _, s := range w.Shape {
		n *= s
	}
	return n
}

func (w Window) validate(m *Model) error {
	if len(w.Lo) != m.Dims() || len(w.Shape) != m.Dims() {
		return fmt.Errorf("%w: %d-D window on %d-D grid", ErrInvalidWindow, len(w.Shape), m.Dims())
	}
	for a := range w.Lo {
		if w.Lo[a] < 0 || w.Shape[a] <= 0 || w.Lo[a]+w.Shape[a] > m.Shape[a] {
			return fmt.Errorf("%w: lo=%v shape=%v grid=%v", ErrInvalidWindow, w.Lo, w.Shape, m.Shape)
		}
	}
	return nil
}

// each calls fn with the flat index in the window and in the full grid.
func (w Window) each(m *Model, fn func(local, global int)) {
	local := 0
	if len(w.Shape) == 2 {
		for iz := 0; iz < w.Shape[1]; iz++ {
			for ix := 0; ix < w.Shape[0]; ix++ {
				fn(local, m.Index(w.Lo[0]+ix, w.Lo[1]+iz))
				local++
			}
		}
		return
	}
	for iz := 0; iz < w.Shape[2]; iz++ {
		for iy := 0; iy < w.Shape[1]; iy++ {
			for ix := 0; ix < w.Shape[0]; ix++ {
				fn(local, m.Index(w.Lo[0]+ix, w.Lo[1]+iy, w.Lo[2]+iz))
				local++
			}
		}
	}
}

// Extract copies the window out of a full-grid field of m.
func (w Window) Extract(m *Model, field []float32) []float32 {
	out := make([]float32, w.N())
	w.each(m, func(local, global int) {
		out[local] = field[global]
	})
	return out
}

// AddTo accumulates a window-sized field into a full-grid field of m.
func (w Window) AddTo(m *Model, dst, part []float32) {
	w.each(m, func(local, global int) {
		dst[global] += part[local]
	})
}
