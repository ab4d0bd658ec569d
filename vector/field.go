package vector

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/internal/kernel"
)

// Wavefield is a set of per-shot full-domain fields over time.
type Wavefield struct {
	// N is the number of grid cells per time step.
	N  int
	NT []int
	Dt []float64
	// Data holds one time-major field per shot.
	Data [][]float32
}

// NewWavefield returns a zero wavefield.
func NewWavefield(n int, nt []int, dt []float64) *Wavefield {
	data := make([][]float32, len(nt))
	for i := range data {
		data[i] = make([]float32, nt[i]*n)
	}
	return &Wavefield{N: n, NT: slices.Clone(nt), Dt: slices.Clone(dt), Data: data}
}

// Len returns the total number of samples.
func (w *Wavefield) Len() int {
	total := 0
	for _, d := range w.Data {
		total += len(d)
	}
	return total
}

// NSrc returns the number of shots.
func (w *Wavefield) NSrc() int { return len(w.Data) }

// Snapshot returns the field of shot i at time step t.
func (w *Wavefield) Snapshot(i, t int) []float32 {
	return w.Data[i][t*w.N : (t+1)*w.N]
}

// Subset returns the selected shots. Data is shared.
func (w *Wavefield) Subset(idx []int) (*Wavefield, error) {
	if err := geometry.CheckIndex(len(w.Data), idx); err != nil {
		return nil, err
	}
	sub := &Wavefield{N: w.N, NT: make([]int, len(idx)), Dt: make([]float64, len(idx)), Data: make([][]float32, len(idx))}
	for k, i := range idx {
		sub.NT[k], sub.Dt[k], sub.Data[k] = w.NT[i], w.Dt[i], w.Data[i]
	}
	return sub, nil
}

// Dot returns the inner product over all shots.
func (w *Wavefield) Dot(o *Wavefield) (float64, error) {
	if w.N != o.N || !slices.Equal(w.NT, o.NT) {
		return 0, fmt.Errorf("%w: wavefields differ in layout", ErrShapeMismatch)
	}
	var sum float64
	for i := range w.Data {
		sum += kernel.Dot(w.Data[i], o.Data[i])
	}
	return sum, nil
}

// Image is one value per model cell.
type Image struct {
	Shape []int
	Data  []float32
}

// NewImage returns a zero image with the given grid shape.
func NewImage(shape []int) *Image {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Image{Shape: slices.Clone(shape), Data: make([]float32, n)}
}

// ImageFrom wraps data without copying.
func ImageFrom(shape []int, data []float32) (*Image, error) {
	img := &Image{Shape: slices.Clone(shape)}
	n := 1
	for _, s := range shape {
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for grid %v", ErrShapeMismatch, len(data), shape)
	}
	img.Data = data
	return img, nil
}

// Len returns the number of cells.
func (m *Image) Len() int { return len(m.Data) }

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	return &Image{Shape: slices.Clone(m.Shape), Data: slices.Clone(m.Data)}
}

// Add returns m+o.
func (m *Image) Add(o *Image) (*Image, error) {
	if len(m.Data) != len(o.Data) {
		return nil, fmt.Errorf("%w: %d vs %d cells", ErrShapeMismatch, len(m.Data), len(o.Data))
	}
	out := m.Clone()
	kernel.Add(out.Data, m.Data, o.Data)
	return out, nil
}

// Scale returns a*m.
func (m *Image) Scale(a float32) *Image {
	out := m.Clone()
	kernel.ScaleInPlace(out.Data, a)
	return out
}

// Dot returns the inner product.
func (m *Image) Dot(o *Image) (float64, error) {
	if len(m.Data) != len(o.Data) {
		return 0, fmt.Errorf("%w: %d vs %d cells", ErrShapeMismatch, len(m.Data), len(o.Data))
	}
	return kernel.Dot(m.Data, o.Data), nil
}

// Norm returns the L2 norm.
func (m *Image) Norm() float64 {
	return math.Sqrt(kernel.SquaredNorm(m.Data))
}
