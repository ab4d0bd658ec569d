package vector

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/internal/kernel"
)

// Vector is a set of per-shot trace gathers.
type Vector struct {
	Geometry *geometry.Geometry
	Data     [][]float32
}

// New wraps data for g. Each shot must have g.Samples(i) entries; the
// slices are not copied.
func New(g *geometry.Geometry, data [][]float32) (*Vector, error) {
	if g == nil {
		return nil, fmt.Errorf("vector: nil geometry")
	}
	if len(data) != g.NSrc() {
		return nil, fmt.Errorf("%w: %d shots of data for %d shots of geometry", ErrShapeMismatch, len(data), g.NSrc())
	}
	for i, d := range data {
		if len(d) != g.Samples(i) {
			return nil, fmt.Errorf("%w: shot %d has %d samples, geometry needs %d", ErrShapeMismatch, i, len(d), g.Samples(i))
		}
	}
	return &Vector{Geometry: g, Data: data}, nil
}

// Zeros returns an all-zero vector for g.
func Zeros(g *geometry.Geometry) *Vector {
	data := make([][]float32, g.NSrc())
	for i := range data {
		data[i] = make([]float32, g.Samples(i))
	}
	return &Vector{Geometry: g, Data: data}
}

// Len returns the total number of samples over all shots.
func (v *Vector) Len() int {
	n := 0
	for _, d := range v.Data {
		n += len(d)
	}
	return n
}

// NSrc returns the number of shots.
func (v *Vector) NSrc() int { return len(v.Data) }

// Trace returns trace r of shot i. The slice aliases the vector.
func (v *Vector) Trace(i, r int) []float32 {
	nt := v.Geometry.NT[i]
	return v.Data[i][r*nt : (r+1)*nt]
}

// Clone returns a deep copy sharing the geometry.
func (v *Vector) Clone() *Vector {
	data := make([][]float32, len(v.Data))
	for i, d := range v.Data {
		data[i] = slices.Clone(d)
	}
	return &Vector{Geometry: v.Geometry, Data: data}
}

func (v *Vector) compatible(o *Vector) error {
	if len(v.Data) != len(o.Data) {
		return fmt.Errorf("%w: %d vs %d shots", ErrShapeMismatch, len(v.Data), len(o.Data))
	}
	for i := range v.Data {
		if len(v.Data[i]) != len(o.Data[i]) {
			return fmt.Errorf("%w: shot %d has %d vs %d samples", ErrShapeMismatch, i, len(v.Data[i]), len(o.Data[i]))
		}
	}
	return nil
}

// Add returns v+o.
func (v *Vector) Add(o *Vector) (*Vector, error) {
	if err := v.compatible(o); err != nil {
		return nil, err
	}
	out := v.Clone()
	for i := range out.Data {
		kernel.Add(out.Data[i], v.Data[i], o.Data[i])
	}
	return out, nil
}

// Sub returns v-o.
func (v *Vector) Sub(o *Vector) (*Vector, error) {
	if err := v.compatible(o); err != nil {
		return nil, err
	}
	out := v.Clone()
	for i := range out.Data {
		kernel.Sub(out.Data[i], v.Data[i], o.Data[i])
	}
	return out, nil
}

// Scale returns a*v.
func (v *Vector) Scale(a float32) *Vector {
	out := v.Clone()
	for _, d := range out.Data {
		kernel.ScaleInPlace(d, a)
	}
	return out
}

// Dot returns the inner product over all shots.
func (v *Vector) Dot(o *Vector) (float64, error) {
	if err := v.compatible(o); err != nil {
		return 0, err
	}
	var sum float64
	for i := range v.Data {
		sum += kernel.Dot(v.Data[i], o.Data[i])
	}
	return sum, nil
}

// Norm returns the L2 norm over all shots.
func (v *Vector) Norm() float64 {
	var sum float64
	for _, d := range v.Data {
		sum += kernel.SquaredNorm(d)
	}
	return math.Sqrt(sum)
}

// Subset returns the selected shots in the given order. Data is shared.
func (v *Vector) Subset(idx []int) (*Vector, error) {
	g, err := v.Geometry.Subset(idx)
	if err != nil {
		return nil, err
	}
	data := make([][]float32, len(idx))
	for k, i := range idx {
		data[k] = v.Data[i]
	}
	return &Vector{Geometry: g, Data: data}, nil
}

// Cat concatenates the shots of several vectors into one.
func Cat(vs ...*Vector) (*Vector, error) {
	if len(vs) == 0 {
		return nil, ErrEmpty
	}
	var shots []geometry.Shot
	var data [][]float32
	for _, v := range vs {
		for i := range v.Data {
			shots = append(shots, v.Geometry.Shot(i))
			data = append(data, v.Data[i])
		}
	}
	g, err := geometry.FromShots(shots...)
	if err != nil {
		return nil, err
	}
	return &Vector{Geometry: g, Data: data}, nil
}
