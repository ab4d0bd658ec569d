package geometry

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrCoordinates is returned when coordinate lists disagree in length.
	ErrCoordinates = errors.New("geometry: inconsistent coordinates")

	// ErrSampling is returned for non-positive dt or negative t.
	ErrSampling = errors.New("geometry: invalid sampling")

	// ErrIndexOutOfRange is returned when a shot index is outside [0, nsrc).
	ErrIndexOutOfRange = errors.New("geometry: shot index out of range")
)

// Shot is the geometry of one experiment.
type Shot struct {
	X, Y, Z []float64
	Dt      float64
	T       float64
	NT      int
}

// N returns the number of coordinates in the shot.
func (s Shot) N() int { return len(s.X) }

// Samples returns NT times the number of coordinates.
func (s Shot) Samples() int { return s.NT * len(s.X) }

// Geometry holds per-shot coordinates and sampling. Read-only once built.
type Geometry struct {
	X, Y, Z [][]float64
	Dt      []float64
	T       []float64
	NT      []int
}

// NumSamples returns floor(t/dt)+1.
func NumSamples(dt, t float64) int {
	return int(math.Floor(t/dt+1e-9)) + 1
}

// New builds a geometry for nsrc shots. A single coordinate set is
// broadcast to every shot; otherwise x, y and z must have nsrc entries.
func New(x, y, z [][]float64, dt, t float64, nsrc int) (*Geometry, error) {
	if nsrc <= 0 {
		nsrc = len(x)
	}
	dts := make([]float64, nsrc)
	ts := make([]float64, nsrc)
	for i := range nsrc {
		dts[i], ts[i] = dt, t
	}
	return NewPerShot(broadcast(x, nsrc), broadcast(y, nsrc), broadcast(z, nsrc), dts, ts)
}

// NewPerShot builds a geometry with explicit sampling per shot.
func NewPerShot(x, y, z [][]float64, dt, t []float64) (*Geometry, error) {
	nsrc := len(x)
	if nsrc == 0 {
		return nil, fmt.Errorf("%w: no shots", ErrCoordinates)
	}
	if len(y) != nsrc || len(z) != nsrc || len(dt) != nsrc || len(t) != nsrc {
		return nil, fmt.Errorf("%w: x=%d y=%d z=%d dt=%d t=%d shots",
			ErrCoordinates, nsrc, len(y), len(z), len(dt), len(t))
	}

	g := &Geometry{
		X:  make([][]float64, nsrc),
		Y:  make([][]float64, nsrc),
		Z:  make([][]float64, nsrc),
		Dt: slices.Clone(dt),
		T:  slices.Clone(t),
		NT: make([]int, nsrc),
	}
	for i := range nsrc {
		if len(x[i]) == 0 || len(y[i]) != len(x[i]) || len(z[i]) != len(x[i]) {
			return nil, fmt.Errorf("%w: shot %d has x=%d y=%d z=%d",
				ErrCoordinates, i, len(x[i]), len(y[i]), len(z[i]))
		}
		if !(dt[i] > 0) || t[i] < 0 {
			return nil, fmt.Errorf("%w: shot %d dt=%g t=%g", ErrSampling, i, dt[i], t[i])
		}
		g.X[i] = slices.Clone(x[i])
		g.Y[i] = slices.Clone(y[i])
		g.Z[i] = slices.Clone(z[i])
		g.NT[i] = NumSamples(dt[i], t[i])
	}
	return g, nil
}

// FromShots assembles a geometry from single-shot geometries.
func FromShots(shots ...Shot) (*Geometry, error) {
	x := make([][]float64, len(shots))
	y := make([][]float64, len(shots))
	z := make([][]float64, len(shots))
	dt := make([]float64, len(shots))
	t := make([]float64, len(shots))
	for i, s := range shots {
		x[i], y[i], z[i], dt[i], t[i] = s.X, s.Y, s.Z, s.Dt, s.T
	}
	return NewPerShot(x, y, z, dt, t)
}

func broadcast(c [][]float64, n int) [][]float64 {
	if len(c) != 1 || n == 1 {
		return c
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = c[0]
	}
	return out
}

// NSrc returns the number of shots.
func (g *Geometry) NSrc() int { return len(g.X) }

// Shot returns the geometry of shot i. The slices are shared.
func (g *Geometry) Shot(i int) Shot {
	return Shot{X: g.X[i], Y: g.Y[i], Z: g.Z[i], Dt: g.Dt[i], T: g.T[i], NT: g.NT[i]}
}

// Samples returns NT times the coordinate count of shot i.
func (g *Geometry) Samples(i int) int { return g.NT[i] * len(g.X[i]) }

// TotalSamples sums Samples over all shots.
func (g *Geometry) TotalSamples() int {
	total := 0
	for i := range g.X {
		total += g.Samples(i)
	}
	return total
}

// TotalNT sums NT over all shots.
func (g *Geometry) TotalNT() int {
	total := 0
	for _, nt := range g.NT {
		total += nt
	}
	return total
}

// CheckIndex validates shot indices against the geometry.
func (g *Geometry) CheckIndex(idx []int) error {
	return CheckIndex(g.NSrc(), idx)
}

// IndexError reports a shot index outside [0, NSrc). Index is -1 for an
// empty selection.
type IndexError struct {
	Index int
	NSrc  int
}

func (e *IndexError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("geometry: empty shot selection of %d shots", e.NSrc)
	}
	return fmt.Sprintf("geometry: shot index %d not in [0, %d)", e.Index, e.NSrc)
}

// Is matches ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// CheckIndex validates a non-empty selection of shots out of nsrc.
func CheckIndex(nsrc int, idx []int) error {
	if len(idx) == 0 {
		return &IndexError{Index: -1, NSrc: nsrc}
	}
	for _, i := range idx {
		if i < 0 || i >= nsrc {
			return &IndexError{Index: i, NSrc: nsrc}
		}
	}
	return nil
}

// Subset returns a geometry with the selected shots in the given order.
func (g *Geometry) Subset(idx []int) (*Geometry, error) {
	if err := g.CheckIndex(idx); err != nil {
		return nil, err
	}
	sub := &Geometry{
		X:  make([][]float64, len(idx)),
		Y:  make([][]float64, len(idx)),
		Z:  make([][]float64, len(idx)),
		Dt: make([]float64, len(idx)),
		T:  make([]float64, len(idx)),
		NT: make([]int, len(idx)),
	}
	for k, i := range idx {
		sub.X[k], sub.Y[k], sub.Z[k] = g.X[i], g.Y[i], g.Z[i]
		sub.Dt[k], sub.T[k], sub.NT[k] = g.Dt[i], g.T[i], g.NT[i]
	}
	return sub, nil
}

// Equal reports whether both geometries hold the same shots.
func (g *Geometry) Equal(o *Geometry) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil || g.NSrc() != o.NSrc() {
		return false
	}
	for i := range g.X {
		if !slices.Equal(g.X[i], o.X[i]) || !slices.Equal(g.Y[i], o.Y[i]) || !slices.Equal(g.Z[i], o.Z[i]) {
			return false
		}
	}
	return slices.Equal(g.Dt, o.Dt) && slices.Equal(g.T, o.T) && slices.Equal(g.NT, o.NT)
}

// SameSampling reports whether both geometries have identical per-shot
// time axes.
func (g *Geometry) SameSampling(o *Geometry) bool {
	return g.NSrc() == o.NSrc() && slices.Equal(g.Dt, o.Dt) && slices.Equal(g.NT, o.NT)
}
