package wavop

import (
	"slices"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
)

// Info is the per-shot bookkeeping shared by operators built on the same
// model and geometry.
type Info struct {
	// N is the number of grid cells.
	N    int
	NSrc int
	// NT is the number of time steps per shot.
	NT []int
	// Dt is the time step per shot in ms.
	Dt   []float64
	Grid model.Grid
}

// NewInfo derives Info from a model and the geometry that drives it.
func NewInfo(m *model.Model, g *geometry.Geometry) *Info {
	return &Info{
		N:    m.N(),
		NSrc: g.NSrc(),
		NT:   slices.Clone(g.NT),
		Dt:   slices.Clone(g.Dt),
		Grid: m.Grid(),
	}
}

// TotalNT returns the sum of NT over all shots.
func (i *Info) TotalNT() int {
	total := 0
	for _, nt := range i.NT {
		total += nt
	}
	return total
}

// Subset returns the Info of the selected shots.
func (i *Info) Subset(idx []int) (*Info, error) {
	if err := checkShots(i.NSrc, idx); err != nil {
		return nil, err
	}
	sub := &Info{N: i.N, NSrc: len(idx), NT: make([]int, len(idx)), Dt: make([]float64, len(idx)), Grid: i.Grid}
	for k, s := range idx {
		sub.NT[k], sub.Dt[k] = i.NT[s], i.Dt[s]
	}
	return sub, nil
}

// Equal reports whether both describe the same grid and sampling.
func (i *Info) Equal(o *Info) bool {
	if i == o {
		return true
	}
	if i == nil || o == nil {
		return false
	}
	return i.N == o.N && i.NSrc == o.NSrc &&
		slices.Equal(i.NT, o.NT) && slices.Equal(i.Dt, o.Dt) && i.Grid.Equal(o.Grid)
}

// matches reports whether g has the shots and sampling of i.
func (i *Info) matches(g *geometry.Geometry) bool {
	return g.NSrc() == i.NSrc && slices.Equal(g.NT, i.NT)
}
