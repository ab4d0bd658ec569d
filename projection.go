package wavop

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

// Projection restricts full-domain wavefields to geometry coordinates.
// Its transpose injects traces into an otherwise empty wavefield.
type Projection struct {
	info       *Info
	geom       *geometry.Geometry
	transposed bool
	cfg        *config

	// interpolation stencils per shot and coordinate
	cells   [][][]int
	weights [][][]float32
}

// NewProjection builds the projection of info's grid onto geom. Both must
// have the same shots and per-shot sampling.
func NewProjection(info *Info, geom *geometry.Geometry, optFns ...Option) (*Projection, error) {
	cfg, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return newProjection(info, geom, cfg)
}

func newProjection(info *Info, geom *geometry.Geometry, cfg *config) (*Projection, error) {
	if !info.matches(geom) {
		return nil, fmt.Errorf("%w: geometry has %d shots with nt %v, info has %d with nt %v",
			ErrShapeMismatch, geom.NSrc(), geom.NT, info.NSrc, info.NT)
	}
	p := &Projection{
		info:    info,
		geom:    geom,
		cfg:     cfg,
		cells:   make([][][]int, geom.NSrc()),
		weights: make([][][]float32, geom.NSrc()),
	}
	for i := range geom.NSrc() {
		p.cells[i], p.weights[i] = stencils(info.Grid, geom.Shot(i))
	}
	return p, nil
}

func stencils(g model.Grid, s geometry.Shot) ([][]int, [][]float32) {
	cells := make([][]int, s.N())
	weights := make([][]float32, s.N())
	for r := range s.N() {
		cells[r], weights[r] = g.Interpolation(s.X[r], s.Y[r], s.Z[r])
	}
	return cells, weights
}

// Geometry returns the coordinates the operator projects onto.
func (p *Projection) Geometry() *geometry.Geometry { return p.geom }

func (p *Projection) Kind() Kind          { return KindProjection }
func (p *Projection) DType() DType        { return Float32 }
func (p *Projection) Transposed() bool    { return p.transposed }
func (p *Projection) Info() *Info         { return p.info }
func (p *Projection) Model() *model.Model { return nil }

// Shape is (Σ nt·nrec, N·Σ nt), swapped when transposed.
func (p *Projection) Shape() Shape {
	s := Shape{Rows: p.geom.TotalSamples(), Cols: p.info.N * p.info.TotalNT()}
	if p.transposed {
		return s.T()
	}
	return s
}

func (p *Projection) Transpose() Operator {
	out := *p
	out.transposed = !p.transposed
	return &out
}

func (p *Projection) Conjugate() Operator {
	out := *p
	return &out
}

func (p *Projection) Adjoint() Operator { return p.Transpose().Conjugate() }

func (p *Projection) Subset(shots []int) (Operator, error) {
	info, err := p.info.Subset(shots)
	if err != nil {
		return nil, err
	}
	geom, err := p.geom.Subset(shots)
	if err != nil {
		return nil, translateError(err)
	}
	out := *p
	out.info, out.geom = info, geom
	out.cells = make([][][]int, len(shots))
	out.weights = make([][][]float32, len(shots))
	for k, i := range shots {
		out.cells[k], out.weights[k] = p.cells[i], p.weights[i]
	}
	return &out, nil
}

// Apply restricts a *vector.Wavefield to a *vector.Vector, or injects a
// *vector.Vector into a *vector.Wavefield when transposed.
func (p *Projection) Apply(ctx context.Context, x vector.Operand) (out vector.Operand, err error) {
	start := time.Now()
	defer func() { p.cfg.observe(ctx, p.Kind(), p.info.NSrc, start, err) }()

	if err := checkOperand(p, x); err != nil {
		return nil, err
	}
	if p.transposed {
		d, ok := x.(*vector.Vector)
		if !ok {
			return nil, operandError(p, "*vector.Vector", x)
		}
		u, err := p.inject(d)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	u, ok := x.(*vector.Wavefield)
	if !ok {
		return nil, operandError(p, "*vector.Wavefield", x)
	}
	d, err := p.restrict(u)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Projection) restrict(u *vector.Wavefield) (*vector.Vector, error) {
	if u.N != p.info.N || u.NSrc() != p.info.NSrc {
		return nil, fmt.Errorf("%w: wavefield of %d cells x %d shots", ErrShapeMismatch, u.N, u.NSrc())
	}
	d := vector.Zeros(p.geom)
	for i := range p.geom.NSrc() {
		nt := p.geom.NT[i]
		for r := range p.cells[i] {
			trace := d.Data[i][r*nt : (r+1)*nt]
			cells, w := p.cells[i][r], p.weights[i][r]
			for t := range nt {
				snap := u.Snapshot(i, t)
				var v float32
				for k, c := range cells {
					v += w[k] * snap[c]
				}
				trace[t] = v
			}
		}
	}
	return d, nil
}

func (p *Projection) inject(d *vector.Vector) (*vector.Wavefield, error) {
	if d.NSrc() != p.info.NSrc {
		return nil, fmt.Errorf("%w: %d data shots for %d projection shots", ErrShapeMismatch, d.NSrc(), p.info.NSrc)
	}
	u := vector.NewWavefield(p.info.N, p.info.NT, p.info.Dt)
	for i := range p.geom.NSrc() {
		nt := p.geom.NT[i]
		if len(d.Data[i]) != p.geom.Samples(i) {
			return nil, fmt.Errorf("%w: shot %d has %d samples, geometry needs %d", ErrShapeMismatch, i, len(d.Data[i]), p.geom.Samples(i))
		}
		for r := range p.cells[i] {
			trace := d.Data[i][r*nt : (r+1)*nt]
			cells, w := p.cells[i][r], p.weights[i][r]
			for t, v := range trace {
				snap := u.Snapshot(i, t)
				for k, c := range cells {
					snap[c] += w[k] * v
				}
			}
		}
	}
	return u, nil
}
