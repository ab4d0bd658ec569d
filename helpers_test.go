package wavop

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/solver"
	"github.com/hupe1980/wavop/vector"
	"github.com/hupe1980/wavop/wavelet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixture is a small two-layer experiment.
type fixture struct {
	m   *model.Model
	src *geometry.Geometry
	rec *geometry.Geometry
	q   *vector.Vector
}

func layeredModel(t *testing.T, nx, nz int) *model.Model {
	t.Helper()
	m, err := model.Layered(
		[]int{nx, nz},
		[]float64{10, 10},
		[]float64{0, 0},
		[]float64{0, float64(nz/2) * 10},
		[]float32{1.5, 2.0},
	)
	require.NoError(t, err)
	return m
}

func newFixture(t *testing.T, nx, nz, nsrc, nrec int, dt, tmax float64) *fixture {
	t.Helper()
	m := layeredModel(t, nx, nz)
	width := float64(nx-1) * 10

	xsrc := make([][]float64, nsrc)
	ysrc := make([][]float64, nsrc)
	zsrc := make([][]float64, nsrc)
	for i := range nsrc {
		xsrc[i] = []float64{width * float64(i+1) / float64(nsrc+1)}
		ysrc[i] = []float64{0}
		zsrc[i] = []float64{20}
	}
	src, err := geometry.New(xsrc, ysrc, zsrc, dt, tmax, nsrc)
	require.NoError(t, err)

	xrec := make([]float64, nrec)
	for r := range nrec {
		xrec[r] = width * float64(r) / float64(max(nrec-1, 1))
	}
	rec, err := geometry.New(
		[][]float64{xrec},
		[][]float64{make([]float64, nrec)},
		[][]float64{constant(nrec, 10)},
		dt, tmax, nsrc,
	)
	require.NoError(t, err)

	w := wavelet.Ricker(tmax, dt, 0.015)
	data := make([][]float32, nsrc)
	for i := range data {
		data[i] = append([]float32(nil), w...)
	}
	q, err := vector.New(src, data)
	require.NoError(t, err)

	return &fixture{m: m, src: src, rec: rec, q: q}
}

func smallFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, 20, 15, 2, 6, 1, 150)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func randomVector(r *rand.Rand, g *geometry.Geometry) *vector.Vector {
	v := vector.Zeros(g)
	for _, d := range v.Data {
		fill(r, d)
	}
	return v
}

func randomWavefield(r *rand.Rand, info *Info) *vector.Wavefield {
	u := vector.NewWavefield(info.N, info.NT, info.Dt)
	for _, d := range u.Data {
		fill(r, d)
	}
	return u
}

func randomImage(r *rand.Rand, m *model.Model) *vector.Image {
	img := vector.NewImage(m.Shape)
	fill(r, img.Data)
	return img
}

func fill(r *rand.Rand, d []float32) {
	for i := range d {
		d[i] = float32(r.NormFloat64())
	}
}

// inner returns the inner product of two operands of the same type.
func inner(t *testing.T, a, b vector.Operand) float64 {
	t.Helper()
	var (
		v   float64
		err error
	)
	switch x := a.(type) {
	case *vector.Vector:
		v, err = x.Dot(b.(*vector.Vector))
	case *vector.Wavefield:
		v, err = x.Dot(b.(*vector.Wavefield))
	case *vector.Image:
		v, err = x.Dot(b.(*vector.Image))
	default:
		t.Fatalf("unexpected operand %T", a)
	}
	require.NoError(t, err)
	return v
}

// dotTest checks <Ax, y> == <x, A'y>.
func dotTest(t *testing.T, op Operator, x, y vector.Operand) {
	t.Helper()
	ctx := context.Background()

	ax, err := op.Apply(ctx, x)
	require.NoError(t, err)
	aty, err := op.Adjoint().Apply(ctx, y)
	require.NoError(t, err)

	lhs, rhs := inner(t, ax, y), inner(t, x, aty)
	scale := math.Max(math.Abs(lhs), math.Abs(rhs))
	require.Greater(t, scale, 0.0)
	assert.InDelta(t, 0, (lhs-rhs)/scale, 1e-4, "<Ax,y>=%g <x,A'y>=%g", lhs, rhs)
}

func kinematic() Solver { return solver.NewKinematic() }

var (
	_ Solver     = (*solver.Kinematic)(nil)
	_ Linearizer = (*solver.Kinematic)(nil)
	_ Propagator = (*solver.Kinematic)(nil)
)

// mockSolver is a testify mock of Solver.
type mockSolver struct {
	mock.Mock
}

func samples(args mock.Arguments) ([]float32, error) {
	out, _ := args.Get(0).([]float32)
	return out, args.Error(1)
}

func (s *mockSolver) Forward(ctx context.Context, m *model.Model, src, rec geometry.Shot, q []float32) ([]float32, error) {
	return samples(s.Called(ctx, m, src, rec, q))
}

func (s *mockSolver) Adjoint(ctx context.Context, m *model.Model, src, rec geometry.Shot, d []float32) ([]float32, error) {
	return samples(s.Called(ctx, m, src, rec, d))
}

func (s *mockSolver) Born(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, dm []float32) ([]float32, error) {
	return samples(s.Called(ctx, m, src, rec, q, dm))
}

func (s *mockSolver) Gradient(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, res []float32) ([]float32, error) {
	return samples(s.Called(ctx, m, src, rec, q, res))
}
