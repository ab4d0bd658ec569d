package wavop

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotProjection(t *testing.T) {
	fx := smallFixture(t)
	r := rand.New(rand.NewPCG(1, 1))
	info := NewInfo(fx.m, fx.rec)
	pr, err := NewProjection(info, fx.rec)
	require.NoError(t, err)

	dotTest(t, pr, randomWavefield(r, info), randomVector(r, fx.rec))
}

func TestDotModeling(t *testing.T) {
	fx := newFixture(t, 12, 10, 2, 3, 1, 40)
	r := rand.New(rand.NewPCG(2, 2))
	info := NewInfo(fx.m, fx.src)
	F, err := NewModeling(fx.m, info, kinematic())
	require.NoError(t, err)

	dotTest(t, F, randomWavefield(r, info), randomWavefield(r, info))
}

func TestDotFullModeling(t *testing.T) {
	fx := smallFixture(t)
	r := rand.New(rand.NewPCG(3, 3))
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic())
	require.NoError(t, err)

	dotTest(t, full, randomVector(r, fx.src), randomVector(r, fx.rec))
}

func TestDotFullModelingLimited(t *testing.T) {
	fx := smallFixture(t)
	r := rand.New(rand.NewPCG(4, 4))
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic(),
		WithModelingOptions(ModelingOptions{LimitM: true, BufferSize: 20}))
	require.NoError(t, err)

	dotTest(t, full, randomVector(r, fx.src), randomVector(r, fx.rec))
}

func TestDotJacobian(t *testing.T) {
	fx := smallFixture(t)
	r := rand.New(rand.NewPCG(5, 5))
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic())
	require.NoError(t, err)
	j, err := NewJacobian(full, fx.q)
	require.NoError(t, err)

	dotTest(t, j, randomImage(r, fx.m), randomVector(r, fx.rec))
}

// narrowFixture gives every shot a short receiver spread around its source
// so LimitM windows cover only part of the model.
func narrowFixture(t *testing.T) *fixture {
	t.Helper()
	fx := newFixture(t, 40, 12, 2, 4, 1, 120)
	xrec := make([][]float64, 2)
	for i := range xrec {
		xs := fx.src.X[i][0]
		xrec[i] = []float64{xs - 30, xs - 10, xs + 10, xs + 30}
	}
	rec, err := geometry.New(xrec, [][]float64{constant(4, 0)}, [][]float64{constant(4, 10)}, 1, 120, 2)
	require.NoError(t, err)
	fx.rec = rec
	return fx
}

func TestDotFullModelingNarrow(t *testing.T) {
	fx := narrowFixture(t)
	r := rand.New(rand.NewPCG(8, 8))
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic(),
		WithModelingOptions(ModelingOptions{LimitM: true, BufferSize: 20}))
	require.NoError(t, err)

	dotTest(t, full, randomVector(r, fx.src), randomVector(r, fx.rec))
}

func TestDotJacobianLimited(t *testing.T) {
	fx := narrowFixture(t)
	r := rand.New(rand.NewPCG(6, 6))
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic(),
		WithModelingOptions(ModelingOptions{LimitM: true, BufferSize: 20}))
	require.NoError(t, err)
	j, err := NewJacobian(full, fx.q)
	require.NoError(t, err)

	dotTest(t, j, randomImage(r, fx.m), randomVector(r, fx.rec))
}

func TestLimitMWindow(t *testing.T) {
	fx := narrowFixture(t)
	sm, err := limitModel(fx.m, ModelingOptions{LimitM: true, BufferSize: 20}, fx.src.Shot(0), fx.rec.Shot(0))
	require.NoError(t, err)
	assert.True(t, sm.limited())
	assert.Less(t, sm.sub.N(), fx.m.N())
	assert.Equal(t, fx.m.Shape[1], sm.sub.Shape[1])

	full, err := limitModel(fx.m, ModelingOptions{}, fx.src.Shot(0), fx.rec.Shot(0))
	require.NoError(t, err)
	assert.Same(t, fx.m, full.sub)

	// extract and addTo are transposes of each other.
	img := make([]float32, fx.m.N())
	for i := range img {
		img[i] = float32(i)
	}
	part := sm.extract(img)
	back := make([]float32, fx.m.N())
	sm.addTo(back, part)
	for i, v := range back {
		if v != 0 {
			assert.Equal(t, img[i], v)
		}
	}
}

func TestDotComposite(t *testing.T) {
	fx := newFixture(t, 12, 10, 2, 3, 1, 40)
	r := rand.New(rand.NewPCG(7, 7))
	info := NewInfo(fx.m, fx.src)
	pr, err := NewProjection(info, fx.rec)
	require.NoError(t, err)
	F, err := NewModeling(fx.m, info, kinematic())
	require.NoError(t, err)
	op, err := Mul(pr, F)
	require.NoError(t, err)

	dotTest(t, op, randomWavefield(r, info), randomVector(r, fx.rec))
}

func TestDotJacobianVariants(t *testing.T) {
	tests := []struct {
		name string
		mo   ModelingOptions
	}{
		{"ISIC", ModelingOptions{ISIC: true}},
		{"Frequencies", ModelingOptions{Frequencies: []float64{0.01, 0.02, 0.03}}},
		{"LimitedBoth", ModelingOptions{LimitM: true, BufferSize: 20, ISIC: true, Frequencies: []float64{0.015}}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := narrowFixture(t)
			r := rand.New(rand.NewPCG(11, uint64(i)))
			full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic(), WithModelingOptions(tt.mo))
			require.NoError(t, err)
			j, err := NewJacobian(full, fx.q)
			require.NoError(t, err)

			dm := randomImage(r, fx.m)
			dotTest(t, j, dm, randomVector(r, fx.rec))

			plainFull, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic())
			require.NoError(t, err)
			plain, err := NewJacobian(plainFull, fx.q)
			require.NoError(t, err)
			a, err := j.Apply(context.Background(), dm)
			require.NoError(t, err)
			b, err := plain.Apply(context.Background(), dm)
			require.NoError(t, err)
			assert.NotEqual(t, b.(*vector.Vector).Data, a.(*vector.Vector).Data)
		})
	}
}
