package wavop

import (
	"context"
	"testing"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
	"github.com/hupe1980/wavop/wavelet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two shots over a 120 x 100 two-layer model, 60 receivers, dt = 2 ms,
// t = 1000 ms.
func TestTwoShotScenario(t *testing.T) {
	ctx := context.Background()
	m, err := model.Layered([]int{120, 100}, []float64{10, 10}, []float64{0, 0},
		[]float64{0, 500}, []float32{1.5, 2.5})
	require.NoError(t, err)

	src, err := geometry.New(
		[][]float64{{400}, {800}},
		[][]float64{{0}, {0}},
		[][]float64{{20}, {20}},
		2, 1000, 2,
	)
	require.NoError(t, err)

	xrec := make([]float64, 60)
	for i := range xrec {
		xrec[i] = float64(i) * 20
	}
	rec, err := geometry.New([][]float64{xrec}, [][]float64{constant(60, 0)}, [][]float64{constant(60, 10)}, 2, 1000, 2)
	require.NoError(t, err)
	require.Equal(t, []int{501, 501}, rec.NT)

	w := wavelet.Ricker(1000, 2, 0.01)
	q, err := vector.New(src, [][]float32{w, w})
	require.NoError(t, err)

	info := NewInfo(m, src)
	pr, err := NewProjection(info, rec)
	require.NoError(t, err)
	ps, err := NewProjection(info, src)
	require.NoError(t, err)
	F, err := NewModeling(m, info, kinematic())
	require.NoError(t, err)

	assert.Equal(t, Shape{Rows: 2 * 501 * 60, Cols: 12000 * 1002}, pr.Shape())
	assert.Equal(t, Shape{Rows: 12000 * 1002, Cols: 12000 * 1002}, F.Shape())

	full, err := Mul(pr, F, ps.Transpose())
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 60120, Cols: 1002}, full.Shape())

	d, err := full.Apply(ctx, q)
	require.NoError(t, err)
	dv := d.(*vector.Vector)
	assert.Equal(t, 60120, dv.Len())
	assert.Greater(t, dv.Norm(), 0.0)

	back, err := full.Adjoint().Apply(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1002, back.Len())

	f0, err := Index(full, 0)
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 30060, Cols: 501}, f0.Shape())

	j, err := NewJacobian(full.(*FullModeling), q)
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 60120, Cols: 12000}, j.Shape())
	j1, err := Index(j, 1)
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 30060, Cols: 12000}, j1.Shape())
	assert.Same(t, m, j1.Model())

	dm := vector.NewImage(m.Shape)
	// A point perturbation between the first source and the receivers.
	dm.Data[m.Index(50, 1)] = 0.1
	dd, err := j.Apply(ctx, dm)
	require.NoError(t, err)
	assert.Equal(t, 60120, dd.Len())
	assert.Greater(t, dd.(*vector.Vector).Norm(), 0.0)

	g, err := j.Adjoint().Apply(ctx, dd)
	require.NoError(t, err)
	assert.Equal(t, 12000, g.Len())
	img, ok := g.(*vector.Image)
	require.True(t, ok)
	assert.Equal(t, m.Shape, img.Shape)
	assert.Greater(t, img.Norm(), 0.0)
}
