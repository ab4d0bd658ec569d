package wavop

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// operators builds one operator of every kind on the small fixture.
func operators(t *testing.T, fx *fixture) map[string]Operator {
	t.Helper()
	info := NewInfo(fx.m, fx.src)
	pr, err := NewProjection(info, fx.rec)
	require.NoError(t, err)
	F, err := NewModeling(fx.m, info, kinematic())
	require.NoError(t, err)
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic())
	require.NoError(t, err)
	j, err := NewJacobian(full, fx.q)
	require.NoError(t, err)
	comp, err := Mul(pr, F)
	require.NoError(t, err)
	return map[string]Operator{
		"projection": pr,
		"modeling":   F,
		"full":       full,
		"jacobian":   j,
		"composite":  comp,
	}
}

func TestShapes(t *testing.T) {
	fx := smallFixture(t)
	for name, op := range operators(t, fx) {
		t.Run(name, func(t *testing.T) {
			s := op.Shape()
			assert.Equal(t, s, op.Conjugate().Shape())
			assert.Equal(t, s.T(), op.Transpose().Shape())
			assert.Equal(t, s.T(), op.Adjoint().Shape())
			assert.True(t, Equal(op, op.Conjugate()))
			assert.Same(t, op.Model(), op.Transpose().Model())
			assert.Equal(t, Float32, op.DType())
		})
	}
}

func TestAdjointRoundTrip(t *testing.T) {
	fx := smallFixture(t)
	for name, op := range operators(t, fx) {
		t.Run(name, func(t *testing.T) {
			back := op.Adjoint().Adjoint()
			assert.Equal(t, op.Shape(), back.Shape())
			assert.Equal(t, op.Kind(), back.Kind())
			assert.Same(t, op.Model(), back.Model())
			assert.True(t, Equal(op, back))
			if op.Kind() != KindComposite {
				assert.False(t, Equal(op, op.Adjoint()))
			}
		})
	}
}

func TestIndexScaling(t *testing.T) {
	fx := smallFixture(t)
	nt := fx.src.NT[0]
	nrec := len(fx.rec.X[0])
	n := fx.m.N()

	want := map[string]Shape{
		"projection": {Rows: nt * nrec, Cols: n * nt},
		"modeling":   {Rows: n * nt, Cols: n * nt},
		"full":       {Rows: nt * nrec, Cols: nt},
		"jacobian":   {Rows: nt * nrec, Cols: n},
		"composite":  {Rows: nt * nrec, Cols: n * nt},
	}
	for name, op := range operators(t, fx) {
		t.Run(name, func(t *testing.T) {
			one, err := Index(op, 1)
			require.NoError(t, err)
			assert.Equal(t, want[name], one.Shape())
			assert.Equal(t, 1, NSrc(one))
			assert.Same(t, op.Model(), one.Model())

			all, err := Slice(op, 0, NSrc(op))
			require.NoError(t, err)
			assert.True(t, Equal(op, all))

			_, err = Index(op, NSrc(op))
			var ie *IndexError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, NSrc(op), ie.Index)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)

			_, err = Index(op, -1)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)
			_, err = Slice(op, 1, 1)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)
		})
	}
}

func TestComposeConvenience(t *testing.T) {
	fx := smallFixture(t)
	s := kinematic()
	info := NewInfo(fx.m, fx.src)
	pr, err := NewProjection(info, fx.rec)
	require.NoError(t, err)
	ps, err := NewProjection(info, fx.src)
	require.NoError(t, err)
	F, err := NewModeling(fx.m, info, s)
	require.NoError(t, err)

	full, err := NewFullModeling(fx.m, fx.src, fx.rec, s)
	require.NoError(t, err)

	composed, err := Mul(pr, F, ps.Transpose())
	require.NoError(t, err)
	assert.Equal(t, KindFullForward, composed.Kind())
	assert.True(t, Equal(full, composed))

	mirrored, err := Mul(ps, F.Transpose(), pr.Transpose())
	require.NoError(t, err)
	assert.Equal(t, KindFullAdjoint, mirrored.Kind())
	assert.True(t, Equal(full.Adjoint(), mirrored))

	fm := composed.(*FullModeling)
	assert.True(t, fm.SrcGeometry().Equal(fx.src))
	assert.True(t, fm.RecGeometry().Equal(fx.rec))
	adj := mirrored.(*FullModeling)
	assert.True(t, adj.SrcGeometry().Equal(fx.src))
	assert.True(t, adj.DomainGeometry().Equal(fx.rec))
	assert.True(t, adj.RangeGeometry().Equal(fx.src))

	// Composition applies the same way as the convenience operator.
	ctx := context.Background()
	d1, err := full.Apply(ctx, fx.q)
	require.NoError(t, err)
	d2, err := composed.Apply(ctx, fx.q)
	require.NoError(t, err)
	assert.Equal(t, d1.(*vector.Vector).Data, d2.(*vector.Vector).Data)
}

func TestComposeShapeMismatch(t *testing.T) {
	fx := smallFixture(t)
	info := NewInfo(fx.m, fx.src)
	pr, err := NewProjection(info, fx.rec)
	require.NoError(t, err)

	_, err = Mul(pr, pr)
	var se *ShapeMismatchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, pr.Shape(), se.Left)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Mul()
	assert.Error(t, err)
}

func TestCompositeApply(t *testing.T) {
	fx := smallFixture(t)
	info := NewInfo(fx.m, fx.src)
	pr, err := NewProjection(info, fx.rec)
	require.NoError(t, err)
	F, err := NewModeling(fx.m, info, kinematic())
	require.NoError(t, err)

	op, err := Mul(pr, F)
	require.NoError(t, err)
	assert.Equal(t, KindComposite, op.Kind())
	assert.Len(t, op.(*Composite).Factors(), 2)
	assert.Same(t, info, op.Info())

	ctx := context.Background()
	u := vector.NewWavefield(info.N, info.NT, info.Dt)
	u.Snapshot(0, 0)[fx.m.Index(5, 1)] = 1

	direct, err := F.Apply(ctx, u)
	require.NoError(t, err)
	want, err := pr.Apply(ctx, direct)
	require.NoError(t, err)
	got, err := op.Apply(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, want.(*vector.Vector).Data, got.(*vector.Vector).Data)

	sub, err := Index(op, 0)
	require.NoError(t, err)
	assert.Equal(t, KindComposite, sub.Kind())
}

func TestApplyOperandErrors(t *testing.T) {
	fx := smallFixture(t)
	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic())
	require.NoError(t, err)
	ctx := context.Background()

	one, err := fx.q.Subset([]int{0})
	require.NoError(t, err)
	_, err = full.Apply(ctx, one)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = full.Apply(ctx, vector.NewImage([]int{fx.src.TotalSamples()}))
	assert.ErrorIs(t, err, ErrOperandType)

	_, err = full.Apply(ctx, nil)
	assert.ErrorIs(t, err, ErrOperandType)
}

func TestModelingNeedsPropagator(t *testing.T) {
	fx := smallFixture(t)
	info := NewInfo(fx.m, fx.src)
	F, err := NewModeling(fx.m, info, &mockSolver{})
	require.NoError(t, err)

	_, err = F.Apply(context.Background(), vector.NewWavefield(info.N, info.NT, info.Dt))
	assert.ErrorIs(t, err, ErrUnsupported)

	F, err = NewModeling(fx.m, info, nil)
	require.NoError(t, err)
	_, err = F.Apply(context.Background(), vector.NewWavefield(info.N, info.NT, info.Dt))
	assert.ErrorIs(t, err, ErrNoSolver)
}

func TestSubsampleIdentity(t *testing.T) {
	fx := smallFixture(t)
	d, err := Subsample(fx.q, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, fx.q.Data, d.Data)
	assert.True(t, d.Geometry.Equal(fx.q.Geometry))

	full, err := NewFullModeling(fx.m, fx.src, fx.rec, kinematic())
	require.NoError(t, err)
	op, err := Subsample[Operator](full, []int{0, 1})
	require.NoError(t, err)
	assert.True(t, Equal(full, op))

	_, err = Subsample(fx.q, []int{2})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	var ie *IndexError
	assert.True(t, errors.As(err, &ie))

	_, err = Subsample(fx.q, []int{0, 5})
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 5, ie.Index)
	assert.Equal(t, 2, ie.NSrc)
	assert.EqualError(t, err, "shot index 5 out of range [0, 2)")

	_, err = Subsample(fx.q, nil)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, -1, ie.Index)
	assert.Equal(t, 2, ie.NSrc)
}

func TestGeometryMismatch(t *testing.T) {
	fx := smallFixture(t)
	other, err := geometry.New(fx.rec.X[:1], fx.rec.Y[:1], fx.rec.Z[:1], 2, 150, 2)
	require.NoError(t, err)

	_, err = NewFullModeling(fx.m, fx.src, other, kinematic())
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewProjection(NewInfo(fx.m, fx.src), other)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "full-adjoint", KindFullAdjoint.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
	assert.Equal(t, "(2, 3)", Shape{Rows: 2, Cols: 3}.String())
}
