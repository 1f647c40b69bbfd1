package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

func TestCheckShape(t *testing.T) {
	m := mat.NewDense(2, 3, nil)

	assert.NoError(t, CheckShape(m, 2, 3))
	assert.ErrorIs(t, CheckShape(m, 3, 3), ErrBadShape)
	assert.ErrorIs(t, CheckShape(m, 2, 4), ErrBadShape)
	assert.ErrorIs(t, CheckShape(nil, 2, 3), ErrBadShape)
}

func TestCheckPositive(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.NoError(t, CheckPositive(m))

	m.Set(1, 0, 0)
	assert.ErrorIs(t, CheckPositive(m), ErrNonPositive)

	m.Set(1, 0, math.NaN())
	assert.ErrorIs(t, CheckPositive(m), ErrNonPositive)
}

func TestRawData(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	RawData(m)[3] = 5
	assert.Equal(t, 5.0, m.At(1, 1))

	view := mat.NewDense(3, 3, nil).Slice(0, 2, 0, 2).(*mat.Dense)
	assert.Panics(t, func() { RawData(view) })
}

func TestExpDigamma(t *testing.T) {
	dst := make([]float64, 2)
	ExpDigamma(dst, []float64{1, 2})

	// digamma(1) = -EulerGamma, digamma(2) = 1 - EulerGamma
	assert.InDelta(t, math.Exp(-0.5772156649015329), dst[0], 1e-12)
	assert.InDelta(t, math.Exp(1-0.5772156649015329), dst[1], 1e-12)

	assert.Panics(t, func() { ExpDigamma(dst, []float64{1}) })
}

func TestDirichletExpectation(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 3, 2, 2})
	e := DirichletExpectation(m)

	assert.InDelta(t, math.Exp(mathext.Digamma(1)-mathext.Digamma(4)), e.At(0, 0), 1e-12)
	assert.InDelta(t, math.Exp(mathext.Digamma(3)-mathext.Digamma(4)), e.At(0, 1), 1e-12)
	assert.InDelta(t, e.At(1, 0), e.At(1, 1), 1e-15)

	// exp(E[log beta]) never exceeds the mean of the Dirichlet
	assert.Less(t, e.At(0, 1), 0.75)
}

func TestBlend(t *testing.T) {
	anchor := mat.NewDense(1, 3, []float64{1, 2, 3})
	hat := mat.NewDense(1, 3, []float64{3, 2, 1})

	out := Blend(anchor, hat, 0.25)
	assert.Equal(t, []float64{1.5, 2, 2.5}, out.RawRowView(0))
	assert.Equal(t, []float64{1, 2, 3}, anchor.RawRowView(0))

	assert.Panics(t, func() { Blend(anchor, mat.NewDense(3, 1, nil), 0.5) })
}

func TestSquaredNorm(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, -2, 3, 0})
	require.Equal(t, 14.0, SquaredNorm(m))
}
