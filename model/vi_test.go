package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/matrix"
)

func TestVariationalShapes(t *testing.T) {
	m := newTestingModel(t)
	docs := testingBatches()

	gamma, sstats, err := m.UpdateVariables(docs, testingConfig(VI))
	require.NoError(t, err)

	r, c := gamma.Dims()
	assert.Equal(t, testingK, r)
	assert.Equal(t, len(docs), c)
	requirePositive(t, gamma)

	r, c = sstats.Dims()
	assert.Equal(t, testingK, r)
	assert.Equal(t, testingW, c)
	assert.GreaterOrEqual(t, mat.Min(sstats), 0.)
}

func TestVariationalSufficientStatisticsCountEveryToken(t *testing.T) {
	m := newTestingModel(t)
	docs := testingBatches()

	_, sstats, err := m.UpdateVariables(docs, testingConfig(VI))
	require.NoError(t, err)

	// the responsibilities of every token sum to one over topics
	assert.InDeltaSlice(t, wordCounts(docs, testingW), columnSums(sstats), 1e-9)
}

func TestVariationalGammaSumsToAlphaPlusLength(t *testing.T) {
	m := newTestingModel(t)
	docs := testingBatches()

	gamma, _, err := m.UpdateVariables(docs, testingConfig(VI))
	require.NoError(t, err)

	for d, doc := range docs {
		want := testingK*testingAlpha + float64(doc.Occurrences())
		assert.InDelta(t, want, columnSums(gamma)[d], 1e-9)
	}
}

func TestVariationalDimensionMismatch(t *testing.T) {
	m := newTestingModel(t)
	before := m.Lambda()
	docs := testingBatch()

	latents := mat.NewDense(testingK+1, len(docs), nil)
	latents.Apply(func(_, _ int, _ float64) float64 { return 1 }, latents)

	_, _, err := m.UpdateVariablesWithLatents(docs, latents, testingConfig(VI))
	assert.ErrorIs(t, err, ErrDimension)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, _, err = m.UpdateVariablesWithLatents(docs, mat.NewDense(testingK, 2, nil), testingConfig(VI))
	assert.ErrorIs(t, err, ErrDimension)

	_, _, err = m.UpdateVariablesWithLatents(docs, nil, testingConfig(VI))
	assert.ErrorIs(t, err, ErrDimension)

	assert.True(t, mat.Equal(before, m.Lambda()))
	assert.Equal(t, 0, m.UpdateCounter())
}

func TestVariationalDoesNotModifyInputs(t *testing.T) {
	m := newTestingModel(t)
	docs := testingBatches()
	latents := m.sampler.Gamma(testingK, len(docs), initialShape)
	initial := mat.DenseCopyOf(latents)
	before := m.Lambda()

	_, _, err := m.UpdateVariablesWithLatents(docs, latents, testingConfig(VI))
	require.NoError(t, err)

	assert.True(t, mat.Equal(initial, latents))
	assert.True(t, mat.Equal(before, m.Lambda()))
}

func TestVariationalIndependentOfWorkers(t *testing.T) {
	m := newTestingModel(t)
	docs := testingBatches()
	latents := m.sampler.Gamma(testingK, len(docs), initialShape)

	single := testingConfig(VI)
	single.NumWorkers = 1
	gamma1, sstats1, err := m.UpdateVariablesWithLatents(docs, latents, single)
	require.NoError(t, err)

	many := testingConfig(VI)
	many.NumWorkers = 4
	gamma4, sstats4, err := m.UpdateVariablesWithLatents(docs, latents, many)
	require.NoError(t, err)

	assert.True(t, mat.Equal(gamma1, gamma4))
	assert.True(t, mat.EqualApprox(sstats1, sstats4, 1e-12))
}

func TestVariationalConvergence(t *testing.T) {
	m := newTestingModel(t)
	doc := testingBatches()[2]
	expPsiLambda := matrix.DirichletExpectation(m.lambda)

	run := func(threshold float64) viResult {
		c := testingConfig(VI)
		c.Threshold = threshold
		c.MaxIterInference = 1000
		gamma := []float64{1, 1}
		return inferDocumentVI(doc, gamma, expPsiLambda, testingAlpha, c)
	}

	loose := run(1e-2)
	tight := run(1e-8)

	assert.Less(t, loose.change, 1e-2)
	assert.Less(t, tight.change, 1e-8)
	assert.GreaterOrEqual(t, tight.iterations, loose.iterations)
	assert.LessOrEqual(t, tight.change, loose.change)
	assert.Less(t, tight.iterations, 1000)
}

func TestVariationalIterationCap(t *testing.T) {
	m := newTestingModel(t)
	expPsiLambda := matrix.DirichletExpectation(m.lambda)

	c := testingConfig(VI)
	c.Threshold = 0
	c.MaxIterInference = 3
	res := inferDocumentVI(testingBatch()[0], []float64{1, 1}, expPsiLambda, testingAlpha, c)
	assert.Equal(t, 3, res.iterations)

	c.MaxIterInference = 0
	gamma := []float64{2, 3}
	res = inferDocumentVI(testingBatch()[0], gamma, expPsiLambda, testingAlpha, c)
	assert.Equal(t, 0, res.iterations)
	assert.Equal(t, []float64{2, 3}, gamma)
}
