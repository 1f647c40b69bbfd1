package model

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/corpus"
)

const (
	testingK     = 2
	testingW     = 5
	testingD     = 10
	testingAlpha = 0.1
	testingEta   = 0.1
	testingSeed  = 1
)

// newTestingModel creates a model with 2 topics over 5 words, from a
// corpus of 10 documents
func newTestingModel(t *testing.T) *OnlineLDA {
	m, err := NewOnlineLDAWithSeed(testingW, testingK, testingD,
		testingAlpha, testingEta, testingSeed)
	require.NoError(t, err)
	return m
}

// the single document [(0, 3), (2, 1)]
func testingBatch() []corpus.Document {
	return []corpus.Document{
		{{WordId: 0, Count: 3}, {WordId: 2, Count: 1}},
	}
}

// two groups of documents over disjoint words
func testingBatches() []corpus.Document {
	return []corpus.Document{
		{{WordId: 0, Count: 3}, {WordId: 1, Count: 2}},
		{{WordId: 3, Count: 4}, {WordId: 4, Count: 1}},
		{{WordId: 0, Count: 1}, {WordId: 1, Count: 1}, {WordId: 2, Count: 2}},
		{{WordId: 3, Count: 2}, {WordId: 4, Count: 5}},
		{{WordId: 2, Count: 1}},
	}
}

func testingConfig(method Method) *Config {
	c := DefaultConfig()
	c.Method = method
	return c
}

// wordCounts totals the occurrences of every word in a batch
func wordCounts(docs []corpus.Document, numWords int) []float64 {
	counts := make([]float64, numWords)
	for _, doc := range docs {
		for _, wc := range doc {
			counts[wc.WordId] += float64(wc.Count)
		}
	}
	return counts
}

func columnSums(m *mat.Dense) []float64 {
	_, c := m.Dims()
	sums := make([]float64, c)
	for j := range sums {
		sums[j] = floats.Sum(mat.Col(nil, j, m))
	}
	return sums
}

func requirePositive(t *testing.T, m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i += 1 {
		require.Greater(t, floats.Min(m.RawRowView(i)), 0.)
	}
}
