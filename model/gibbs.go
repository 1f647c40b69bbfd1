package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/corpus"
	"github.com/vishalbelsare/trlda/matrix"
	"github.com/vishalbelsare/trlda/sampling"
)

func init() {
	Register(Gibbs, gibbs{})
}

// gibbs approximates the per-document posteriors with collapsed Gibbs
// sampling of the topic of every word occurrence, given exp(E[log beta])
// as the topic-word weights.
type gibbs struct{}

func (gibbs) InitLatents(numTopics, numDocs int, s *sampling.Sampler) *mat.Dense {
	return s.DirichletMatrix(numTopics, numDocs)
}

func (gibbs) Infer(job *Job) (*mat.Dense, *mat.Dense, error) {
	if err := checkLatents(job); err != nil {
		return nil, nil, err
	}
	numTopics, numWords := job.Lambda.Dims()

	theta := mat.DenseCopyOf(job.Latents)
	expPsiLambda := matrix.DirichletExpectation(job.Lambda)
	unit := 1. / float64(job.Config.NumSamples)

	// seeds are drawn up front so the samples do not depend on how the
	// documents are spread over workers
	seeds := make([]uint64, len(job.Docs))
	for d := range seeds {
		seeds[d] = job.Sampler.Seed()
	}

	shards := shardDocuments(len(job.Docs), numWorkers(job.Config))
	accs := make([]*mat.Dense, len(shards))
	err := forEachShard(shards, func(i int, s shard) error {
		acc := mat.NewDense(numTopics, numWords, nil)
		data := matrix.RawData(acc)
		for d := s.begin; d < s.end; d += 1 {
			chain := newGibbsChain(job.Docs[d], expPsiLambda, job.Alpha,
				sampling.New(seeds[d]))
			chain.initialize(mat.Col(nil, d, theta))

			sweeps := job.Config.NumSamples + job.Config.BurnIn
			for it := 0; it < sweeps; it += 1 {
				chain.sweep()
				if it >= job.Config.BurnIn {
					chain.collect(data, numWords, unit)
				}
			}

			theta.SetCol(d, chain.sampler.Dirichlet(chain.counts))
		}
		accs[i] = acc
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return theta, sumStats(accs, numTopics, numWords), nil
}

// gibbsChain is the sampling state of one document
type gibbsChain struct {
	doc     corpus.Document
	betas   [][]float64 // exp(E[log beta]) column of every distinct word
	topics  [][]int     // topic of every occurrence, grouped by distinct word
	counts  []float64   // alpha plus the number of occurrences per topic
	weights []float64
	sampler *sampling.Sampler
}

func newGibbsChain(doc corpus.Document, expPsiLambda *mat.Dense,
	alpha float64, s *sampling.Sampler) *gibbsChain {
	numTopics, _ := expPsiLambda.Dims()
	c := &gibbsChain{
		doc:     doc,
		betas:   make([][]float64, len(doc)),
		topics:  make([][]int, len(doc)),
		counts:  make([]float64, numTopics),
		weights: make([]float64, numTopics),
		sampler: s,
	}
	for j, wc := range doc {
		c.betas[j] = mat.Col(nil, int(wc.WordId), expPsiLambda)
		c.topics[j] = make([]int, wc.Count)
	}
	floats.AddConst(alpha, c.counts)
	return c
}

// initialize draws every occurrence's topic conditioned on theta (blocked
// Gibbs step)
func (c *gibbsChain) initialize(theta []float64) {
	for j, beta := range c.betas {
		floats.MulTo(c.weights, beta, theta)
		for o := range c.topics[j] {
			t := c.sampler.Histogram(c.weights)
			c.topics[j][o] = t
			c.counts[t] += 1.
		}
	}
}

// sweep resamples the topic of every occurrence once
func (c *gibbsChain) sweep() {
	for j, beta := range c.betas {
		for o, t := range c.topics[j] {
			c.counts[t] -= 1.
			floats.MulTo(c.weights, beta, c.counts)
			t = c.sampler.Histogram(c.weights)
			c.topics[j][o] = t
			c.counts[t] += 1.
		}
	}
}

// collect adds the current assignments, weighted by unit, to a row-major
// numTopics x numWords accumulator
func (c *gibbsChain) collect(acc []float64, numWords int, unit float64) {
	for j, wc := range c.doc {
		for _, t := range c.topics[j] {
			acc[t*numWords+int(wc.WordId)] += unit
		}
	}
}
