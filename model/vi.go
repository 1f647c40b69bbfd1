package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/corpus"
	"github.com/vishalbelsare/trlda/matrix"
	"github.com/vishalbelsare/trlda/sampling"
)

const (
	// shape of the Gamma draws used for random initialisation
	initialShape = 100.
	// keeps the per-token normalizer away from zero
	normalizerEpsilon = 1e-100
)

func init() {
	Register(VI, variational{})
}

// variational implements mean-field variational inference of the
// per-document topic proportions, with the token-topic responsibilities
// represented implicitly through the per-token normalizers.
type variational struct{}

func (variational) InitLatents(numTopics, numDocs int, s *sampling.Sampler) *mat.Dense {
	return s.Gamma(numTopics, numDocs, initialShape)
}

func (variational) Infer(job *Job) (*mat.Dense, *mat.Dense, error) {
	if err := checkLatents(job); err != nil {
		return nil, nil, err
	}
	numTopics, numWords := job.Lambda.Dims()

	gamma := mat.DenseCopyOf(job.Latents)
	expPsiLambda := matrix.DirichletExpectation(job.Lambda)

	shards := shardDocuments(len(job.Docs), numWorkers(job.Config))
	accs := make([]*mat.Dense, len(shards))
	err := forEachShard(shards, func(i int, s shard) error {
		acc := mat.NewDense(numTopics, numWords, nil)
		data := matrix.RawData(acc)
		for d := s.begin; d < s.end; d += 1 {
			// every document owns its column of gamma
			gammaDoc := mat.Col(nil, d, gamma)
			res := inferDocumentVI(job.Docs[d], gammaDoc, expPsiLambda, job.Alpha, job.Config)
			gamma.SetCol(d, gammaDoc)

			for j, wc := range job.Docs[d] {
				scale := float64(wc.Count) / res.phiNorm[j]
				for k, v := range res.expPsiGamma {
					data[k*numWords+int(wc.WordId)] += scale * v
				}
			}
		}
		accs[i] = acc
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// finish computing the sufficient statistics
	sstats := sumStats(accs, numTopics, numWords)
	sstats.MulElem(sstats, expPsiLambda)

	return gamma, sstats, nil
}

type viResult struct {
	expPsiGamma []float64
	phiNorm     []float64 // one normalizer per distinct word
	iterations  int
	change      float64 // mean absolute change of gamma in the last iteration
}

// inferDocumentVI iterates the gamma update of one document in place
// until the mean absolute change drops below the threshold.
func inferDocumentVI(doc corpus.Document, gamma []float64,
	expPsiLambda *mat.Dense, alpha float64, c *Config) viResult {
	numTopics := len(gamma)

	// columns of exp(E[log beta]) for the words of this document
	betas := make([][]float64, len(doc))
	for j, wc := range doc {
		betas[j] = mat.Col(nil, int(wc.WordId), expPsiLambda)
	}

	res := viResult{
		expPsiGamma: make([]float64, numTopics),
		phiNorm:     make([]float64, len(doc)),
		change:      math.Inf(1),
	}
	matrix.ExpDigamma(res.expPsiGamma, gamma)
	normalize := func() {
		for j, beta := range betas {
			res.phiNorm[j] = floats.Dot(res.expPsiGamma, beta) + normalizerEpsilon
		}
	}
	normalize()

	lastGamma := make([]float64, numTopics)
	for it := 0; it < c.MaxIterInference; it += 1 {
		copy(lastGamma, gamma)

		for k := range gamma {
			gamma[k] = 0
		}
		for j, beta := range betas {
			floats.AddScaled(gamma, float64(doc[j].Count)/res.phiNorm[j], beta)
		}
		floats.Mul(gamma, res.expPsiGamma)
		floats.AddConst(alpha, gamma)

		matrix.ExpDigamma(res.expPsiGamma, gamma)
		normalize()

		res.iterations = it + 1
		res.change = floats.Distance(lastGamma, gamma, 1) / float64(numTopics)
		if res.change < c.Threshold {
			break
		}
	}
	return res
}
