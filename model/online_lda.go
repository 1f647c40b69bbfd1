package model

import (
	"fmt"
	"math"
	"time"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/corpus"
	"github.com/vishalbelsare/trlda/matrix"
	"github.com/vishalbelsare/trlda/sampling"
	"github.com/vishalbelsare/trlda/sstable"
)

// OnlineLDA estimates the topic-word Dirichlet parameters of a latent
// Dirichlet allocation model from a stream of mini-batches. Every batch
// goes through local inference (variational or Gibbs) and a stochastic
// mirror descent step on lambda.
//
// Calls mutating the model must not run concurrently.
type OnlineLDA struct {
	numWords     int
	numTopics    int
	numDocuments int     // size of the whole corpus, scales batch statistics
	alpha        float64 // document topic mixture hyperparameter
	eta          float64 // topic word mixture hyperparameter
	tau          float64 // learning rate schedule offset
	kappa        float64 // learning rate schedule decay

	lambda        *mat.Dense // numTopics x numWords
	updateCounter int
	adaptive      *adaptiveRate
	sampler       *sampling.Sampler
}

const (
	defaultTau   = 1024.
	defaultKappa = .9
)

// NewOnlineLDA creates a model whose random state is seeded from the clock.
func NewOnlineLDA(numWords, numTopics, numDocuments int,
	alpha, eta float64) (*OnlineLDA, error) {
	return NewOnlineLDAWithSeed(numWords, numTopics, numDocuments, alpha, eta,
		uint64(time.Now().UnixNano()))
}

// NewOnlineLDAWithSeed creates a model with lambda drawn from a
// Gamma(100, 100) distribution.
func NewOnlineLDAWithSeed(numWords, numTopics, numDocuments int,
	alpha, eta float64, seed uint64) (*OnlineLDA, error) {
	switch {
	case numWords < 1:
		return nil, fmt.Errorf("%w: numWords = %d, less than 1", ErrConfiguration, numWords)
	case numTopics < 1:
		return nil, fmt.Errorf("%w: numTopics = %d, less than 1", ErrConfiguration, numTopics)
	case numDocuments < 1:
		return nil, fmt.Errorf("%w: numDocuments = %d, less than 1", ErrConfiguration, numDocuments)
	case !(alpha > 0):
		return nil, fmt.Errorf("%w: alpha = %g, not positive", ErrConfiguration, alpha)
	case !(eta > 0):
		return nil, fmt.Errorf("%w: eta = %g, not positive", ErrConfiguration, eta)
	}

	s := sampling.New(seed)
	return &OnlineLDA{
		numWords:     numWords,
		numTopics:    numTopics,
		numDocuments: numDocuments,
		alpha:        alpha,
		eta:          eta,
		tau:          defaultTau,
		kappa:        defaultKappa,
		lambda:       s.Gamma(numTopics, numWords, initialShape),
		adaptive:     newAdaptiveRate(numTopics, numWords),
		sampler:      s,
	}, nil
}

func (this *OnlineLDA) NumWords() int {
	return this.numWords
}

func (this *OnlineLDA) NumTopics() int {
	return this.numTopics
}

func (this *OnlineLDA) NumDocuments() int {
	return this.numDocuments
}

func (this *OnlineLDA) SetNumDocuments(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: numDocuments = %d, less than 1", ErrConfiguration, n)
	}
	this.numDocuments = n
	return nil
}

func (this *OnlineLDA) Alpha() float64 {
	return this.alpha
}

func (this *OnlineLDA) SetAlpha(alpha float64) error {
	if !(alpha > 0) {
		return fmt.Errorf("%w: alpha = %g, not positive", ErrConfiguration, alpha)
	}
	this.alpha = alpha
	return nil
}

func (this *OnlineLDA) Eta() float64 {
	return this.eta
}

func (this *OnlineLDA) SetEta(eta float64) error {
	if !(eta > 0) {
		return fmt.Errorf("%w: eta = %g, not positive", ErrConfiguration, eta)
	}
	this.eta = eta
	return nil
}

// Tau is the offset of the (tau + t)^-kappa learning rate schedule,
// used when a Config leaves Tau at zero.
func (this *OnlineLDA) Tau() float64 {
	return this.tau
}

func (this *OnlineLDA) SetTau(tau float64) error {
	if !(tau >= 1) {
		return fmt.Errorf("%w: tau = %g, less than 1", ErrConfiguration, tau)
	}
	this.tau = tau
	return nil
}

// Kappa is the decay of the learning rate schedule, used when a Config
// leaves Kappa at zero.
func (this *OnlineLDA) Kappa() float64 {
	return this.kappa
}

func (this *OnlineLDA) SetKappa(kappa float64) error {
	if !(kappa >= 0) {
		return fmt.Errorf("%w: kappa = %g, negative", ErrConfiguration, kappa)
	}
	this.kappa = kappa
	return nil
}

// Lambda returns a copy of the topic-word parameters
func (this *OnlineLDA) Lambda() *mat.Dense {
	return mat.DenseCopyOf(this.lambda)
}

// SetLambda replaces the topic-word parameters with a copy of m, which
// must be numTopics x numWords and strictly positive.
func (this *OnlineLDA) SetLambda(m *mat.Dense) error {
	if err := matrix.CheckShape(m, this.numTopics, this.numWords); err != nil {
		return fmt.Errorf("%w: lambda: %w", ErrDimension, err)
	}
	if err := matrix.CheckPositive(m); err != nil {
		return fmt.Errorf("%w: lambda: %w", ErrConfiguration, err)
	}
	this.lambda = mat.DenseCopyOf(m)
	return nil
}

// UpdateCounter is the number of successful UpdateParameters calls
func (this *OnlineLDA) UpdateCounter() int {
	return this.updateCounter
}

// AdaptiveRate is the learning rate the adaptive schedule would use next
func (this *OnlineLDA) AdaptiveRate() float64 {
	return this.adaptive.rho
}

func (this *OnlineLDA) AdaptiveHorizon() float64 {
	return this.adaptive.tau
}

// Clone returns a deep copy, random state included.
func (this *OnlineLDA) Clone() *OnlineLDA {
	n := *this
	n.lambda = mat.DenseCopyOf(this.lambda)
	n.adaptive = this.adaptive.clone()
	n.sampler = this.sampler.Clone()
	return &n
}

// serialize topic-word parameters
func (this *OnlineLDA) SaveLambda(fn string) error {
	if err := sstable.DenseSerialize(this.lambda, fn); err != nil {
		return err
	}
	return nil
}

// UpdateVariables runs local inference on a batch against the current
// lambda, starting from random latents, and returns the per-document
// latents (gamma or theta) and the sufficient statistics. The model is
// not updated.
func (this *OnlineLDA) UpdateVariables(docs []corpus.Document,
	c *Config) (*mat.Dense, *mat.Dense, error) {
	inf, err := this.prepare(docs, c)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	latents := inf.InitLatents(this.numTopics, len(docs), this.sampler)
	return inf.Infer(this.job(this.lambda, docs, latents, c))
}

// UpdateVariablesWithLatents is UpdateVariables starting from the given
// numTopics x len(docs) latents.
func (this *OnlineLDA) UpdateVariablesWithLatents(docs []corpus.Document,
	latents *mat.Dense, c *Config) (*mat.Dense, *mat.Dense, error) {
	inf, err := this.prepare(docs, c)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	return inf.Infer(this.job(this.lambda, docs, latents, c))
}

// UpdateParameters folds one mini-batch into lambda and returns the
// learning rate it used. An empty batch changes nothing and returns 0.
//
// With c.MaxIterMD > 0, lambda first gets a coarse update as if every
// token were spread evenly over the topics, then c.MaxIterMD rounds of
// local inference and mirror descent follow, each blending towards the
// lambda the call started from.
func (this *OnlineLDA) UpdateParameters(docs []corpus.Document, c *Config) (float64, error) {
	inf, err := this.prepare(docs, c)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	rho := this.learningRate(c)

	var lambda, lambdaHat *mat.Dense
	if c.MaxIterMD > 0 {
		lambda, lambdaHat, err = this.mirrorDescent(inf, docs, c, rho)
	} else {
		lambda, lambdaHat, err = this.singleStep(inf, docs, c, rho)
	}
	if err != nil {
		return 0, err
	}

	if c.Adaptive {
		delta := mat.NewDense(this.numTopics, this.numWords, nil)
		delta.Sub(lambdaHat, this.lambda)
		this.adaptive.update(delta)
	}

	this.lambda = lambda
	this.updateCounter += 1

	if log.V(1) {
		log.Infof("update %d: batch %d, %s, rho %g, adaptive rho %g, tau %g",
			this.updateCounter, len(docs), c.Method, rho, this.adaptive.rho, this.adaptive.tau)
	}
	return rho, nil
}

func (this *OnlineLDA) prepare(docs []corpus.Document, c *Config) (Inference, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := corpus.Validate(docs, this.numWords); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDimension, err)
	}
	return GetInference(c.Method)
}

func (this *OnlineLDA) job(lambda *mat.Dense, docs []corpus.Document,
	latents *mat.Dense, c *Config) *Job {
	return &Job{
		Lambda:  lambda,
		Alpha:   this.alpha,
		Docs:    docs,
		Latents: latents,
		Config:  c,
		Sampler: this.sampler,
	}
}

// learningRate picks a manual rate if one is given, then the adaptive
// rate, then (tau + t)^-kappa.
func (this *OnlineLDA) learningRate(c *Config) float64 {
	if c.Rho >= 0 {
		return c.Rho
	}
	if c.Adaptive {
		return this.adaptive.rho
	}
	tau, kappa := this.tau, this.kappa
	if c.Tau != 0 {
		tau = c.Tau
	}
	if c.Kappa != 0 {
		kappa = c.Kappa
	}
	return math.Pow(tau+float64(this.updateCounter), -kappa)
}

// estimate is the lambda the batch alone suggests, eta + D/|B| * sstats
func (this *OnlineLDA) estimate(sstats *mat.Dense, batchSize int) *mat.Dense {
	hat := mat.NewDense(this.numTopics, this.numWords, nil)
	hat.Scale(float64(this.numDocuments)/float64(batchSize), sstats)
	floats.AddConst(this.eta, matrix.RawData(hat))
	return hat
}

func (this *OnlineLDA) singleStep(inf Inference, docs []corpus.Document,
	c *Config, rho float64) (*mat.Dense, *mat.Dense, error) {
	latents := inf.InitLatents(this.numTopics, len(docs), this.sampler)
	_, sstats, err := inf.Infer(this.job(this.lambda, docs, latents, c))
	if err != nil {
		return nil, nil, err
	}
	lambdaHat := this.estimate(sstats, len(docs))
	return matrix.Blend(this.lambda, lambdaHat, rho), lambdaHat, nil
}

// mirrorDescent works on a local copy of lambda; this.lambda stays the
// anchor of every blend and is not modified.
func (this *OnlineLDA) mirrorDescent(inf Inference, docs []corpus.Document,
	c *Config, rho float64) (*mat.Dense, *mat.Dense, error) {
	lambda := this.uniformStep(docs, rho)

	var lambdaHat *mat.Dense
	latents := inf.InitLatents(this.numTopics, len(docs), this.sampler)
	for it := 0; it < c.MaxIterMD; it += 1 {
		var sstats *mat.Dense
		var err error
		latents, sstats, err = inf.Infer(this.job(lambda, docs, latents, c))
		if err != nil {
			return nil, nil, fmt.Errorf("mirror descent iteration %d: %w", it, err)
		}

		lambdaHat = this.estimate(sstats, len(docs))
		lambda = matrix.Blend(this.lambda, lambdaHat, rho)

		if log.V(2) {
			log.Infof("mirror descent iteration %d: |lambda_hat| %g",
				it, math.Sqrt(matrix.SquaredNorm(lambdaHat)))
		}
	}
	return lambda, lambdaHat, nil
}

// uniformStep blends lambda towards the estimate obtained when every
// token is assigned to each topic with probability 1/numTopics.
func (this *OnlineLDA) uniformStep(docs []corpus.Document, rho float64) *mat.Dense {
	wordCounts := make([]float64, this.numWords)
	for _, doc := range docs {
		for _, wc := range doc {
			wordCounts[wc.WordId] += float64(wc.Count)
		}
	}

	scale := float64(this.numDocuments) / float64(len(docs)) / float64(this.numTopics)
	floats.Scale(scale, wordCounts)
	floats.AddConst(this.eta, wordCounts)

	hat := mat.NewDense(this.numTopics, this.numWords, nil)
	for k := 0; k < this.numTopics; k += 1 {
		hat.SetRow(k, wordCounts)
	}
	return matrix.Blend(this.lambda, hat, rho)
}
