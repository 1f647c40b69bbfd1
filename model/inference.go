package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/corpus"
	"github.com/vishalbelsare/trlda/matrix"
	"github.com/vishalbelsare/trlda/sampling"
)

var inferences = make(map[Method]Inference)

// Job is one local inference call over a mini-batch. Lambda is read only
// for the whole call.
type Job struct {
	Lambda  *mat.Dense // numTopics x numWords
	Alpha   float64
	Docs    []corpus.Document
	Latents *mat.Dense // numTopics x len(Docs), not modified
	Config  *Config
	Sampler *sampling.Sampler
}

// the common interface local inference algorithms should follow
type Inference interface {
	// initial per-document latents when the caller supplies none
	InitLatents(numTopics, numDocs int, s *sampling.Sampler) *mat.Dense
	// approximate the per-document posteriors and collect the
	// topic-word sufficient statistics of the batch
	Infer(job *Job) (latents *mat.Dense, sstats *mat.Dense, err error)
}

// new inference algorithms should register themselves using this function
func Register(method Method, inf Inference) {
	inferences[method] = inf
}

func GetInference(method Method) (Inference, error) {
	inf, ok := inferences[method]
	if !ok {
		return nil, fmt.Errorf("%w: inference %s not registered", ErrConfiguration, method)
	}
	return inf, nil
}

func checkLatents(job *Job) error {
	numTopics, _ := job.Lambda.Dims()
	if err := matrix.CheckShape(job.Latents, numTopics, len(job.Docs)); err != nil {
		return fmt.Errorf("%w: initial latents: %w", ErrDimension, err)
	}
	return nil
}
