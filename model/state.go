package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/matrix"
	"github.com/vishalbelsare/trlda/sampling"
)

// state is the persisted form of an OnlineLDA. Matrices use gonum's
// binary encoding, which keeps every float64 bit for bit.
type state struct {
	NumWords      int
	NumTopics     int
	NumDocuments  int
	Alpha         float64
	Eta           float64
	Tau           float64
	Kappa         float64
	UpdateCounter int

	Lambda []byte

	AdaptiveTau      float64
	AdaptiveRho      float64
	AdaptiveSqNorm   float64
	AdaptiveGradient []byte

	Sampler []byte
}

// Save writes everything needed to restore the model with Load,
// including the random state.
func (this *OnlineLDA) Save(w io.Writer) error {
	s := state{
		NumWords:       this.numWords,
		NumTopics:      this.numTopics,
		NumDocuments:   this.numDocuments,
		Alpha:          this.alpha,
		Eta:            this.eta,
		Tau:            this.tau,
		Kappa:          this.kappa,
		UpdateCounter:  this.updateCounter,
		AdaptiveTau:    this.adaptive.tau,
		AdaptiveRho:    this.adaptive.rho,
		AdaptiveSqNorm: this.adaptive.sqNorm,
	}

	var err error
	if s.Lambda, err = this.lambda.MarshalBinary(); err != nil {
		return err
	}
	if s.AdaptiveGradient, err = this.adaptive.gradient.MarshalBinary(); err != nil {
		return err
	}
	if s.Sampler, err = this.sampler.MarshalBinary(); err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(&s)
}

// Load restores a model written by Save.
func Load(r io.Reader) (*OnlineLDA, error) {
	var s state
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("model: decoding state: %w", err)
	}

	this, err := NewOnlineLDAWithSeed(s.NumWords, s.NumTopics, s.NumDocuments,
		s.Alpha, s.Eta, 0)
	if err != nil {
		return nil, err
	}
	if err := this.SetTau(s.Tau); err != nil {
		return nil, err
	}
	if err := this.SetKappa(s.Kappa); err != nil {
		return nil, err
	}
	if s.UpdateCounter < 0 {
		return nil, fmt.Errorf("%w: update counter %d < 0", ErrConfiguration, s.UpdateCounter)
	}
	this.updateCounter = s.UpdateCounter

	lambda := &mat.Dense{}
	if err := lambda.UnmarshalBinary(s.Lambda); err != nil {
		return nil, fmt.Errorf("model: decoding lambda: %w", err)
	}
	if err := this.SetLambda(lambda); err != nil {
		return nil, err
	}

	gradient := &mat.Dense{}
	if err := gradient.UnmarshalBinary(s.AdaptiveGradient); err != nil {
		return nil, fmt.Errorf("model: decoding adaptive gradient: %w", err)
	}
	if err := matrix.CheckShape(gradient, s.NumTopics, s.NumWords); err != nil {
		return nil, fmt.Errorf("%w: adaptive gradient: %w", ErrDimension, err)
	}
	if !(s.AdaptiveTau >= 1) || !(s.AdaptiveSqNorm > 0) {
		return nil, fmt.Errorf("%w: adaptive tau %g, squared norm %g",
			ErrConfiguration, s.AdaptiveTau, s.AdaptiveSqNorm)
	}
	this.adaptive = &adaptiveRate{
		tau:      s.AdaptiveTau,
		rho:      s.AdaptiveRho,
		sqNorm:   s.AdaptiveSqNorm,
		gradient: gradient,
	}

	this.sampler = &sampling.Sampler{}
	if err := this.sampler.UnmarshalBinary(s.Sampler); err != nil {
		return nil, fmt.Errorf("model: decoding random state: %w", err)
	}
	return this, nil
}

// save model state to file
func (this *OnlineLDA) SaveState(fn string) error {
	out, err := os.OpenFile(fn, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if err := this.Save(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// load model state from file
func LoadState(fn string) (*OnlineLDA, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}
