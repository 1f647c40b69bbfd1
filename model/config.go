package model

import (
	"fmt"
	"strings"
)

// Method selects the local inference algorithm
type Method int

const (
	VI Method = iota
	Gibbs
)

func (m Method) String() string {
	switch m {
	case VI:
		return "vi"
	case Gibbs:
		return "gibbs"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "vi", "variational":
		return VI, nil
	case "gibbs":
		return Gibbs, nil
	}
	return 0, fmt.Errorf("%w: unknown inference method %q", ErrConfiguration, s)
}

// Config holds the settings of one UpdateParameters or UpdateVariables call.
type Config struct {
	Method Method

	// variational inference stops once the mean absolute change of a
	// document's gamma drops below Threshold, or after MaxIterInference
	// iterations
	Threshold        float64
	MaxIterInference int

	// number of mirror descent iterations, 0 for a single update
	MaxIterMD int

	// learning rate schedule (Tau + t)^-Kappa, used when Rho < 0 and
	// Adaptive is false. Zero values fall back to the model's tau and kappa.
	Tau   float64
	Kappa float64
	// a non-negative Rho is used as the learning rate as is
	Rho      float64
	Adaptive bool

	// Gibbs sampling keeps NumSamples sweeps after BurnIn sweeps
	NumSamples int
	BurnIn     int

	// documents are spread over NumWorkers goroutines, 0 means GOMAXPROCS
	NumWorkers int
}

func DefaultConfig() *Config {
	return &Config{
		Method:           VI,
		Threshold:        0.001,
		MaxIterInference: 100,
		MaxIterMD:        0,
		Tau:              0,
		Kappa:            0,
		Rho:              -1.,
		Adaptive:         false,
		NumSamples:       2,
		BurnIn:           2,
		NumWorkers:       0,
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrConfiguration)
	}
	if _, err := GetInference(c.Method); err != nil {
		return err
	}
	switch {
	case !(c.Threshold >= 0):
		return fmt.Errorf("%w: threshold %g < 0", ErrConfiguration, c.Threshold)
	case c.MaxIterInference < 0:
		return fmt.Errorf("%w: max_iter_inference %d < 0", ErrConfiguration, c.MaxIterInference)
	case c.MaxIterMD < 0:
		return fmt.Errorf("%w: max_iter_md %d < 0", ErrConfiguration, c.MaxIterMD)
	case c.Tau != 0 && !(c.Tau >= 1):
		return fmt.Errorf("%w: tau %g < 1", ErrConfiguration, c.Tau)
	case !(c.Kappa >= 0):
		return fmt.Errorf("%w: kappa %g < 0", ErrConfiguration, c.Kappa)
	case c.Rho > 1:
		return fmt.Errorf("%w: rho %g > 1", ErrConfiguration, c.Rho)
	case c.NumSamples < 1:
		return fmt.Errorf("%w: num_samples %d < 1", ErrConfiguration, c.NumSamples)
	case c.BurnIn < 0:
		return fmt.Errorf("%w: burn_in %d < 0", ErrConfiguration, c.BurnIn)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: num_workers %d < 0", ErrConfiguration, c.NumWorkers)
	}
	return nil
}
