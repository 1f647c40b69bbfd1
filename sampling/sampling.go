// Package sampling provides the random draws needed by local inference:
// Gamma and Dirichlet initialisations, Dirichlet resampling and draws from
// unnormalised histograms. A Sampler is not safe for concurrent use; give
// every goroutine its own, seeded from a parent with Seed.
package sampling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// golden ratio increment, decorrelates the two PCG words of a seed
const seedStream = 0x9e3779b97f4a7c15

type Sampler struct {
	src *rand.PCG
}

func New(seed uint64) *Sampler {
	return &Sampler{src: rand.NewPCG(seed, seed^seedStream)}
}

// Clone returns a sampler that will produce the same draws as s.
func (s *Sampler) Clone() *Sampler {
	src := *s.src
	return &Sampler{src: &src}
}

func (s *Sampler) MarshalBinary() ([]byte, error) {
	return s.src.MarshalBinary()
}

func (s *Sampler) UnmarshalBinary(data []byte) error {
	if s.src == nil {
		s.src = &rand.PCG{}
	}
	return s.src.UnmarshalBinary(data)
}

// Seed draws a seed for a child sampler.
func (s *Sampler) Seed() uint64 {
	return s.src.Uint64()
}

// Gamma fills a rows x cols matrix with Gamma(shape, rate=shape) draws,
// whose mean is 1.
func (s *Sampler) Gamma(rows, cols int, shape float64) *mat.Dense {
	g := distuv.Gamma{Alpha: shape, Beta: shape, Src: s.src}
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r += 1 {
		row := m.RawRowView(r)
		for c := range row {
			row[c] = positive(g.Rand())
		}
	}
	return m
}

// Dirichlet draws a probability vector from Dirichlet(alpha).
func (s *Sampler) Dirichlet(alpha []float64) []float64 {
	x := distmv.NewDirichlet(alpha, s.src).Rand(nil)
	for i := range x {
		x[i] = positive(x[i])
	}
	return x
}

// DirichletMatrix fills every column of a rows x cols matrix with an
// independent draw from the flat Dirichlet distribution.
func (s *Sampler) DirichletMatrix(rows, cols int) *mat.Dense {
	alpha := make([]float64, rows)
	floats.AddConst(1, alpha)
	m := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c += 1 {
		m.SetCol(c, s.Dirichlet(alpha))
	}
	return m
}

// Histogram returns an index drawn with probability proportional to
// weights[i]. The weights need not be normalised.
func (s *Sampler) Histogram(weights []float64) int {
	return int(distuv.NewCategorical(weights, s.src).Rand())
}

// positive lifts draws that underflowed to zero
func positive(v float64) float64 {
	if !(v > 0) {
		return math.SmallestNonzeroFloat64
	}
	return v
}
