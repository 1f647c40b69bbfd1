package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

// CheckShape returns ErrBadShape unless m has exactly r rows and c columns.
func CheckShape(m *mat.Dense, r, c int) error {
	if m == nil {
		return fmt.Errorf("%w: got nil matrix, want %dx%d", ErrBadShape, r, c)
	}
	if mr, mc := m.Dims(); mr != r || mc != c {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrBadShape, mr, mc, r, c)
	}
	return nil
}

// CheckPositive returns ErrNonPositive for the first entry of m that is
// not strictly positive (NaN included).
func CheckPositive(m *mat.Dense) error {
	r, _ := m.Dims()
	for i := 0; i < r; i += 1 {
		for j, v := range m.RawRowView(i) {
			if !(v > 0) {
				return fmt.Errorf("%w: [%d, %d] = %g", ErrNonPositive, i, j, v)
			}
		}
	}
	return nil
}

// RawData returns the row-major backing slice of m. Every matrix built by
// this module is contiguous, a strided view is not.
func RawData(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride != raw.Cols {
		panic(ErrBadShape)
	}
	return raw.Data[:raw.Rows*raw.Cols]
}

// ExpDigamma stores exp(digamma(src[i])) into dst[i].
func ExpDigamma(dst, src []float64) {
	if len(dst) != len(src) {
		panic(ErrIndexOutOfRange)
	}
	for i, v := range src {
		dst[i] = math.Exp(mathext.Digamma(v))
	}
}

// DirichletExpectation computes exp(E[log beta]) for every row of a matrix
// of Dirichlet parameters:
//
//	out[k, w] = exp(digamma(m[k, w]) - digamma(sum_w m[k, w]))
func DirichletExpectation(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for k := 0; k < r; k += 1 {
		row := m.RawRowView(k)
		psiSum := mathext.Digamma(floats.Sum(row))
		dst := out.RawRowView(k)
		for w, v := range row {
			dst[w] = math.Exp(mathext.Digamma(v) - psiSum)
		}
	}
	return out
}

// Blend returns the convex combination (1-rho)*anchor + rho*hat in a
// freshly allocated matrix; neither argument is modified.
func Blend(anchor, hat *mat.Dense, rho float64) *mat.Dense {
	r, c := anchor.Dims()
	if err := CheckShape(hat, r, c); err != nil {
		panic(err)
	}
	out := mat.NewDense(r, c, nil)
	for k := 0; k < r; k += 1 {
		dst := out.RawRowView(k)
		floats.ScaleTo(dst, 1-rho, anchor.RawRowView(k))
		floats.AddScaled(dst, rho, hat.RawRowView(k))
	}
	return out
}

// SquaredNorm is the squared Frobenius norm of m.
func SquaredNorm(m *mat.Dense) float64 {
	r, _ := m.Dims()
	sum := 0.0
	for k := 0; k < r; k += 1 {
		row := m.RawRowView(k)
		sum += floats.Dot(row, row)
	}
	return sum
}
