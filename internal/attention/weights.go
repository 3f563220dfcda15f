package attention

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultSeed seeds the noise source when the caller does not supply one.
const DefaultSeed = 42

// Pattern names the synthetic attention behaviour of a head.
type Pattern string

const (
	PatternLocality   Pattern = "locality"
	PatternFirstToken Pattern = "first-token"
	PatternUniform    Pattern = "uniform"
)

// Source supplies uniform random numbers in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded source for the uniform branch.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Matrix is a row-major n×n weight matrix.
type Matrix [][]float64

// PatternFor returns the pattern used by the given head index.
func PatternFor(head int) Pattern {
	switch ((head % 3) + 3) % 3 {
	case 0:
		return PatternLocality
	case 1:
		return PatternFirstToken
	default:
		return PatternUniform
	}
}

// Weights builds the row-normalised attention matrix of head for n tokens.
// Only the uniform pattern draws from src; the other two are exact functions
// of their inputs. A nil src uses a source seeded with DefaultSeed.
func Weights(head, n int, src Source) Matrix {
	if n <= 0 {
		return Matrix{}
	}
	pattern := PatternFor(head)
	if pattern == PatternUniform && src == nil {
		src = NewSource(DefaultSeed)
	}

	m := make(Matrix, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = raw(pattern, i, j, n, src)
		}
		normalize(row)
		m[i] = row
	}
	return m
}

func raw(pattern Pattern, i, j, n int, src Source) float64 {
	switch pattern {
	case PatternLocality:
		return math.Max(0.1, 1-math.Abs(float64(i-j))*0.3)
	case PatternFirstToken:
		if j == 0 {
			return 0.7
		}
		return 0.3 / float64(n-1)
	default:
		return 0.8/float64(n) + noise(src, 0, 0.2)
	}
}

// noise draws a uniform value in [lo, hi).
func noise(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// normalize divides every entry by the row sum. A zero row becomes uniform.
func normalize(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v
	}
	if sum <= 0 {
		for j := range row {
			row[j] = 1 / float64(len(row))
		}
		return
	}
	for j := range row {
		row[j] /= sum
	}
}

// RowSums returns the sum of each row.
func (m Matrix) RowSums() []float64 {
	sums := make([]float64, len(m))
	for i, row := range m {
		for _, v := range row {
			sums[i] += v
		}
	}
	return sums
}

// Validate checks the matrix is square, entries lie in [0,1] and every row
// sums to 1 within eps.
func (m Matrix) Validate(eps float64) error {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(row), n)
		}
		var sum float64
		for j, v := range row {
			if v < 0 || v > 1 || math.IsNaN(v) {
				return fmt.Errorf("entry [%d][%d] = %v outside [0,1]", i, j, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > eps {
			return fmt.Errorf("row %d sums to %v", i, sum)
		}
	}
	return nil
}

// Argmax returns the column with the largest weight in row i, or -1.
func (m Matrix) Argmax(i int) int {
	if i < 0 || i >= len(m) {
		return -1
	}
	best := -1
	for j, v := range m[i] {
		if best < 0 || v > m[i][best] {
			best = j
		}
	}
	return best
}
