package analysis

import (
	"math"

	"habitboard/domain/student"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation is a symmetric Pearson matrix over Columns.
// Undefined cells (constant column, fewer than two pairs) are NaN.
type Correlation struct {
	Columns []string
	R       [][]float64
	P       [][]float64 // two-sided p-values, NaN when n < 3
	N       [][]int     // pairwise complete observations
}

// AvailableColumns keeps the requested columns that the dataset actually has
func AvailableColumns(headers, wanted []string) []string {
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[h] = struct{}{}
	}
	var out []string
	for _, w := range wanted {
		if _, ok := have[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

// CorrelationMatrix computes pairwise-complete Pearson correlations between numeric columns
func CorrelationMatrix(records []student.Record, columns []string) Correlation {
	k := len(columns)
	c := Correlation{
		Columns: columns,
		R:       make([][]float64, k),
		P:       make([][]float64, k),
		N:       make([][]int, k),
	}
	for i := range columns {
		c.R[i] = make([]float64, k)
		c.P[i] = make([]float64, k)
		c.N[i] = make([]int, k)
	}

	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			x, y := pairs(records, columns[i], columns[j])
			r := pearson(x, y)
			p := pValue(r, len(x))
			c.R[i][j], c.R[j][i] = r, r
			c.P[i][j], c.P[j][i] = p, p
			c.N[i][j], c.N[j][i] = len(x), len(x)
		}
	}
	return c
}

func pairs(records []student.Record, a, b string) ([]float64, []float64) {
	x := make([]float64, 0, len(records))
	y := make([]float64, 0, len(records))
	for _, r := range records {
		va, vb := r.Numeric(a), r.Numeric(b)
		if student.Present(va) && student.Present(vb) {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	// guard against rounding pushing |r| past 1
	return math.Max(-1, math.Min(1, r))
}

// pValue is the two-sided significance of r under H0: rho = 0
func pValue(r float64, n int) float64 {
	if math.IsNaN(r) || n < 3 {
		return math.NaN()
	}
	if math.Abs(r) == 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}
