package engine

import (
	"math"

	"goeda/domain/report"
	"goeda/domain/table"

	"gonum.org/v1/gonum/stat"
)

// minPairsForCorrelation is the smallest number of pairwise-complete
// observations that gives a defined coefficient.
const minPairsForCorrelation = 2

// correlationMatrix computes pairwise Pearson coefficients over the numeric
// columns using pairwise-complete observations: each pair only uses rows
// where both values are present. Returns nil when the table has fewer than
// two numeric columns.
func (e *SummaryStatsEngine) correlationMatrix(t *table.Table) *report.CorrelationMatrix {
	numIdx := t.NumericColumns()
	if len(numIdx) < 2 {
		return nil
	}

	n := len(numIdx)
	m := &report.CorrelationMatrix{
		Columns: make([]string, n),
		Values:  make([][]float64, n),
		Defined: make([][]bool, n),
	}

	// Dense per-row views with presence masks, aligned to row index
	dense := make([][]float64, n)
	masks := make([][]bool, n)
	for i, idx := range numIdx {
		col := &t.Columns[idx]
		m.Columns[i] = col.Name
		m.Values[i] = make([]float64, n)
		m.Defined[i] = make([]bool, n)

		rowVals := make([]float64, len(col.Cells))
		values, present := col.NumericValues()
		vi := 0
		for r := range col.Cells {
			if present[r] {
				rowVals[r] = values[vi]
				vi++
			}
		}
		dense[i] = rowVals
		masks[i] = present
	}

	for i := 0; i < n; i++ {
		// The diagonal is 1.0 by definition regardless of variance
		m.Values[i][i] = 1.0
		m.Defined[i][i] = true
		for j := i + 1; j < n; j++ {
			r, ok := pairwisePearson(dense[i], masks[i], dense[j], masks[j])
			m.Values[i][j], m.Values[j][i] = r, r
			m.Defined[i][j], m.Defined[j][i] = ok, ok
		}
	}

	return m
}

// pairwisePearson computes the Pearson coefficient over rows where both
// columns are present. Zero variance in either column, or fewer than two
// complete pairs, yields undefined rather than a division by zero.
func pairwisePearson(x []float64, xPresent []bool, y []float64, yPresent []bool) (float64, bool) {
	var xs, ys []float64
	for i := range x {
		if xPresent[i] && yPresent[i] {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}

	if len(xs) < minPairsForCorrelation {
		return 0, false
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, false
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	// Accumulated floating point error can push |r| past 1
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}
