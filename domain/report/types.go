package report

import (
	"goeda/domain/core"
	"goeda/domain/table"
)

// Overview captures dataset-level counts shown at the top of a report
type Overview struct {
	Rows          int `json:"rows"`
	Columns       int `json:"columns"`
	MissingTotal  int `json:"missing_total"`
	DuplicateRows int `json:"duplicate_rows"`
}

// NumericSummary holds descriptive statistics for a numeric column.
// All fields are only meaningful when Computed is true.
type NumericSummary struct {
	Computed bool    `json:"computed"` // false when the column has no non-missing values
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	// Normality approximation from skewness and kurtosis
	IsNormal   bool    `json:"is_normal"`
	NormalityP float64 `json:"normality_p"`
}

// ValueCount is a categorical value with its occurrence count
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalSummary holds frequency statistics for a categorical column
type CategoricalSummary struct {
	UniqueCount    int          `json:"unique_count"`
	TopValues      []ValueCount `json:"top_values"`
	MissingPercent float64      `json:"missing_percent"`
}

// ColumnSummary is the per-column portion of a report
type ColumnSummary struct {
	Name        string              `json:"name"`
	Kind        table.ColumnKind    `json:"kind"`
	NonMissing  int                 `json:"non_missing"`
	Missing     int                 `json:"missing"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
}

// OutlierReport flags values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR] for one
// numeric column. Computed is false when fewer than 4 non-missing values
// were available; the flags are then absent rather than an error.
type OutlierReport struct {
	Column     string  `json:"column"`
	Computed   bool    `json:"computed"`
	LowerFence float64 `json:"lower_fence"`
	UpperFence float64 `json:"upper_fence"`
	Flags      []bool  `json:"flags,omitempty"` // aligned to row index; false for missing cells
	Count      int     `json:"count"`
	Percent    float64 `json:"percent"`
}

// CorrelationMatrix holds pairwise Pearson coefficients over numeric
// columns. Values[i][j] is only meaningful when Defined[i][j] is true;
// an entry is undefined when either column has zero variance or fewer than
// two pairwise-complete observations exist.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
	Defined [][]bool    `json:"defined"`
}

// IsDefined reports whether the coefficient between columns i and j exists
func (m *CorrelationMatrix) IsDefined(i, j int) bool {
	if m == nil || i < 0 || j < 0 || i >= len(m.Defined) || j >= len(m.Defined[i]) {
		return false
	}
	return m.Defined[i][j]
}

// Sample holds the first few rendered rows for the report's data preview
type Sample struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Histogram is a fixed-width binning of one numeric column for charting
type Histogram struct {
	Column string    `json:"column"`
	Edges  []float64 `json:"edges"` // len(Counts)+1 bin boundaries
	Counts []int     `json:"counts"`
}

// Report is the full derived analysis of one table. It is recomputed from
// scratch on every generation and never mutated afterwards.
type Report struct {
	ID          core.ReportID      `json:"id"`
	DatasetName string             `json:"dataset_name"`
	GeneratedAt core.Timestamp     `json:"generated_at"`
	Overview    Overview           `json:"overview"`
	Sample      *Sample            `json:"sample,omitempty"`
	Columns     []ColumnSummary    `json:"columns"`
	Outliers    []OutlierReport    `json:"outliers"`
	Correlation *CorrelationMatrix `json:"correlation,omitempty"`
	Histograms  []Histogram        `json:"histograms,omitempty"`
}

// ColumnSummaryByName returns the summary for the named column
func (r *Report) ColumnSummaryByName(name string) (*ColumnSummary, bool) {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i], true
		}
	}
	return nil, false
}

// HasMissing reports whether any column recorded missing cells
func (r *Report) HasMissing() bool {
	return r.Overview.MissingTotal > 0
}
