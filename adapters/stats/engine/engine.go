package engine

import (
	"sort"

	"goeda/domain/core"
	"goeda/domain/report"
	"goeda/domain/table"

	"github.com/montanaflynn/stats"
)

// Config holds engine tunables
type Config struct {
	TopValues     int // categorical top-N to report
	HistogramBins int
}

// DefaultConfig returns the defaults used by the CLI and UI
func DefaultConfig() Config {
	return Config{
		TopValues:     10,
		HistogramBins: 20,
	}
}

// SummaryStatsEngine computes descriptive statistics, outlier flags and
// pairwise correlations over a table. Each Analyze call is an independent,
// pure computation over its input; the engine holds no mutable state.
type SummaryStatsEngine struct {
	config Config
}

// NewEngine creates an engine with default configuration
func NewEngine() *SummaryStatsEngine {
	return NewEngineWithConfig(DefaultConfig())
}

// NewEngineWithConfig creates an engine with custom configuration
func NewEngineWithConfig(config Config) *SummaryStatsEngine {
	if config.TopValues <= 0 {
		config.TopValues = 10
	}
	if config.HistogramBins <= 0 {
		config.HistogramBins = 20
	}
	return &SummaryStatsEngine{config: config}
}

// Analyze produces the full report for a table. It fails with
// MALFORMED_INPUT when the table has no rows or no columns; per-column
// insufficiency (too few values for outliers, zero variance for
// correlation) is reported as not computed rather than an error.
func (e *SummaryStatsEngine) Analyze(t *table.Table) (*report.Report, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	rep := &report.Report{
		ID:          core.ReportID(core.NewID()),
		DatasetName: t.Name,
		GeneratedAt: core.Now(),
	}

	rep.Overview = e.buildOverview(t)
	rep.Sample = e.buildSample(t)

	for i := range t.Columns {
		rep.Columns = append(rep.Columns, e.summarizeColumn(&t.Columns[i]))
	}

	for _, idx := range t.NumericColumns() {
		col := &t.Columns[idx]
		rep.Outliers = append(rep.Outliers, e.flagOutliers(col))
		if h, ok := e.histogram(col); ok {
			rep.Histograms = append(rep.Histograms, h)
		}
	}

	rep.Correlation = e.correlationMatrix(t)

	return rep, nil
}

func (e *SummaryStatsEngine) buildOverview(t *table.Table) report.Overview {
	ov := report.Overview{
		Rows:    t.RowCount(),
		Columns: t.ColumnCount(),
	}
	for i := range t.Columns {
		ov.MissingTotal += t.Columns[i].MissingCount()
	}

	seen := make(map[core.RowHash]int, ov.Rows)
	for i := 0; i < ov.Rows; i++ {
		h := core.ComputeRowHash(t.Row(i))
		seen[h]++
	}
	for _, n := range seen {
		if n > 1 {
			ov.DuplicateRows += n - 1
		}
	}
	return ov
}

// sampleRows is how many leading rows the report previews
const sampleRows = 5

// buildSample captures the first rows of the table as rendered strings
func (e *SummaryStatsEngine) buildSample(t *table.Table) *report.Sample {
	n := t.RowCount()
	if n > sampleRows {
		n = sampleRows
	}

	s := &report.Sample{
		Columns: make([]string, t.ColumnCount()),
		Rows:    make([][]string, 0, n),
	}
	for i := range t.Columns {
		s.Columns[i] = t.Columns[i].Name
	}
	for i := 0; i < n; i++ {
		s.Rows = append(s.Rows, t.Row(i))
	}
	return s
}

func (e *SummaryStatsEngine) summarizeColumn(col *table.Column) report.ColumnSummary {
	missing := col.MissingCount()
	summary := report.ColumnSummary{
		Name:       col.Name,
		Kind:       col.Kind,
		NonMissing: len(col.Cells) - missing,
		Missing:    missing,
	}

	switch col.Kind {
	case table.KindNumeric:
		summary.Numeric = e.numericSummary(col)
	case table.KindCategorical, table.KindText:
		summary.Categorical = e.categoricalSummary(col)
	}

	return summary
}

func (e *SummaryStatsEngine) numericSummary(col *table.Column) *report.NumericSummary {
	values, _ := col.NumericValues()
	if len(values) == 0 {
		// Empty numeric columns produce "not computed" summaries
		return &report.NumericSummary{Computed: false}
	}

	s := &report.NumericSummary{Computed: true}

	// Single-value inputs have no spread; montanaflynn errors on sample
	// std for n=1, so short-circuit to zero.
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	s.Mean, _ = stats.Mean(values)
	s.Median, _ = stats.Median(values)
	if len(values) > 1 {
		s.StdDev, _ = stats.StandardDeviationSample(values)
	}
	s.Q1, _ = stats.Percentile(values, 25)
	s.Q3, _ = stats.Percentile(values, 75)

	markers := analyzeDistribution(values, s.Mean, s.StdDev)
	s.Skewness = markers.Skewness
	s.Kurtosis = markers.Kurtosis
	s.IsNormal = markers.IsNormal
	s.NormalityP = markers.NormalityP

	return s
}

func (e *SummaryStatsEngine) categoricalSummary(col *table.Column) *report.CategoricalSummary {
	counts := make(map[string]int)
	for _, cell := range col.Cells {
		if cell.IsMissing || cell.StringVal == nil {
			continue
		}
		counts[*cell.StringVal]++
	}

	tops := make([]report.ValueCount, 0, len(counts))
	for v, n := range counts {
		tops = append(tops, report.ValueCount{Value: v, Count: n})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > e.config.TopValues {
		tops = tops[:e.config.TopValues]
	}

	missingPct := 0.0
	if len(col.Cells) > 0 {
		missingPct = float64(col.MissingCount()) / float64(len(col.Cells)) * 100
	}

	return &report.CategoricalSummary{
		UniqueCount:    len(counts),
		TopValues:      tops,
		MissingPercent: missingPct,
	}
}

// histogram bins the non-missing values of a numeric column for charting
func (e *SummaryStatsEngine) histogram(col *table.Column) (report.Histogram, bool) {
	values, _ := col.NumericValues()
	if len(values) == 0 {
		return report.Histogram{}, false
	}

	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)

	bins := e.config.HistogramBins
	if maxVal == minVal {
		// Constant column collapses to a single bin
		return report.Histogram{
			Column: col.Name,
			Edges:  []float64{minVal, maxVal},
			Counts: []int{len(values)},
		}, true
	}

	width := (maxVal - minVal) / float64(bins)
	edges := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = minVal + float64(i)*width
	}
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - minVal) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	return report.Histogram{Column: col.Name, Edges: edges, Counts: counts}, true
}

// minSamplesForOutliers is the smallest column that yields stable quartiles
const minSamplesForOutliers = 4

func (e *SummaryStatsEngine) flagOutliers(col *table.Column) report.OutlierReport {
	out := report.OutlierReport{Column: col.Name}

	values, present := col.NumericValues()
	if len(values) < minSamplesForOutliers {
		return out // Computed stays false: insufficient data, not an error
	}

	q1, _ := stats.Percentile(values, 25)
	q3, _ := stats.Percentile(values, 75)
	iqr := q3 - q1

	out.Computed = true
	out.LowerFence = q1 - 1.5*iqr
	out.UpperFence = q3 + 1.5*iqr
	out.Flags = make([]bool, len(col.Cells))

	vi := 0
	for i := range col.Cells {
		if !present[i] {
			continue
		}
		v := values[vi]
		vi++
		if v < out.LowerFence || v > out.UpperFence {
			out.Flags[i] = true
			out.Count++
		}
	}
	out.Percent = float64(out.Count) / float64(len(values)) * 100

	return out
}
