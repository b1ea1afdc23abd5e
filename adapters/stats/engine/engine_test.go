package engine

import (
	"math"
	"testing"

	"goeda/domain/table"
	"goeda/internal/errors"
)

func TestAnalyze_ConstantColumn(t *testing.T) {
	tbl := buildTable("constants", numericCol("c", 5, 5, 5, 5, 5))

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	summary := rep.Columns[0].Numeric
	if summary == nil || !summary.Computed {
		t.Fatal("Expected computed numeric summary for constant column")
	}
	if summary.StdDev != 0 {
		t.Errorf("Expected std dev 0 for constant column, got %v", summary.StdDev)
	}
	if summary.Min != 5 || summary.Max != 5 || summary.Mean != 5 || summary.Median != 5 {
		t.Errorf("Expected all location stats = 5, got min=%v max=%v mean=%v median=%v",
			summary.Min, summary.Max, summary.Mean, summary.Median)
	}
}

func TestAnalyze_IQROutlier(t *testing.T) {
	// With values 1,2,3,4,100 the upper fence sits well below 100
	tbl := buildTable("outliers", numericCol("v", 1, 2, 3, 4, 100))

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(rep.Outliers) != 1 {
		t.Fatalf("Expected 1 outlier report, got %d", len(rep.Outliers))
	}
	out := rep.Outliers[0]
	if !out.Computed {
		t.Fatal("Expected outlier report to be computed with 5 values")
	}
	if out.Count != 1 {
		t.Errorf("Expected exactly 1 flagged value, got %d", out.Count)
	}
	if !out.Flags[4] {
		t.Error("Expected the value 100 (row 4) to be flagged")
	}
	for i := 0; i < 4; i++ {
		if out.Flags[i] {
			t.Errorf("Row %d should not be flagged", i)
		}
	}
}

func TestAnalyze_TooFewValuesForOutliers(t *testing.T) {
	tbl := buildTable("tiny", numericCol("v", 1, 2, 3))

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	out := rep.Outliers[0]
	if out.Computed {
		t.Error("Expected outlier detection to be skipped below 4 values")
	}
	if out.Count != 0 {
		t.Errorf("Expected no flagged values, got %d", out.Count)
	}
}

func TestAnalyze_MissingCounts(t *testing.T) {
	col := numericCol("v", 1, 2, 3)
	col.Cells = append(col.Cells, table.NewMissingValue(), table.NewMissingValue())

	other := numericCol("w", 10, 20, 30, 40, 50)
	tbl := buildTable("missing", col, other)

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for _, cs := range rep.Columns {
		if cs.Missing+cs.NonMissing != rep.Overview.Rows {
			t.Errorf("Column %s: missing + non-missing != rows", cs.Name)
		}
	}
	vs, ok := rep.ColumnSummaryByName("v")
	if !ok || vs.Missing != 2 {
		t.Fatalf("Expected 2 missing in column v, got %+v", vs)
	}
	if rep.Overview.MissingTotal != 2 {
		t.Errorf("Expected overview missing total 2, got %d", rep.Overview.MissingTotal)
	}
}

func TestAnalyze_MalformedInput(t *testing.T) {
	t.Run("no columns", func(t *testing.T) {
		_, err := NewEngine().Analyze(&table.Table{Name: "empty"})
		if !errors.IsMalformedInput(err) {
			t.Errorf("Expected malformed input error, got %v", err)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		tbl := &table.Table{
			Name:    "headers-only",
			Columns: []table.Column{{Name: "a", Kind: table.KindNumeric}},
		}
		_, err := NewEngine().Analyze(tbl)
		if !errors.IsMalformedInput(err) {
			t.Errorf("Expected malformed input error, got %v", err)
		}
	})
}

func TestAnalyze_Deterministic(t *testing.T) {
	tbl := buildTable("repeat",
		numericCol("a", 1, 2, 3, 4, 5, 6, 7, 8),
		numericCol("b", 2, 4, 6, 8, 10, 12, 14, 16),
	)

	engine := NewEngine()
	first, err := engine.Analyze(tbl)
	if err != nil {
		t.Fatalf("First Analyze failed: %v", err)
	}
	second, err := engine.Analyze(tbl)
	if err != nil {
		t.Fatalf("Second Analyze failed: %v", err)
	}

	s1, _ := first.ColumnSummaryByName("a")
	s2, _ := second.ColumnSummaryByName("a")
	a1, a2 := s1.Numeric, s2.Numeric
	if *a1 != *a2 {
		t.Errorf("Repeated analysis diverged: %+v vs %+v", a1, a2)
	}
	for i := range first.Correlation.Columns {
		for j := range first.Correlation.Columns {
			if first.Correlation.Values[i][j] != second.Correlation.Values[i][j] {
				t.Errorf("Correlation [%d][%d] diverged", i, j)
			}
		}
	}
}

func TestAnalyze_DuplicateRows(t *testing.T) {
	tbl := buildTable("dupes",
		numericCol("a", 1, 1, 2, 1),
		numericCol("b", 9, 9, 8, 9),
	)

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// Rows 0, 1 and 3 are identical: two of them count as duplicates
	if rep.Overview.DuplicateRows != 2 {
		t.Errorf("Expected 2 duplicate rows, got %d", rep.Overview.DuplicateRows)
	}
}

func TestAnalyze_SamplePreview(t *testing.T) {
	tbl := buildTable("preview",
		numericCol("v", 1, 2, 3, 4, 5, 6, 7),
		numericCol("w", 10, 20, 30, 40, 50, 60, 70),
	)

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if rep.Sample == nil {
		t.Fatal("Expected a data preview sample")
	}
	if len(rep.Sample.Rows) != 5 {
		t.Errorf("Expected 5 preview rows, got %d", len(rep.Sample.Rows))
	}
	if len(rep.Sample.Columns) != 2 || rep.Sample.Columns[0] != "v" {
		t.Errorf("Unexpected preview header: %v", rep.Sample.Columns)
	}
	if rep.Sample.Rows[0][0] != "1" || rep.Sample.Rows[4][1] != "50" {
		t.Errorf("Unexpected preview cells: %v", rep.Sample.Rows)
	}
}

func TestCategoricalSummary_TopValues(t *testing.T) {
	cells := []table.Value{}
	for _, s := range []string{"b", "a", "b", "c", "b", "a"} {
		cells = append(cells, table.NewStringValue(s))
	}
	tbl := buildTable("cats", table.Column{Name: "cat", Kind: table.KindCategorical, Cells: cells})

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	cs := rep.Columns[0].Categorical
	if cs == nil {
		t.Fatal("Expected categorical summary")
	}
	if cs.UniqueCount != 3 {
		t.Errorf("Expected 3 unique values, got %d", cs.UniqueCount)
	}
	if cs.TopValues[0].Value != "b" || cs.TopValues[0].Count != 3 {
		t.Errorf("Expected top value b x3, got %+v", cs.TopValues[0])
	}
	// Ties break alphabetically
	if cs.TopValues[1].Value != "a" {
		t.Errorf("Expected a before c on tie, got %s", cs.TopValues[1].Value)
	}
}

func TestHistogram_ConstantColumnSingleBin(t *testing.T) {
	tbl := buildTable("hist", numericCol("v", 7, 7, 7, 7, 7))

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(rep.Histograms) != 1 {
		t.Fatalf("Expected 1 histogram, got %d", len(rep.Histograms))
	}
	h := rep.Histograms[0]
	if len(h.Counts) != 1 || h.Counts[0] != 5 {
		t.Errorf("Expected a single bin holding all 5 values, got %v", h.Counts)
	}
}

func TestNumericSummary_SingleValue(t *testing.T) {
	tbl := buildTable("single", numericCol("v", 42))

	rep, err := NewEngine().Analyze(tbl)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	summary := rep.Columns[0].Numeric
	if !summary.Computed {
		t.Fatal("Expected summary to be computed for a single value")
	}
	if summary.StdDev != 0 {
		t.Errorf("Expected std dev 0 with one value, got %v", summary.StdDev)
	}
	if summary.Q1 != 42 || summary.Q3 != 42 {
		t.Errorf("Expected quartiles = 42, got Q1=%v Q3=%v", summary.Q1, summary.Q3)
	}
}

func TestSampleSkewness_Symmetric(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	mean := 3.0
	std := 1.5811388300841898

	if s := sampleSkewness(data, mean, std); math.Abs(s) > 1e-9 {
		t.Errorf("Expected zero skewness for symmetric data, got %v", s)
	}
}

// Helpers

func numericCol(name string, values ...float64) table.Column {
	cells := make([]table.Value, len(values))
	for i, v := range values {
		cells[i] = table.NewNumericValue(v)
	}
	return table.Column{Name: name, Kind: table.KindNumeric, Cells: cells}
}

func buildTable(name string, cols ...table.Column) *table.Table {
	return &table.Table{Name: name, Columns: cols}
}
