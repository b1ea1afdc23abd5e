package testkit

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"goeda/domain/table"
)

// GeneratorConfig configures the sample dataset generator
type GeneratorConfig struct {
	Rows        int     `json:"rows"`
	MissingRate float64 `json:"missing_rate"`
	OutlierRate float64 `json:"outlier_rate"`
	Seed        int64   `json:"seed"`
}

// DefaultGeneratorConfig returns sensible defaults for demo data
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rows:        200,
		MissingRate: 0.05,
		OutlierRate: 0.02,
		Seed:        42,
	}
}

// DatasetGenerator produces deterministic sample tables for tests and the
// demo page. Same seed, same dataset.
type DatasetGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewDatasetGenerator creates a generator with the given config
func NewDatasetGenerator(config GeneratorConfig) *DatasetGenerator {
	return &DatasetGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var cities = []string{"New York", "London", "Paris", "Tokyo", "Berlin"}

// Generate builds a mixed-kind table with correlated numeric columns,
// injected missing cells and occasional outliers.
func (g *DatasetGenerator) Generate() *table.Table {
	rows := g.config.Rows

	age := make([]table.Value, rows)
	salary := make([]table.Value, rows)
	score := make([]table.Value, rows)
	city := make([]table.Value, rows)
	joined := make([]table.Value, rows)

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < rows; i++ {
		a := 22 + g.rng.Float64()*40
		// Salary tracks age with noise so correlation tests have signal
		s := 30000 + a*1200 + g.rng.NormFloat64()*5000
		if g.rng.Float64() < g.config.OutlierRate {
			s *= 6
		}
		sc := g.rng.NormFloat64()*15 + 70

		age[i] = g.maybeMissing(table.NewNumericValue(float64(int(a))))
		salary[i] = g.maybeMissing(table.NewNumericValue(s))
		score[i] = g.maybeMissing(table.NewNumericValue(sc))
		city[i] = g.maybeMissing(table.NewStringValue(cities[g.rng.Intn(len(cities))]))
		joined[i] = table.NewTimestampValue(start.AddDate(0, 0, g.rng.Intn(365)))
	}

	return &table.Table{
		Name: "sample_employees",
		Columns: []table.Column{
			{Name: "age", Kind: table.KindNumeric, Cells: age},
			{Name: "salary", Kind: table.KindNumeric, Cells: salary},
			{Name: "score", Kind: table.KindNumeric, Cells: score},
			{Name: "city", Kind: table.KindCategorical, Cells: city},
			{Name: "joined", Kind: table.KindDatetime, Cells: joined},
		},
	}
}

// GenerateCSV renders the generated table as CSV text for reader tests
// and the demo download.
func (g *DatasetGenerator) GenerateCSV() string {
	t := g.Generate()

	var b strings.Builder
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(col.Name)
	}
	b.WriteString("\n")
	for i := 0; i < t.RowCount(); i++ {
		for j, col := range t.Columns {
			if j > 0 {
				b.WriteString(",")
			}
			cell := col.Cells[i]
			if cell.IsMissing {
				continue
			}
			if cell.NumericVal != nil {
				fmt.Fprintf(&b, "%g", *cell.NumericVal)
			} else {
				b.WriteString(cell.String())
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (g *DatasetGenerator) maybeMissing(v table.Value) table.Value {
	if g.rng.Float64() < g.config.MissingRate {
		return table.NewMissingValue()
	}
	return v
}
