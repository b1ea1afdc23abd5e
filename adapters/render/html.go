package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"goeda/domain/report"
	"goeda/domain/table"
)

//go:embed templates/report.html
var templateFiles embed.FS

// HTMLRenderer turns a report into a self-contained HTML document
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the embedded report template
func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcMap := template.FuncMap{
		"f":   func(v float64) string { return fmt.Sprintf("%.4g", v) },
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	}
	tmpl, err := template.New("report.html").Funcs(funcMap).ParseFS(templateFiles, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// histogramView pairs a chart with its caption for the template
type histogramView struct {
	Column string
	SVG    template.HTML
}

// reportView is the template data for one rendered report
type reportView struct {
	Report             *report.Report
	GeneratedAt        string
	NumericColumns     []report.ColumnSummary
	CategoricalColumns []report.ColumnSummary
	CorrelationSVG     template.HTML
	HistogramSVGs      []histogramView
}

// Render produces the HTML document for a report
func (r *HTMLRenderer) Render(rep *report.Report) ([]byte, error) {
	view := reportView{
		Report:      rep,
		GeneratedAt: rep.GeneratedAt.Time().Format("2006-01-02 15:04:05"),
	}
	for _, col := range rep.Columns {
		switch {
		case col.Kind == table.KindNumeric && col.Numeric != nil:
			view.NumericColumns = append(view.NumericColumns, col)
		case col.Categorical != nil:
			view.CategoricalColumns = append(view.CategoricalColumns, col)
		}
	}
	view.CorrelationSVG = heatmapSVG(rep.Correlation)
	for _, h := range rep.Histograms {
		if svg := histogramSVG(h); svg != "" {
			view.HistogramSVGs = append(view.HistogramSVGs, histogramView{Column: h.Column, SVG: svg})
		}
	}

	// Render to a buffer first to catch template errors before any output
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the report and writes it under outputDir with a
// timestamped filename, returning the path written.
func (r *HTMLRenderer) WriteFile(rep *report.Report, outputDir string) (string, error) {
	content, err := r.Render(rep)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("eda_report_%s.html", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
