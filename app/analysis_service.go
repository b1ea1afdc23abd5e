package app

import (
	"context"
	"io"
	"time"

	"goeda/adapters/coercer"
	"goeda/adapters/reader"
	"goeda/adapters/render"
	"goeda/adapters/stats/engine"
	"goeda/domain/report"
	"goeda/internal"
	"goeda/internal/config"
	"goeda/internal/errors"
	"goeda/ports"
)

// AnalysisService wires reading, analysis and rendering into the single
// pipeline the CLI and servers call.
type AnalysisService struct {
	engine   *engine.SummaryStatsEngine
	renderer *render.HTMLRenderer
	history  ports.ReportRepository // nil when persistence is disabled
	cfg      config.AnalysisConfig
	outDir   string
	log      *internal.Logger
}

// AnalysisResult bundles a generated report with its render outputs
type AnalysisResult struct {
	Report    *report.Report
	HTMLPath  string // set when the report was written to disk
	Markdown  string
	ElapsedMs int64
}

// NewAnalysisService creates the service. history may be nil to disable
// report persistence.
func NewAnalysisService(cfg *config.Config, history ports.ReportRepository) (*AnalysisService, error) {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	return &AnalysisService{
		engine: engine.NewEngineWithConfig(engine.Config{
			TopValues:     cfg.Analysis.TopValues,
			HistogramBins: cfg.Analysis.HistogramBins,
		}),
		renderer: renderer,
		history:  history,
		cfg:      cfg.Analysis,
		outDir:   cfg.Paths.OutputDir,
		log:      internal.NewDefaultLogger(),
	}, nil
}

// coercionConfig maps analysis thresholds onto the coercer
func (s *AnalysisService) coercionConfig() coercer.CoercionConfig {
	return coercer.CoercionConfig{
		NumericThreshold:   s.cfg.NumericRatio,
		TimestampThreshold: s.cfg.DatetimeRatio,
		MaxCategories:      s.cfg.CategoricalMax,
	}
}

// AnalyzeFile loads a file from disk and produces a report
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string) (*AnalysisResult, error) {
	start := time.Now()

	r := reader.NewDataReaderWithConfig(path, s.coercionConfig()).WithMaxRows(s.cfg.MaxRows)
	t, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	return s.analyze(ctx, start, t.Name, func() (*report.Report, error) {
		return s.engine.Analyze(t)
	})
}

// AnalyzeStream analyzes data from an already-open stream, e.g. an HTTP
// upload. The name picks the parser (xlsx vs delimited) and labels the
// resulting table.
func (s *AnalysisService) AnalyzeStream(ctx context.Context, src io.Reader, name string) (*AnalysisResult, error) {
	start := time.Now()

	r := reader.NewDataReaderWithConfig(name, s.coercionConfig()).WithMaxRows(s.cfg.MaxRows)
	t, err := r.ReadFrom(src, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}

	return s.analyze(ctx, start, name, func() (*report.Report, error) {
		return s.engine.Analyze(t)
	})
}

func (s *AnalysisService) analyze(ctx context.Context, start time.Time, name string, run func() (*report.Report, error)) (*AnalysisResult, error) {
	rep, err := run()
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Save(ctx, rep); err != nil {
			// History is best-effort; the report itself is still valid
			s.log.Warn("failed to persist report for %s: %v", name, err)
		}
	}

	return &AnalysisResult{
		Report:    rep,
		Markdown:  render.Markdown(rep),
		ElapsedMs: time.Since(start).Milliseconds(),
	}, nil
}

// WriteHTML renders the report to the configured output directory
func (s *AnalysisService) WriteHTML(rep *report.Report) (string, error) {
	return s.renderer.WriteFile(rep, s.outDir)
}

// RenderHTML returns the report document without writing it
func (s *AnalysisService) RenderHTML(rep *report.Report) ([]byte, error) {
	return s.renderer.Render(rep)
}
