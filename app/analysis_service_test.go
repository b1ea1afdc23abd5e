package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/domain/core"
	"goeda/domain/report"
	"goeda/internal/config"
	"goeda/internal/errors"
	"goeda/internal/testkit"
	"goeda/ports"
)

// memoryRepository keeps report runs in memory for service tests
type memoryRepository struct {
	saved   []*report.Report
	saveErr error
}

func (m *memoryRepository) Save(ctx context.Context, rep *report.Report) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, rep)
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id core.ReportID) (*ports.ReportRun, error) {
	for _, rep := range m.saved {
		if rep.ID == id {
			return &ports.ReportRun{ID: rep.ID, DatasetName: rep.DatasetName, Report: rep}, nil
		}
	}
	return nil, errors.NotFound("report")
}

func (m *memoryRepository) List(ctx context.Context, limit, offset int) ([]ports.ReportRun, error) {
	runs := make([]ports.ReportRun, 0, len(m.saved))
	for _, rep := range m.saved {
		runs = append(runs, ports.ReportRun{ID: rep.ID, DatasetName: rep.DatasetName})
	}
	return runs, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id core.ReportID) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Paths.OutputDir = t.TempDir()
	return cfg
}

func TestAnalyzeStream(t *testing.T) {
	service, err := NewAnalysisService(testConfig(t), nil)
	require.NoError(t, err)

	csvData := "a,b\n1,10\n2,20\n3,30\n4,40\n"
	result, err := service.AnalyzeStream(context.Background(), strings.NewReader(csvData), "tiny.csv")
	require.NoError(t, err)

	assert.Equal(t, "tiny.csv", result.Report.DatasetName)
	assert.Equal(t, 4, result.Report.Overview.Rows)
	assert.Equal(t, 2, result.Report.Overview.Columns)
	assert.NotEmpty(t, result.Markdown)
	assert.NotEmpty(t, result.Report.ID)
}

func TestAnalyzeStream_MalformedInput(t *testing.T) {
	service, err := NewAnalysisService(testConfig(t), nil)
	require.NoError(t, err)

	_, err = service.AnalyzeStream(context.Background(), strings.NewReader("a,b\n"), "headers.csv")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestAnalyze_PersistsHistory(t *testing.T) {
	repo := &memoryRepository{}
	service, err := NewAnalysisService(testConfig(t), repo)
	require.NoError(t, err)

	gen := testkit.NewDatasetGenerator(testkit.DefaultGeneratorConfig())
	result, err := service.AnalyzeStream(context.Background(), strings.NewReader(gen.GenerateCSV()), "sample.csv")
	require.NoError(t, err)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, result.Report.ID, repo.saved[0].ID)
}

func TestAnalyze_HistoryFailureIsNotFatal(t *testing.T) {
	repo := &memoryRepository{saveErr: fmt.Errorf("connection refused")}
	service, err := NewAnalysisService(testConfig(t), repo)
	require.NoError(t, err)

	csvData := "a\n1\n2\n3\n"
	result, err := service.AnalyzeStream(context.Background(), strings.NewReader(csvData), "still-ok.csv")
	require.NoError(t, err)
	assert.NotNil(t, result.Report)
}

func TestAnalyzeStream_MaxRows(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.MaxRows = 3
	service, err := NewAnalysisService(cfg, nil)
	require.NoError(t, err)

	csvData := "a\n1\n2\n3\n4\n5\n6\n"
	result, err := service.AnalyzeStream(context.Background(), strings.NewReader(csvData), "capped.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Report.Overview.Rows)
}

func TestWriteHTML(t *testing.T) {
	cfg := testConfig(t)
	service, err := NewAnalysisService(cfg, nil)
	require.NoError(t, err)

	gen := testkit.NewDatasetGenerator(testkit.DefaultGeneratorConfig())
	result, err := service.AnalyzeStream(context.Background(), strings.NewReader(gen.GenerateCSV()), "sample.csv")
	require.NoError(t, err)

	path, err := service.WriteHTML(result.Report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, cfg.Paths.OutputDir))
	assert.True(t, strings.HasSuffix(path, ".html"))
}
