package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"goeda/app"
	"goeda/domain/report"
	"goeda/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	cfg.Paths.OutputDir = t.TempDir()

	service, err := app.NewAnalysisService(cfg, nil)
	if err != nil {
		t.Fatalf("service creation failed: %v", err)
	}
	return NewServer(Config{Port: "0"}, service)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("dataset", filename)
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	server := newTestServer(t)

	body, contentType := multipartBody(t, "data.csv", "a,b\n1,10\n2,20\n3,30\n4,40\n5,50\n")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rep report.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if rep.Overview.Rows != 5 || rep.Overview.Columns != 2 {
		t.Errorf("Expected 5x2 overview, got %dx%d", rep.Overview.Rows, rep.Overview.Columns)
	}
	if rep.Correlation == nil || !rep.Correlation.IsDefined(0, 1) {
		t.Error("Expected a defined correlation between a and b")
	}
}

func TestAnalyzeEndpoint_NoFile(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a file, got %d", rec.Code)
	}
}

func TestAnalyzeEndpoint_FakeXLSX(t *testing.T) {
	server := newTestServer(t)

	// Delimited text behind an .xlsx name is not silently analyzed as CSV
	body, contentType := multipartBody(t, "fake.xlsx", "a,b\n1,2\n3,4\n")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("Expected 415 for non-workbook xlsx upload, got %d", rec.Code)
	}
}

func TestAnalyzeEndpoint_EmptyDataset(t *testing.T) {
	server := newTestServer(t)

	body, contentType := multipartBody(t, "empty.csv", "a,b\n")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for a dataset without rows, got %d", rec.Code)
	}
}
