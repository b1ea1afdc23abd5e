package ui

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"goeda/app"
	"goeda/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	cfg.Paths.OutputDir = t.TempDir()

	service, err := app.NewAnalysisService(cfg, nil)
	if err != nil {
		t.Fatalf("service creation failed: %v", err)
	}

	server, err := NewServer(Config{Port: "0", GinMode: gin.TestMode}, service, nil)
	if err != nil {
		t.Fatalf("server creation failed: %v", err)
	}
	return server
}

func TestIndexPage(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Analyze") || !strings.Contains(body, "</html>") {
		t.Error("Index page missing expected content")
	}
}

func TestUploadAndViewReport(t *testing.T) {
	server := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("dataset", "data.csv")
	part.Write([]byte("a,b\n1,10\n2,20\n3,30\n4,40\n5,50\n"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect after upload, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/reports/") {
		t.Fatalf("Expected redirect to a report page, got %q", location)
	}

	req = httptest.NewRequest(http.MethodGet, location, nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for report page, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "</html>") {
		t.Error("Report page appears truncated")
	}
}

func TestUpload_RejectsUnknownExtension(t *testing.T) {
	server := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("dataset", "image.png")
	part.Write([]byte("not a table"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported extension, got %d", rec.Code)
	}
}

func TestDemoRedirectsToReport(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/demo", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect from demo, got %d", rec.Code)
	}
}

func TestReportNotFound(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/reports/does-not-exist", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown report, got %d", rec.Code)
	}
}

func TestDownloadReport(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/demo", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	location := rec.Header().Get("Location")

	req = httptest.NewRequest(http.MethodGet, location+"/download", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for download, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Error("Expected attachment disposition")
	}
}
