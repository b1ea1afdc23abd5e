package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"goeda/app"
	"goeda/domain/core"
	"goeda/domain/report"
	"goeda/internal"
	"goeda/internal/errors"
	"goeda/internal/testkit"
	"goeda/ports"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Server represents the web server for the EDA UI
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	history   ports.ReportRepository // nil when persistence is disabled
	templates *template.Template
	log       *internal.Logger
	port      string

	// Recent reports kept in memory so report pages work without a database
	mu     sync.Mutex
	recent map[core.ReportID]*report.Report
	order  []core.ReportID
}

// Config holds UI server configuration
type Config struct {
	Port        string
	GinMode     string
	MaxFileSize int64
}

// maxRecentReports bounds the in-memory report cache
const maxRecentReports = 20

// NewServer creates the UI server
func NewServer(config Config, service *app.AnalysisService, history ports.ReportRepository) (*Server, error) {
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	funcMap := template.FuncMap{
		"f":   func(v float64) string { return fmt.Sprintf("%.4g", v) },
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		service:   service,
		history:   history,
		templates: templates,
		log:       internal.NewDefaultLogger(),
		port:      config.Port,
		recent:    make(map[core.ReportID]*report.Report),
	}
	if config.MaxFileSize > 0 {
		s.router.MaxMultipartMemory = config.MaxFileSize
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/demo", s.handleDemo)
	s.router.GET("/reports/:id", s.handleReport)
	s.router.GET("/reports/:id/download", s.handleDownload)
}

// Start begins serving; blocks until the listener fails
func (s *Server) Start() error {
	s.log.Info("UI server listening on :%s", s.port)
	return s.router.Run(":" + s.port)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(c *gin.Context) {
	var runs []ports.ReportRun
	if s.history != nil {
		var err error
		runs, err = s.history.List(c.Request.Context(), 20, 0)
		if err != nil {
			s.log.Warn("failed to list report history: %v", err)
		}
	}

	s.renderTemplate(c, "index.html", gin.H{
		"Runs": runs,
	})
}

// handleUpload accepts a CSV/TSV upload and shows its report
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "No file uploaded. Choose a CSV file first.")
		return
	}
	defer file.Close()

	name := header.Filename
	if !hasTabularExt(name) {
		s.renderError(c, http.StatusBadRequest, "Unsupported file type. Upload a .csv or .tsv file.")
		return
	}

	result, err := s.service.AnalyzeStream(c.Request.Context(), file, name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsMalformedInput(err) {
			status = http.StatusUnprocessableEntity
		}
		s.renderError(c, status, "Error processing file: "+err.Error())
		return
	}

	s.remember(result.Report)
	c.Redirect(http.StatusSeeOther, "/reports/"+result.Report.ID.String())
}

// handleDemo analyzes a generated sample dataset so the UI can be tried
// without uploading anything
func (s *Server) handleDemo(c *gin.Context) {
	gen := testkit.NewDatasetGenerator(testkit.DefaultGeneratorConfig())
	csvData := gen.GenerateCSV()

	result, err := s.service.AnalyzeStream(c.Request.Context(), strings.NewReader(csvData), "sample_employees.csv")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Demo analysis failed: "+err.Error())
		return
	}

	s.remember(result.Report)
	c.Redirect(http.StatusSeeOther, "/reports/"+result.Report.ID.String())
}

func (s *Server) handleReport(c *gin.Context) {
	rep, ok := s.lookup(c, core.ReportID(c.Param("id")))
	if !ok {
		s.renderError(c, http.StatusNotFound, "Report not found. It may have expired; re-upload the file.")
		return
	}

	content, err := s.service.RenderHTML(rep)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Report rendering failed: "+err.Error())
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", content)
}

// handleDownload serves the self-contained report as an attachment
func (s *Server) handleDownload(c *gin.Context) {
	rep, ok := s.lookup(c, core.ReportID(c.Param("id")))
	if !ok {
		s.renderError(c, http.StatusNotFound, "Report not found.")
		return
	}

	content, err := s.service.RenderHTML(rep)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Report rendering failed: "+err.Error())
		return
	}

	filename := fmt.Sprintf("eda_report_%s.html", sanitizeFilename(rep.DatasetName))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", content)
}

// remember caches a report in memory, evicting the oldest beyond the cap
func (s *Server) remember(rep *report.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent[rep.ID] = rep
	s.order = append(s.order, rep.ID)
	for len(s.order) > maxRecentReports {
		delete(s.recent, s.order[0])
		s.order = s.order[1:]
	}
}

// lookup finds a report in the memory cache, falling back to history
func (s *Server) lookup(c *gin.Context, id core.ReportID) (*report.Report, bool) {
	if core.ID(id).IsEmpty() {
		return nil, false
	}

	s.mu.Lock()
	rep, ok := s.recent[id]
	s.mu.Unlock()
	if ok {
		return rep, true
	}

	if s.history != nil {
		run, err := s.history.GetByID(c.Request.Context(), id)
		if err == nil && run.Report != nil {
			return run.Report, true
		}
	}
	return nil, false
}

func (s *Server) renderError(c *gin.Context, status int, message string) {
	c.Status(status)
	s.renderTemplate(c, "error.html", gin.H{"Message": message})
}

func hasTabularExt(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".tsv")
}

func sanitizeFilename(name string) string {
	name = strings.TrimSuffix(name, ".csv")
	name = strings.TrimSuffix(name, ".tsv")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
