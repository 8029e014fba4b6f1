package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
	"github.com/rezonia/cfdi-reader/internal/processor"
	"github.com/rezonia/cfdi-reader/internal/store"
)

// DefaultUploadName is the file name assumed for raw uploads without ?name=
const DefaultUploadName = "invoice.xml"

// DefaultMaxUploadBytes caps the request body when Config.MaxUploadBytes is unset
const DefaultMaxUploadBytes = 10 << 20

// Config holds server configuration
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	Debug          bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	store    store.Store
	logger   *zap.Logger
}

// Option configures the server
type Option func(*Server)

// WithPipeline sets the extraction pipeline
func WithPipeline(p *processor.Pipeline) Option {
	return func(s *Server) {
		if p != nil {
			s.pipeline = p
		}
	}
}

// WithStore enables the extraction history endpoints
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the server logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = processor.NewPipeline(processor.WithLogger(s.logger))
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Extraction
		v1.POST("/invoices", s.handleExtract)

		// History
		v1.GET("/invoices", s.handleList)
		v1.GET("/invoices/:id", s.handleGet)

		// Info endpoint
		v1.POST("/info", s.handleInfo)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info("Starting API server", zap.String("address", s.config.Address), zap.Bool("history", s.store != nil))
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	name, body, err := s.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	summary, err := s.pipeline.ExtractReader(name, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("Extraction failed", zap.String("name", name), zap.Error(err))

		status := http.StatusUnprocessableEntity
		if model.Kind(err) == model.KindFormat {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{
			Error: err.Error(),
			Stage: string(model.StageOf(err)),
			Kind:  model.Kind(err),
		})
		return
	}

	response := ExtractResponse{
		Source:     name,
		Summary:    summary,
		GrandTotal: summary.GrandTotal(),
	}

	if s.store != nil {
		record, err := s.store.Save(name, summary)
		if err != nil {
			s.logger.Error("Failed to store extraction", zap.String("name", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to store extraction"})
			return
		}
		response.ID = record.ID
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleList(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "extraction history is not enabled"})
		return
	}

	records, err := s.store.List()
	if err != nil {
		s.logger.Error("Failed to list extractions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list extractions"})
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{Records: records, Count: len(records)})
}

func (s *Server) handleGet(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "extraction history is not enabled"})
		return
	}

	record, err := s.store.Get(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("Failed to read extraction", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read extraction"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) handleInfo(c *gin.Context) {
	name, body, err := s.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	info, err := cfdi.Inspect(name, bytes.NewReader(body), nil)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Kind:  model.Kind(err),
		})
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		Name: name,
		Size: len(body),
		Info: info,
	})
}

// readUpload returns the uploaded document from multipart field "file" or,
// for any other content type, the raw body named by ?name=
func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	limit := s.config.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return "", nil, errors.New("missing file field")
		}
		f, err := header.Open()
		if err != nil {
			return "", nil, errors.New("failed to read uploaded file")
		}
		defer f.Close()

		body, err := io.ReadAll(f)
		if err != nil {
			return "", nil, errors.New("failed to read uploaded file")
		}
		if len(body) == 0 {
			return "", nil, errors.New("empty file")
		}
		return header.Filename, body, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return "", nil, errors.New("failed to read request body")
	}
	if len(body) == 0 {
		return "", nil, errors.New("empty request body")
	}
	return c.DefaultQuery("name", DefaultUploadName), body, nil
}
