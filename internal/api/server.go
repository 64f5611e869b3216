package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dream-tool/internal/assessment"
	"dream-tool/internal/assessor"
	"dream-tool/internal/facility"
	"dream-tool/internal/finance"
	"dream-tool/internal/metrics"
	"dream-tool/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Store is the read side of assessment persistence.
type Store interface {
	GetAssessment(id string) (*assessor.Record, error)
	GetLatestAssessment() (*assessor.Record, error)
	ListAssessments(limit int) ([]assessor.Record, error)
}

type Server struct {
	router   *gin.Engine
	server   *http.Server
	assessor *assessor.Assessor
	db       Store
	metrics  *metrics.Metrics
	port     int
}

type ServerConfig struct {
	Port     int
	Assessor *assessor.Assessor
	Database Store
	Metrics  *metrics.Metrics
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	s := &Server{
		router:   router,
		assessor: cfg.Assessor,
		db:       cfg.Database,
		metrics:  cfg.Metrics,
		port:     cfg.Port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api/v1")
	{
		api.GET("/assumptions", s.assumptionsHandler)
		api.POST("/assessments", s.createAssessmentHandler)
		api.GET("/assessments", s.listAssessmentsHandler)
		api.GET("/assessments/latest", s.latestAssessmentHandler)
		api.GET("/assessments/:id", s.getAssessmentHandler)
		api.POST("/finance/npv-irr", s.npvIRRHandler)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Int("port", s.port).Msg("API server starting")
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := gin.H{
		"status":    "healthy",
		"storage":   s.db != nil,
		"timestamp": time.Now(),
	}
	if latest := s.assessor.Latest(); latest != nil {
		resp["last_assessment_at"] = latest.CreatedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) assumptionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.assessor.Assumptions())
}

// assessmentRequest is a facility description, as in the YAML facility
// files, plus optional assumption overrides applied over the defaults.
type assessmentRequest struct {
	facility.Facility
	Assumptions json.RawMessage `json:"assumptions"`
}

func (s *Server) createAssessmentHandler(c *gin.Context) {
	var body assessmentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	req := assessor.Request{FacilityName: body.Name}

	if len(body.Assumptions) > 0 && string(body.Assumptions) != "null" {
		a := s.assessor.Assumptions()
		if err := json.Unmarshal(body.Assumptions, &a); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assumptions: " + err.Error()})
			return
		}
		req.Assumptions = &a
	}

	profile, err := body.Profile()
	if err != nil {
		s.writeError(c, err)
		return
	}
	req.Profile = profile

	rec, err := s.assessor.Assess(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listAssessmentsHandler(c *gin.Context) {
	if !s.requireStorage(c) {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit'"})
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := s.db.ListAssessments(limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assessments": records,
		"count":       len(records),
	})
}

func (s *Server) latestAssessmentHandler(c *gin.Context) {
	if s.db == nil {
		if rec := s.assessor.Latest(); rec != nil {
			c.JSON(http.StatusOK, rec)
			return
		}
		s.writeError(c, storage.ErrNotFound)
		return
	}

	rec, err := s.db.GetLatestAssessment()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) getAssessmentHandler(c *gin.Context) {
	if !s.requireStorage(c) {
		return
	}

	rec, err := s.db.GetAssessment(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type npvIRRRequest struct {
	CashFlows []float64 `json:"cash_flows" binding:"required,min=1"`
	Rate      *float64  `json:"rate"`
}

func (s *Server) npvIRRHandler(c *gin.Context) {
	var body npvIRRRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	a := s.assessor.Assumptions()
	rate := a.DiscountRate
	if body.Rate != nil {
		rate = *body.Rate
	}
	if rate <= -1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'rate' must be greater than -1"})
		return
	}

	npv := finance.NPV(body.CashFlows, rate)
	if !finance.IsFinite(npv) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("NPV overflows at rate %v: %v", rate, npv)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rate": rate,
		"npv":  npv,
		"irr": finance.IRR(body.CashFlows, finance.IRROptions{
			InitialGuess:  a.IRR.InitialGuess,
			Tolerance:     a.IRR.Tolerance,
			MaxIterations: a.IRR.MaxIterations,
		}),
	})
}

func (s *Server) requireStorage(c *gin.Context) bool {
	if s.db != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is not configured"})
	return false
}

func (s *Server) writeError(c *gin.Context, err error) {
	var verr *assessment.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "problems": verr.Problems})
	case errors.Is(err, assessment.ErrInvalidProfile), errors.Is(err, assessment.ErrInvalidAssumptions),
		errors.Is(err, assessment.ErrNumericOverflow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
