// Package httpapi exposes stage counts and pain points to the dashboard over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/usecase"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Server serves a read-only view of an enriched corpus.
type Server struct {
	corpus     ports.CorpusSource
	aggregator *usecase.PainPointAggregator
	defaults   usecase.Query
	logger     *slog.Logger
	engine     *gin.Engine
}

// NewServer builds the router. The corpus is re-read on every request so a new
// classification run is picked up without a restart. Request parameters
// override defaults; a zero defaults value means usecase.DefaultQuery.
func NewServer(corpus ports.CorpusSource, aggregator *usecase.PainPointAggregator, defaults usecase.Query, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if defaults == (usecase.Query{}) {
		defaults = usecase.DefaultQuery("")
	}
	s := &Server{corpus: corpus, aggregator: aggregator, defaults: defaults, logger: logger}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := r.Group("/api")
	api.GET("/stages", s.listStages)
	api.GET("/stages/:stage/pain-points", s.painPoints)

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) listStages(c *gin.Context) {
	corpus, ok := s.load(c)
	if !ok {
		return
	}
	ceiling, ok := floatQuery(c, "ceiling", s.defaults.SentimentCeiling)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": usecase.CountStages(corpus, ceiling)})
}

func (s *Server) painPoints(c *gin.Context) {
	q := s.defaults
	q.Stage = c.Param("stage")

	var ok bool
	if q.SentimentCeiling, ok = floatQuery(c, "ceiling", q.SentimentCeiling); !ok {
		return
	}
	if q.MinTextLength, ok = intQuery(c, "min_length", q.MinTextLength); !ok {
		return
	}
	if q.Phrases.TopK, ok = intQuery(c, "top_k", q.Phrases.TopK); !ok {
		return
	}

	corpus, ok := s.load(c)
	if !ok {
		return
	}

	report, err := s.aggregator.Report(c.Request.Context(), corpus, q)
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.logger.Error("pain point extraction failed", "stage", q.Stage, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "pain point extraction failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) load(c *gin.Context) ([]domain.EnrichedPost, bool) {
	corpus, err := s.corpus.LoadEnriched(c.Request.Context())
	if err != nil {
		s.logger.Error("load corpus failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "corpus unavailable"})
		return nil, false
	}
	return corpus, true
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func floatQuery(c *gin.Context, key string, def float64) (float64, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return v, true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return v, true
}
