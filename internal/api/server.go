// =============================================
// File: internal/api/server.go
// =============================================
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/dex"
	"github.com/rovshanmuradov/swap-builder/internal/swap"
)

const APIVersion = "v1"

// Builder is the swap pipeline served over HTTP.
type Builder interface {
	Build(ctx context.Context, req swap.BuildRequest) (*swap.BuildResult, error)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string   `json:"error"`
	Kind  dex.Kind `json:"kind,omitempty"`
}

type Server struct {
	builder Builder
	logger  *zap.Logger
	server  *http.Server
}

func NewServer(addr string, builder Builder, logger *zap.Logger) *Server {
	s := &Server{
		builder: builder,
		logger:  logger.Named("api"),
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router wires the HTTP routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware())
	r.Use(s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group(APIVersion)
	v1.POST("/swap/build", s.buildSwap)
	return r
}

// Start blocks until the server stops. ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server started", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to stop HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) buildSwap(c *gin.Context) {
	var req swap.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed request body: " + err.Error(), Kind: dex.KindValidation})
		return
	}

	res, err := s.builder.Build(c.Request.Context(), req)
	if err != nil {
		kind := dex.KindOf(err)
		c.JSON(StatusFor(err), ErrorResponse{Error: err.Error(), Kind: kind})
		return
	}
	c.JSON(http.StatusOK, res)
}

// StatusFor maps a build error to an HTTP status.
func StatusFor(err error) int {
	switch dex.KindOf(err) {
	case dex.KindValidation:
		return http.StatusBadRequest
	case dex.KindUnsupportedVenue:
		return http.StatusNotFound
	case dex.KindVenueQuote:
		return http.StatusBadGateway
	case dex.KindCompile:
		return http.StatusUnprocessableEntity
	case dex.KindTransientNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
