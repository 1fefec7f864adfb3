package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qr-logo-bot/internal/config"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/models"
	"qr-logo-bot/internal/services"
	"qr-logo-bot/internal/validation"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the QR synthesizer over HTTP
type Server struct {
	router    *gin.Engine
	server    *http.Server
	qrService *services.QRService
	config    *config.Config
	logger    *logrus.Logger
}

// NewServer creates a new HTTP API server
func NewServer(cfg *config.Config, qrService *services.QRService, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		router:    r,
		qrService: qrService,
		config:    cfg,
		logger:    logger,
	}

	r.Use(s.requestLogger())
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/qr", s.handleQR)
	}

	s.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves requests until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP API listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Stopping HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// handleHealth reports that the process is up
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleQR renders a QR code for ?url= with optional fg, bg and size
func (s *Server) handleQR(c *gin.Context) {
	url, err := validation.NormalizeURL(c.Query("url"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	style := s.qrService.DefaultStyle()
	if fg := strings.TrimSpace(c.Query("fg")); fg != "" {
		style.Foreground = fg
	}
	if bg := strings.TrimSpace(c.Query("bg")); bg != "" {
		style.Background = bg
	}
	if raw := c.Query("size"); raw != "" {
		size, err := validation.ParseModuleSize(raw, s.config.QR.MinModuleSize, s.config.QR.MaxModuleSize)
		if err != nil {
			s.writeError(c, err)
			return
		}
		style.ModuleSize = size
	}

	img, err := s.qrService.Synthesize(models.QRRequest{URL: url, Style: style})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("X-QR-Version", strconv.Itoa(img.Version))
	c.Data(http.StatusOK, "image/png", img.PNG)
}

// writeError maps synthesis errors to HTTP status codes
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		colorErr      *apperrors.ColorError
		encodeErr     *apperrors.EncodeError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &colorErr):
		status = http.StatusBadRequest
	case errors.As(err, &encodeErr):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Errorf("QR request failed: %v", err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// requestLogger logs each request through logrus
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		}).Info("HTTP request")
	}
}
