package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chunkserve/pkg/cache"
	"chunkserve/pkg/config"
	"chunkserve/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server is the HTTP boundary: query validation, CORS and JSON shaping
// around the registry and the segment cache.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	store    *cache.Store
	logger   *zap.Logger
	router   *gin.Engine
}

func New(cfg *config.Config, reg *registry.Registry, store *cache.Store, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		registry: reg,
		store:    store,
		logger:   logger,
		router:   gin.New(),
	}

	s.router.Use(gin.Recovery(), requestLogger(logger), corsMiddleware())

	s.router.GET("/files", s.listFiles)
	s.router.GET("/chunk/:file_id/:chunk_number", s.getChunk)
	s.router.GET("/file/:file_id/info", s.getFileInfo)
	s.router.DELETE("/file/:file_id", s.deleteFile)
	s.router.POST("/upload", s.uploadFile)
	s.router.GET("/health", s.health)

	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("http server listening", zap.String("addr", s.cfg.ListenAddr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()[:8]
		start := time.Now()

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// corsMiddleware mirrors the permissive policy browsers need to fetch
// chunks cross-origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
