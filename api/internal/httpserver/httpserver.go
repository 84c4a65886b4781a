package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediclick/api/internal/handle"
)

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewRouter wires middlewares and the application routes.
func NewRouter(h *handle.Handle, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(log))
	h.Routes(router)
	return router
}

// New builds the HTTP server. writeTimeout must leave room for the model
// call, so callers pass the inference timeout plus a margin (0 = none).
func New(addr string, h *handle.Handle, writeTimeout time.Duration, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h, log),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      writeTimeout,
			MaxHeaderBytes:    1 << 20, // 1 MB
		},
		log: log,
	}
}

func (s *Server) Run() error {
	s.log.Info("listening", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
