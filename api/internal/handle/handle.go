package handle

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediclick/api/internal/analysis"
)

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// Info is the static description reported by /health and model_info.
type Info struct {
	Service  string
	Model    string
	Provider string
}

type Options struct {
	Info           Info
	StaticDir      string
	MaxUploadBytes int64 // 0 disables the limit
}

type Handle struct {
	svc Analyzer
	opt Options
	log *zap.Logger
	now func() time.Time
}

func New(svc Analyzer, opt Options, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.StaticDir == "" {
		opt.StaticDir = "."
	}
	return &Handle{svc: svc, opt: opt, log: log, now: time.Now}
}

func (h *Handle) Routes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/upload_and_query", h.UploadAndQuery)
	r.GET("/", h.Index)
	r.NoRoute(h.Static)
}
