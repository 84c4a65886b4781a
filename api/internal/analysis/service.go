package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Gateway makes the single call to the generative model.
type Gateway interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

const DefaultPromptTemplate = "Analyze this medical image. Patient's question: %s"

type Options struct {
	PromptTemplate string
	Timeout        time.Duration // 0 means no limit beyond the caller's context
}

type Service struct {
	gw  Gateway
	opt Options
	log *zap.Logger
	now func() time.Time
}

func NewService(gw Gateway, opt Options, log *zap.Logger) *Service {
	if opt.PromptTemplate == "" {
		opt.PromptTemplate = DefaultPromptTemplate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gw: gw, opt: opt, log: log, now: time.Now}
}

func (s *Service) BuildPrompt(query string) string {
	return fmt.Sprintf(s.opt.PromptTemplate, query)
}

// Analyze runs one image+query pair through the gateway. Every error it
// returns is a *Failure.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return Result{}, Validation(MsgNoImage)
	}

	if s.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opt.Timeout)
		defer cancel()
	}

	prompt := s.BuildPrompt(req.Query)
	started := time.Now()
	text, err := s.gw.Generate(ctx, prompt, req.Image.Data, req.Image.MIMEType)
	if err != nil {
		f := AsFailure(err)
		s.log.Error("inference failed",
			zap.String("kind", string(f.Kind)),
			zap.String("filename", req.Image.Filename),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return Result{}, f
	}
	if strings.TrimSpace(text) == "" {
		s.log.Warn("inference returned no text",
			zap.String("filename", req.Image.Filename),
			zap.Duration("elapsed", time.Since(started)))
		return Result{}, &Failure{Kind: KindEmptyResponse, Message: MsgEmptyResponse, Err: ErrEmptyResponse}
	}

	s.log.Info("inference done",
		zap.String("filename", req.Image.Filename),
		zap.String("mime", req.Image.MIMEType),
		zap.Int("image_bytes", len(req.Image.Data)),
		zap.Int("answer_chars", len(text)),
		zap.Duration("elapsed", time.Since(started)))

	return Result{
		Content:       text,
		CompletedAt:   s.now(),
		Query:         req.Query,
		ImageFilename: req.Image.Filename,
	}, nil
}
