package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mediclick/api/internal/analysis"
	"mediclick/api/internal/analysis/gemini"
	"mediclick/api/internal/config"
	"mediclick/api/internal/handle"
	"mediclick/api/internal/httpserver"
	"mediclick/api/internal/logger"
	"mediclick/api/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot, _ := logger.New("info")
		boot.Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, closeGateway, err := newGateway(cfg)
	if err != nil {
		log.Fatal("failed to create gemini client", zap.Error(err))
	}
	defer closeGateway()

	svc := analysis.NewService(gw, analysis.Options{
		PromptTemplate: cfg.App.PromptTemplate,
		Timeout:        cfg.Gemini.Timeout,
	}, log.Named("analysis"))

	info := handle.Info{
		Service:  cfg.App.ServiceName,
		Model:    cfg.App.ModelLabel,
		Provider: cfg.App.ProviderLabel,
	}
	h := handle.New(svc, handle.Options{
		Info:           info,
		StaticDir:      cfg.Server.StaticDir,
		MaxUploadBytes: cfg.App.MaxUploadBytes,
	}, log.Named("handle"))

	var writeTimeout time.Duration
	if cfg.Gemini.Timeout > 0 {
		writeTimeout = cfg.Gemini.Timeout + 30*time.Second
	}
	srv := httpserver.New(cfg.Addr(), h, writeTimeout, log.Named("http"))

	tgDone := make(chan struct{})
	if cfg.Telegram.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			log.Fatal("failed to start telegram bot", zap.Error(err))
		}
		r := &telegram.Router{
			Bot:           bot,
			Svc:           svc,
			Service:       info.Service,
			Model:         info.Model,
			Provider:      info.Provider,
			Log:           log.Named("telegram"),
			MaxImageBytes: cfg.App.MaxUploadBytes,
		}
		log.Info("telegram front end enabled", zap.String("bot", bot.Self.UserName))
		go func() {
			r.Run(ctx)
			close(tgDone)
		}()
	} else {
		close(tgDone)
	}

	log.Info("starting",
		zap.String("service", info.Service),
		zap.String("model", cfg.Gemini.Model),
		zap.String("transport", cfg.Gemini.Transport),
		zap.String("static_dir", cfg.Server.StaticDir))

	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	<-tgDone
	log.Info("server exited")
}

func newGateway(cfg *config.Config) (analysis.Gateway, func(), error) {
	if cfg.Gemini.Transport == config.TransportREST {
		return gemini.NewREST(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL), func() {}, nil
	}
	e, err := gemini.NewSDK(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, nil, err
	}
	return e, func() { _ = e.Close() }, nil
}
