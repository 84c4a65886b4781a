package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mediclick/api/internal/analysis"
)

// maxMessageRunes keeps replies under Telegram's 4096 character limit.
const maxMessageRunes = 3900

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetFileDirectURL(fileID string) (string, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

type Router struct {
	Bot      Bot
	Svc      Analyzer
	Service  string
	Model    string
	Provider string
	Log      *zap.Logger

	// MaxImageBytes caps photo downloads; 0 disables the cap.
	MaxImageBytes int64

	wg sync.WaitGroup
}

func (r *Router) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}

	switch {
	case len(msg.Photo) > 0:
		// largest size is last
		ph := msg.Photo[len(msg.Photo)-1]
		r.acceptImage(ctx, cid, ph.FileID, "", "", msg.Caption)
	case msg.Document != nil && isImageMIME(msg.Document.MimeType):
		d := msg.Document
		r.acceptImage(ctx, cid, d.FileID, d.FileName, d.MimeType, msg.Caption)
	default:
		r.send(cid, "Send a photo with your question in the caption.")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, fmt.Sprintf("%s: send a medical image with your question as the caption and I will analyze it.\nCommands: /health", r.Service))
	case "health":
		r.send(cid, fmt.Sprintf("✅ %s is healthy\nModel: %s\nProvider: %s", r.Service, r.Model, r.Provider))
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log().Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) SendResult(chatID int64, res analysis.Result) {
	r.send(chatID, truncate(res.Content, maxMessageRunes))
}

func (r *Router) SendError(chatID int64, err error) {
	f := analysis.AsFailure(err)
	r.send(chatID, "⚠️ "+f.Message)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
