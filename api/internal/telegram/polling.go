package telegram

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	baseDelay = 1 * time.Second
	maxDelay  = 15 * time.Second
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return 2 * time.Second
		}
	}
	return 1 * time.Second
}

func clampDelay(d time.Duration) time.Duration {
	if d < baseDelay {
		return baseDelay
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// Run long-polls for updates until ctx is cancelled, then waits for
// in-flight updates to finish. Each update is handled on its own goroutine
// so a slow model call does not hold up other chats.
func (r *Router) Run(ctx context.Context) {
	offset := 0
	defer r.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			r.log().Info("telegram polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := r.Bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err))
			r.log().Warn("telegram polling error", zap.Error(err), zap.Duration("retry_in", d))
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			r.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer r.wg.Done()
				r.HandleUpdate(ctx, upd)
			}(upd)
		}

		if len(updates) == 0 && !sleep(ctx, 200*time.Millisecond) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
