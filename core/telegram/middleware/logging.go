package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/logger"
)

// Logger stores the request context and logs one sampled receipt line per
// update. Message text is never logged: it may be a password.
func Logger(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := buildContext(c)
		c.Set(keyContext, ctx)
		c.Set(keyStart, time.Now())

		if logger.ShouldSampleDebug() {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("kind", Kind(c)),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil && user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("cb_data", logger.SanitizeLimit(cb.Data, 64)))
			} else if text := c.Text(); text != "" {
				attrs = append(attrs, slog.Int("text_len", len([]rune(text))))
			}
			logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}
