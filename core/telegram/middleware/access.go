package middleware

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/logger"
)

// AdminOptions defines how admin-only checks behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnly lets only the configured admin through. With no admin
// configured every call is rejected.
func AdminOnly(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if user := c.Sender(); opts.AdminID != 0 && user != nil && user.ID == opts.AdminID {
				return next(c)
			}
			logAccess(Context(c), "denied")
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

func logAccess(ctx context.Context, status string) {
	logger.Info(ctx, "tg", "access.admin", slog.String("status", status))
}
