package middleware

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/logger"
)

const (
	keyContext = "logger_ctx"
	keyStart   = "update_start"
)

// Kind names the update type: "callback", "message" or "other".
func Kind(c tele.Context) string {
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}

// Context returns the request context stored by Logger, building one from
// the update when the middleware did not run.
func Context(c tele.Context) context.Context {
	if ctx, ok := c.Get(keyContext).(context.Context); ok {
		return ctx
	}
	ctx := buildContext(c)
	c.Set(keyContext, ctx)
	return ctx
}

func buildContext(c tele.Context) context.Context {
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	return logger.WithLogger(ctx, logger.Component("tg"))
}
