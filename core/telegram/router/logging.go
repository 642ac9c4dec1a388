package router

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
)

func logSummary(c tele.Context, ev chat.Event, res dispatch.Result, start time.Time, err error) {
	handler := res.Route
	status, outcome := "ok", "ok"
	if !res.Matched {
		handler, status = "unrouted", "skip"
	}
	if err != nil {
		status, outcome = "fail", "fail"
	}
	ctx := logger.WithHandler(middleware.Context(c), handler)

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.String("kind", string(ev.Kind())),
		slog.Int("messages", res.Sent),
		slog.Bool("transitioned", res.Transitioned),
		slog.Duration("duration", logger.Took(start)),
	}
	if cb, ok := chat.AsCallback(ev); ok {
		attrs = append(attrs, slog.String("cb_key", callbackKey(cb.Token)))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "update.handled", attrs...)
}

// callbackKey drops numeric segments so ids do not end up in logs.
func callbackKey(token string) string {
	parts := strings.Split(token, ":")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ":")
}

func errorCode(err error) string {
	type coder interface{ Code() string }
	if c, ok := err.(coder); ok {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
