// Package router feeds Telegram updates into the conversation dispatcher.
package router

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/dispatch"
	tg "github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
)

// Dispatcher is the conversation entry point.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev chat.Event) (dispatch.Result, error)
}

// Routes binds text messages and callback presses to d. Unregistered slash
// commands arrive as text, so /start reaches the dispatcher too.
func Routes(d Dispatcher) []tg.Route {
	handle := func(c tele.Context) error {
		start := time.Now()
		ev, ok := EventFrom(c)
		if !ok {
			return nil
		}
		if c.Callback() != nil {
			// Stops the client spinner whether or not a route matches.
			_ = c.Respond()
		}
		res, err := d.Dispatch(middleware.Context(c), ev)
		logSummary(c, ev, res, start, err)
		return err
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: handle},
		{Endpoint: tele.OnCallback, Handler: handle},
	}
}
