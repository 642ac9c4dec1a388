package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/fsm"
	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/metrics"
)

// HandlerFunc runs one transition for a matched event.
type HandlerFunc func(ctx context.Context, t *Turn) error

// Route is one registered handler and the guard that admits events to it.
type Route struct {
	Name   string
	Guard  Guard
	Handle HandlerFunc
}

// Options tunes the dispatcher.
type Options struct {
	// DeleteIncoming removes the user's text message together with the
	// previous turn's inline menus.
	DeleteIncoming bool
}

// Result describes what Dispatch did with an event.
type Result struct {
	Route        string
	Matched      bool
	Sent         int
	Transitioned bool
}

// Dispatcher routes events to the first route whose guard matches. Events of
// one user are handled strictly one after another.
type Dispatcher struct {
	engine *fsm.Engine
	out    chat.Messenger
	opts   Options
	routes []Route
	locks  *userLocks
}

// New builds a dispatcher without routes.
func New(engine *fsm.Engine, out chat.Messenger, opts Options) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		out:    out,
		opts:   opts,
		locks:  newUserLocks(),
	}
}

// Handle appends a route. Registration order is match order.
func (d *Dispatcher) Handle(name string, guard Guard, h HandlerFunc) {
	if h == nil {
		panic(fmt.Sprintf("dispatch: nil handler for route %q", name))
	}
	if len(guard.Contents) == 0 {
		panic(fmt.Sprintf("dispatch: route %q has no content predicate", name))
	}
	d.routes = append(d.routes, Route{Name: name, Guard: guard, Handle: h})
}

// Routes returns a copy of the registration table.
func (d *Dispatcher) Routes() []Route {
	return append([]Route(nil), d.routes...)
}

// Dispatch handles ev under the sender's lock. An unmatched event is dropped
// without error. A handler error aborts the turn and is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev chat.Event) (Result, error) {
	if ev == nil {
		return Result{}, errors.New("dispatch: nil event")
	}
	sender := ev.From()
	kind := string(ev.Kind())

	waitStart := time.Now()
	unlock, err := d.locks.Lock(ctx, sender.UserID)
	if err != nil {
		metrics.RecordEvent(kind, "cancelled")
		return Result{}, fmt.Errorf("dispatch: wait for user %d: %w", sender.UserID, err)
	}
	defer unlock()
	metrics.RecordLockWait(time.Since(waitStart))

	state, _ := d.engine.State(sender.UserID)
	route, ok := d.match(state, ev)
	if !ok {
		metrics.RecordEvent(kind, "dropped")
		if logger.ShouldSampleDebug() {
			logger.Debug(ctx, "dispatch", "dispatch.dropped",
				slog.String("kind", kind),
				slog.String("state", state),
			)
		}
		return Result{}, nil
	}

	ctx = logger.WithState(logger.WithHandler(ctx, route.Name), state)
	t := newTurn(ev, route.Name, d.engine, d.out)
	d.flushEphemeral(ctx, t)

	start := time.Now()
	err = route.Handle(ctx, t)
	took := time.Since(start)
	metrics.RecordHandler(route.Name, err, took)

	res := Result{Route: route.Name, Matched: true, Sent: t.Sent(), Transitioned: t.Transitioned()}
	if err != nil {
		metrics.RecordEvent(kind, "fail")
		logger.Error(ctx, "dispatch", "dispatch.handler.failed",
			slog.String("route", route.Name),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return res, fmt.Errorf("dispatch: route %s: %w", route.Name, err)
	}

	metrics.RecordEvent(kind, "ok")
	next, _ := d.engine.State(sender.UserID)
	logger.Info(ctx, "dispatch", "handler.handled",
		slog.String("route", route.Name),
		slog.String("next_state", next),
		slog.Int("sent", res.Sent),
		slog.Duration("duration", took),
		slog.String("outcome", "ok"),
	)
	return res, nil
}

func (d *Dispatcher) match(state string, ev chat.Event) (Route, bool) {
	for _, r := range d.routes {
		if Match(r.Guard, state, ev) {
			return r, true
		}
	}
	return Route{}, false
}

// flushEphemeral deletes the inline menus sent last turn and, when enabled,
// the incoming text message. Delete failures are logged and do not abort the turn.
func (d *Dispatcher) flushEphemeral(ctx context.Context, t *Turn) {
	data := t.Data()
	ids := data.Int64s(KeyPendingDelete)
	if _, tracked := data[KeyPendingDelete]; tracked {
		if _, err := d.engine.UpdateData(ctx, t.UserID(), data.Without(KeyPendingDelete)); err != nil {
			logger.Warn(ctx, "dispatch", "dispatch.ephemeral.reset_failed",
				slog.String("err", err.Error()),
			)
			return
		}
	}

	var toDelete []int
	for _, id := range ids {
		toDelete = append(toDelete, int(id))
	}
	if msg, ok := chat.AsText(t.Event); ok && d.opts.DeleteIncoming && msg.MessageID > 0 {
		toDelete = append(toDelete, msg.MessageID)
	}
	if len(toDelete) == 0 {
		return
	}
	if err := d.out.Delete(ctx, t.ChatID(), toDelete); err != nil {
		logger.Warn(ctx, "dispatch", "dispatch.ephemeral.delete_failed",
			slog.Int("deleted", len(toDelete)),
			slog.String("err", err.Error()),
		)
		return
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "dispatch", "dispatch.ephemeral.deleted", slog.Int("deleted", len(toDelete)))
	}
}
