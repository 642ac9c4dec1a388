package dispatch

import (
	"context"
	"fmt"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/fsm"
)

// KeyPendingDelete holds ids of inline-keyboard messages to delete on the next turn.
const KeyPendingDelete = "pending_delete_ids"

// Turn is the handler's view of one event: the event itself, the acting
// user and write access to their FSM record and chat.
type Turn struct {
	Event  chat.Event
	Sender chat.Sender
	Route  string

	engine *fsm.Engine
	out    chat.Messenger

	sent         int
	transitioned bool
}

func newTurn(ev chat.Event, route string, engine *fsm.Engine, out chat.Messenger) *Turn {
	return &Turn{Event: ev, Sender: ev.From(), Route: route, engine: engine, out: out}
}

// UserID is the acting user.
func (t *Turn) UserID() int64 { return t.Sender.UserID }

// ChatID is the chat replies go to.
func (t *Turn) ChatID() int64 { return t.Sender.ChatID }

// Text returns the message text, or "" for callbacks.
func (t *Turn) Text() string {
	if m, ok := chat.AsText(t.Event); ok {
		return m.Text
	}
	return ""
}

// Token returns the callback token, or "" for text messages.
func (t *Turn) Token() string {
	if cb, ok := chat.AsCallback(t.Event); ok {
		return cb.Token
	}
	return ""
}

// State returns the current state label.
func (t *Turn) State() string {
	s, _ := t.engine.State(t.UserID())
	return s
}

// Data returns a copy of the current data.
func (t *Turn) Data() fsm.Data {
	return t.engine.Data(t.UserID())
}

// SetState moves the user to state, keeping data.
func (t *Turn) SetState(ctx context.Context, state string) error {
	if err := t.engine.UpdateState(ctx, t.UserID(), state); err != nil {
		return err
	}
	t.transitioned = true
	return nil
}

// SetData replaces data. Pending deletions survive unless data sets them itself.
func (t *Turn) SetData(ctx context.Context, data fsm.Data) (fsm.Data, error) {
	data = data.Clone()
	if _, ok := data[KeyPendingDelete]; !ok {
		if pending, exists := t.Data()[KeyPendingDelete]; exists {
			data[KeyPendingDelete] = pending
		}
	}
	return t.engine.UpdateData(ctx, t.UserID(), data)
}

// Merge adds fields to the current data.
func (t *Turn) Merge(ctx context.Context, fields fsm.Data) error {
	data := t.Data()
	for k, v := range fields {
		data[k] = v
	}
	_, err := t.engine.UpdateData(ctx, t.UserID(), data)
	return err
}

// Reset clears the record and starts over in state with carry as the only data.
// Pending deletions always carry over.
func (t *Turn) Reset(ctx context.Context, state string, carry fsm.Data) error {
	pending, hasPending := t.Data()[KeyPendingDelete]
	if t.engine.Exists(t.UserID()) {
		if err := t.engine.Clear(ctx, t.UserID()); err != nil {
			return err
		}
	}
	data := carry.Clone()
	if hasPending {
		data[KeyPendingDelete] = pending
	}
	if len(data) > 0 {
		if _, err := t.engine.UpdateData(ctx, t.UserID(), data); err != nil {
			return err
		}
	}
	return t.SetState(ctx, state)
}

// Send delivers text to the chat. Messages with an inline keyboard are
// recorded for deletion at the start of the next turn.
func (t *Turn) Send(ctx context.Context, text string, kb chat.Keyboard) error {
	id, err := t.out.Send(ctx, t.ChatID(), text, kb)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	t.sent++
	if !kb.IsInline() {
		return nil
	}
	data := t.Data()
	pending := append(data.Int64s(KeyPendingDelete), int64(id))
	data[KeyPendingDelete] = pending
	_, err = t.engine.UpdateData(ctx, t.UserID(), data)
	return err
}

// Sent is the number of messages delivered during the turn.
func (t *Turn) Sent() int { return t.sent }

// Transitioned reports whether the turn wrote a state.
func (t *Turn) Transitioned() bool { return t.transitioned }
