package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/dispatch"
)

type fakeDispatcher struct {
	events []chat.Event
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, ev chat.Event) (dispatch.Result, error) {
	f.events = append(f.events, ev)
	return dispatch.Result{Route: "start", Matched: true, Sent: 1}, f.err
}

func textUpdate(text string) tele.Update {
	return tele.Update{
		ID: 7,
		Message: &tele.Message{
			ID:     42,
			Text:   text,
			Sender: &tele.User{ID: 10, FirstName: "Ann", Username: "ann"},
			Chat:   &tele.Chat{ID: 20},
		},
	}
}

func TestEventFromText(t *testing.T) {
	ev, ok := EventFrom(tele.NewContext(nil, textUpdate("/start")))
	require.True(t, ok)

	msg, isText := chat.AsText(ev)
	require.True(t, isText)
	assert.Equal(t, "/start", msg.Text)
	assert.Equal(t, 42, msg.MessageID)
	assert.EqualValues(t, 10, msg.UserID)
	assert.EqualValues(t, 20, msg.ChatID)
	assert.Equal(t, "Ann", msg.FirstName)
}

func TestEventFromCallbackStripsPrefix(t *testing.T) {
	upd := tele.Update{Callback: &tele.Callback{
		Data:    "\ftasks:edit_task:id_task:3:10",
		Sender:  &tele.User{ID: 10},
		Message: &tele.Message{ID: 99, Chat: &tele.Chat{ID: 20}},
	}}
	ev, ok := EventFrom(tele.NewContext(nil, upd))
	require.True(t, ok)

	cb, isCallback := chat.AsCallback(ev)
	require.True(t, isCallback)
	assert.Equal(t, "tasks:edit_task:id_task:3:10", cb.Token)
	assert.Equal(t, 99, cb.MessageID)
	assert.EqualValues(t, 20, cb.ChatID)
}

func TestEventFromIgnoresNonText(t *testing.T) {
	upd := tele.Update{Message: &tele.Message{Sender: &tele.User{ID: 1}, Chat: &tele.Chat{ID: 1}}}
	_, ok := EventFrom(tele.NewContext(nil, upd))
	assert.False(t, ok)

	_, ok = EventFrom(tele.NewContext(nil, tele.Update{}))
	assert.False(t, ok)
}

func TestRoutesForwardTextToDispatcher(t *testing.T) {
	d := &fakeDispatcher{}
	routes := Routes(d)
	require.Len(t, routes, 2)
	assert.Equal(t, tele.OnText, routes[0].Endpoint)

	require.NoError(t, routes[0].Handler(tele.NewContext(nil, textUpdate("hello"))))
	require.Len(t, d.events, 1)
	assert.Equal(t, chat.KindText, d.events[0].Kind())
}

func TestRoutesReturnDispatchError(t *testing.T) {
	boom := errors.New("boom")
	d := &fakeDispatcher{err: boom}
	err := Routes(d)[0].Handler(tele.NewContext(nil, textUpdate("hello")))
	assert.ErrorIs(t, err, boom)
}

func TestCallbackKeyDropsIDs(t *testing.T) {
	assert.Equal(t, "tasks:edit_task:id_task", callbackKey("tasks:edit_task:id_task:3:10"))
	assert.Equal(t, "main_menu", callbackKey("main_menu"))
	assert.Equal(t, "tasks:edit_task:button:next", callbackKey("tasks:edit_task:button:next"))
}
