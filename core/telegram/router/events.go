package router

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/chat"
)

// EventFrom converts a telebot update into a chat event. ok is false for
// updates the dispatcher does not understand.
func EventFrom(c tele.Context) (chat.Event, bool) {
	user := c.Sender()
	if user == nil {
		return nil, false
	}
	from := chat.Sender{
		UserID:    user.ID,
		ChatID:    user.ID,
		FirstName: user.FirstName,
		Username:  user.Username,
	}
	if ch := c.Chat(); ch != nil {
		from.ChatID = ch.ID
	}

	if cb := c.Callback(); cb != nil {
		action := chat.CallbackAction{
			Sender: from,
			Token:  strings.TrimPrefix(cb.Data, "\f"),
		}
		if cb.Message != nil {
			action.MessageID = cb.Message.ID
		}
		return action, true
	}
	if msg := c.Message(); msg != nil && msg.Text != "" {
		return chat.TextMessage{Sender: from, MessageID: msg.ID, Text: msg.Text}, true
	}
	return nil, false
}
