// Package keyboard converts chat keyboards into telebot markup.
package keyboard

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/chat"
)

// Markup builds the telebot markup for kb. A zero keyboard yields nil so the
// previous reply keyboard stays on screen.
func Markup(kb chat.Keyboard) *tele.ReplyMarkup {
	switch {
	case kb.IsInline():
		return inline(kb.Inline)
	case len(kb.Reply) > 0:
		return reply(kb.Reply)
	}
	return nil
}

func reply(rows [][]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// inline keeps tokens as raw callback data so they come back unchanged.
func inline(rows [][]chat.Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	keyboard := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, tele.InlineButton{Text: b.Text, Data: b.Token})
		}
		keyboard = append(keyboard, r)
	}
	markup.InlineKeyboard = keyboard
	return markup
}
