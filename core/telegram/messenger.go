package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/telegram/keyboard"
	"github.com/m3rciful/taskbot/core/telegram/sender"
)

// BotAPI is the subset of *tele.Bot used for outbound calls.
type BotAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Messenger delivers dispatcher output through the sender queue.
type Messenger struct {
	api   BotAPI
	queue *sender.Queue
}

var _ chat.Messenger = (*Messenger)(nil)

// NewMessenger wraps api; every call goes through queue.
func NewMessenger(api BotAPI, queue *sender.Queue) *Messenger {
	return &Messenger{api: api, queue: queue}
}

// Send waits for the message to be delivered since its id is needed by the caller.
func (m *Messenger) Send(ctx context.Context, chatID int64, text string, kb chat.Keyboard) (int, error) {
	opts := []interface{}{tele.NoPreview}
	if markup := keyboard.Markup(kb); markup != nil {
		opts = append(opts, markup)
	}

	var id int
	err := m.queue.Do(ctx, "send", func(context.Context) error {
		msg, err := m.api.Send(tele.ChatID(chatID), text, opts...)
		if err != nil {
			return err
		}
		id = msg.ID
		return nil
	})
	return id, err
}

// Delete schedules removal of every message and returns without waiting.
func (m *Messenger) Delete(ctx context.Context, chatID int64, messageIDs []int) error {
	var errs []error
	for _, id := range messageIDs {
		stored := tele.StoredMessage{MessageID: strconv.Itoa(id), ChatID: chatID}
		err := m.queue.Enqueue(ctx, "delete", func(context.Context) error {
			err := m.api.Delete(stored)
			if errors.Is(err, tele.ErrNotFoundToDelete) {
				logger.Debug(ctx, "tg.sender", "delete.gone", slog.Int("message_id", id))
				return nil
			}
			return err
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
