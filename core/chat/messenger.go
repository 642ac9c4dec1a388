package chat

import "context"

// Messenger is the outbound side of a chat platform.
type Messenger interface {
	// Send delivers text with an optional keyboard and returns the new message id.
	Send(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	// Delete removes messages. Ids that no longer exist are not an error.
	Delete(ctx context.Context, chatID int64, messageIDs []int) error
}
