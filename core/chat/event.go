// Package chat defines the transport-neutral shapes exchanged between the
// dispatcher and a chat platform: incoming events, keyboards and the
// outbound messenger.
package chat

// Sender identifies the acting chat user.
type Sender struct {
	UserID    int64
	ChatID    int64
	FirstName string
	Username  string
}

// Event is either a TextMessage or a CallbackAction.
type Event interface {
	From() Sender
	Kind() Kind
	isEvent()
}

// Kind names the event variant.
type Kind string

const (
	KindText     Kind = "text"
	KindCallback Kind = "callback"
)

// TextMessage is a plain message typed or tapped on a reply keyboard.
type TextMessage struct {
	Sender
	MessageID int
	Text      string
}

func (m TextMessage) From() Sender { return m.Sender }
func (TextMessage) Kind() Kind     { return KindText }
func (TextMessage) isEvent()       {}

// CallbackAction is a press on an inline keyboard button.
type CallbackAction struct {
	Sender
	// MessageID is the message that carried the pressed keyboard.
	MessageID int
	Token     string
}

func (a CallbackAction) From() Sender { return a.Sender }
func (CallbackAction) Kind() Kind     { return KindCallback }
func (CallbackAction) isEvent()       {}

// AsText returns the event as a TextMessage when it is one.
func AsText(ev Event) (TextMessage, bool) {
	m, ok := ev.(TextMessage)
	return m, ok
}

// AsCallback returns the event as a CallbackAction when it is one.
func AsCallback(ev Event) (CallbackAction, bool) {
	a, ok := ev.(CallbackAction)
	return a, ok
}
