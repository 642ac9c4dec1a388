// Package chattest provides an in-memory chat.Messenger for tests.
package chattest

import (
	"context"
	"sync"

	"github.com/m3rciful/taskbot/core/chat"
)

// Sent is one message delivered through the Recorder.
type Sent struct {
	ChatID   int64
	ID       int
	Text     string
	Keyboard chat.Keyboard
}

// Recorder keeps every sent and deleted message. Message ids start at 100.
type Recorder struct {
	mu      sync.Mutex
	nextID  int
	sent    []Sent
	deleted []int
	// FailDelete makes Delete return this error when set.
	FailDelete error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{nextID: 100}
}

func (r *Recorder) Send(_ context.Context, chatID int64, text string, kb chat.Keyboard) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.sent = append(r.sent, Sent{ChatID: chatID, ID: r.nextID, Text: text, Keyboard: kb})
	return r.nextID, nil
}

func (r *Recorder) Delete(_ context.Context, _ int64, ids []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDelete != nil {
		return r.FailDelete
	}
	r.deleted = append(r.deleted, ids...)
	return nil
}

// Sent returns a copy of the delivered messages.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Last returns the most recent message; ok is false when nothing was sent.
func (r *Recorder) Last() (Sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Sent{}, false
	}
	return r.sent[len(r.sent)-1], true
}

// Deleted returns a copy of the deleted message ids.
func (r *Recorder) Deleted() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.deleted...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.deleted = nil
}
