// Package flows holds the conversation handlers of the bot: registration,
// authorization, settings and the task manager. Every handler runs inside a
// dispatch.Turn and moves the user between the states in states.go.
package flows

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/app/tasks"
	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/paging"
)

// Options tunes the handler set.
type Options struct {
	Hasher   accounts.Hasher
	PageSize int
	Columns  int
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// Flows is the handler set. It keeps no per-user state of its own.
type Flows struct {
	accounts accounts.Repository
	tasks    tasks.Repository
	hasher   accounts.Hasher
	pageSize int
	columns  int
	now      func() time.Time
}

// New builds the handler set over the given repositories.
func New(acc accounts.Repository, tr tasks.Repository, opts Options) *Flows {
	if opts.PageSize <= 0 {
		opts.PageSize = paging.DefaultSize
	}
	if opts.Columns <= 0 {
		opts.Columns = paging.DefaultColumns
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Flows{
		accounts: acc,
		tasks:    tr,
		hasher:   opts.Hasher,
		pageSize: opts.PageSize,
		columns:  opts.Columns,
		now:      opts.Now,
	}
}

func input(t *dispatch.Turn) string {
	return strings.TrimSpace(t.Text())
}

func say(ctx context.Context, t *dispatch.Turn, text string) error {
	return t.Send(ctx, text, chat.Keyboard{})
}

// sessionOwner is the account the user is working in, read from FSM data.
func sessionOwner(t *dispatch.Turn) (int64, bool) {
	owner, ok := t.Data().Int64(keyOwner)
	return owner, ok && owner != 0
}

// tokenOwner extracts the owner id a callback token ends with.
func tokenOwner(t *dispatch.Turn) (int64, bool) {
	token := t.Token()
	i := strings.LastIndexByte(token, ':')
	if i < 0 {
		return 0, false
	}
	owner, err := strconv.ParseInt(token[i+1:], 10, 64)
	return owner, err == nil
}

// tokenField returns the n-th ':'-separated field of the callback token.
func tokenField(t *dispatch.Turn, n int) string {
	parts := strings.Split(t.Token(), ":")
	if n < 0 || n >= len(parts) {
		return ""
	}
	return parts[n]
}
