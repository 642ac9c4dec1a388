package telegram

import (
	"context"
	"log/slog"
	"sort"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/logger"
)

// Command is a slash command handled directly by the transport, outside the
// conversation dispatcher.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}

// Registry holds transport-level commands.
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// RegisterCommand adds a command keyed by its "/name". Invalid and duplicate
// registrations are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	skip := func(reason string) {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
	}
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		skip("invalid")
		return
	case name[0] != '/':
		skip("no_slash_prefix")
		return
	}
	if _, exists := r.commands[name]; exists {
		skip("duplicate")
		return
	}
	r.commands[name] = cmd
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// ListCommands returns the command menu, optionally without hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name[1:], Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// SetupCommands publishes the visible command menu.
func SetupCommands(ctx context.Context, bot *tele.Bot, reg *Registry, extra ...tele.Command) {
	list := append(append([]tele.Command(nil), extra...), reg.ListCommands(true)...)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(ctx, slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
