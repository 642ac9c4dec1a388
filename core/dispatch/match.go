package dispatch

import (
	"strings"

	"github.com/m3rciful/taskbot/core/chat"
)

// Match reports whether guard admits ev while the user is in state.
func Match(g Guard, state string, ev chat.Event) bool {
	return matchState(g.States, state) && matchContent(g.Contents, ev)
}

func matchState(preds []StatePredicate, state string) bool {
	if len(preds) == 0 {
		return true
	}
	for _, p := range preds {
		switch p.Kind {
		case StateAny:
			return true
		case StateExact:
			if state == p.Literal {
				return true
			}
		case StateSubstring:
			if state != "" && strings.Contains(state, p.Literal) {
				return true
			}
		}
	}
	return false
}

func matchContent(preds []ContentPredicate, ev chat.Event) bool {
	for _, p := range preds {
		if matchOne(p, ev) {
			return true
		}
	}
	return false
}

func matchOne(p ContentPredicate, ev chat.Event) bool {
	switch p.Kind {
	case ContentAnyText, ContentText, ContentTextRegex, ContentCommand:
		msg, ok := chat.AsText(ev)
		if !ok {
			return false
		}
		switch p.Kind {
		case ContentAnyText:
			return true
		case ContentText:
			for _, lit := range p.Literals {
				if msg.Text == lit {
					return true
				}
			}
			return false
		case ContentTextRegex:
			return p.re.MatchString(msg.Text)
		default:
			return commandName(msg.Text) == p.Literals[0]
		}
	case ContentCallback, ContentCallbackRegex:
		cb, ok := chat.AsCallback(ev)
		if !ok {
			return false
		}
		if p.Kind == ContentCallback {
			return strings.HasPrefix(cb.Token, p.Literals[0])
		}
		return p.re.MatchString(cb.Token)
	}
	return false
}

// commandName extracts "start" from "/start", "/start@bot" or "/start payload".
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	head, _, _ := strings.Cut(text[1:], " ")
	name, _, _ := strings.Cut(head, "@")
	return name
}
