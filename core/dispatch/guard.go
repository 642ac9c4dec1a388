package dispatch

import (
	"fmt"
	"regexp"
	"strings"
)

// StateKind selects how a StatePredicate compares the current state.
type StateKind int

const (
	// StateAny matches every state, including users without a record.
	StateAny StateKind = iota
	// StateExact matches when the state equals Literal.
	StateExact
	// StateSubstring matches when Literal is a substring of the state.
	StateSubstring
)

// StatePredicate is one condition over the current FSM state.
type StatePredicate struct {
	Kind    StateKind
	Literal string
}

// StateIs matches the exact state label.
func StateIs(label string) StatePredicate {
	return StatePredicate{Kind: StateExact, Literal: label}
}

// StateContains matches every state containing fragment, e.g. all of "tasks:edit".
func StateContains(fragment string) StatePredicate {
	return StatePredicate{Kind: StateSubstring, Literal: fragment}
}

// AnyState matches unconditionally.
func AnyState() StatePredicate {
	return StatePredicate{Kind: StateAny}
}

func (p StatePredicate) String() string {
	switch p.Kind {
	case StateExact:
		return "state=" + p.Literal
	case StateSubstring:
		return "state~" + p.Literal
	}
	return "state=*"
}

// ContentKind selects what a ContentPredicate inspects.
type ContentKind int

const (
	// ContentAnyText matches every text message.
	ContentAnyText ContentKind = iota
	// ContentText matches a text message equal to one of Literals.
	ContentText
	// ContentTextRegex matches text messages against a regular expression.
	ContentTextRegex
	// ContentCommand matches "/name", "/name@bot" and "/name args".
	ContentCommand
	// ContentCallback matches callback tokens starting with Literals[0].
	ContentCallback
	// ContentCallbackRegex matches callback tokens against a regular expression.
	ContentCallbackRegex
)

// ContentPredicate is one condition over the event payload.
type ContentPredicate struct {
	Kind     ContentKind
	Literals []string
	re       *regexp.Regexp
}

// AnyText matches every text message.
func AnyText() ContentPredicate {
	return ContentPredicate{Kind: ContentAnyText}
}

// Text matches a message equal to any of the given labels.
func Text(labels ...string) ContentPredicate {
	return ContentPredicate{Kind: ContentText, Literals: labels}
}

// TextRegex matches text against expr. It panics on an invalid expression.
func TextRegex(expr string) ContentPredicate {
	return ContentPredicate{Kind: ContentTextRegex, Literals: []string{expr}, re: regexp.MustCompile(expr)}
}

// Command matches the bot command name, given without the slash.
func Command(name string) ContentPredicate {
	return ContentPredicate{Kind: ContentCommand, Literals: []string{strings.TrimPrefix(name, "/")}}
}

// Callback matches callback tokens with the given prefix.
func Callback(prefix string) ContentPredicate {
	return ContentPredicate{Kind: ContentCallback, Literals: []string{prefix}}
}

// CallbackRegex matches callback tokens against expr. It panics on an invalid expression.
func CallbackRegex(expr string) ContentPredicate {
	return ContentPredicate{Kind: ContentCallbackRegex, Literals: []string{expr}, re: regexp.MustCompile(expr)}
}

func (p ContentPredicate) String() string {
	switch p.Kind {
	case ContentText:
		return fmt.Sprintf("text=%q", p.Literals)
	case ContentTextRegex:
		return "text~/" + p.Literals[0] + "/"
	case ContentCommand:
		return "command=/" + p.Literals[0]
	case ContentCallback:
		return "callback^" + p.Literals[0]
	case ContentCallbackRegex:
		return "callback~/" + p.Literals[0] + "/"
	}
	return "text=*"
}

// Guard gates a route: at least one state predicate AND at least one content
// predicate must hold. No state predicates means any state.
type Guard struct {
	States   []StatePredicate
	Contents []ContentPredicate
}

// On starts a guard from content predicates.
func On(contents ...ContentPredicate) Guard {
	return Guard{Contents: contents}
}

// In restricts the guard to the given states.
func (g Guard) In(states ...StatePredicate) Guard {
	g.States = append(append([]StatePredicate(nil), g.States...), states...)
	return g
}

func (g Guard) String() string {
	parts := make([]string, 0, len(g.States)+len(g.Contents))
	for _, s := range g.States {
		parts = append(parts, s.String())
	}
	for _, c := range g.Contents {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
