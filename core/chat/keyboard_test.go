package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridSplitsIntoColumns(t *testing.T) {
	buttons := []Button{{Text: "1"}, {Text: "2"}, {Text: "3"}}
	rows := Grid(buttons, 2)
	assert.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 1)

	assert.Len(t, Grid(buttons, 1), 3)
	assert.Empty(t, Grid(nil, 2))
}

func TestKeyboardKinds(t *testing.T) {
	assert.True(t, Keyboard{}.IsEmpty())
	assert.False(t, ReplyKeyboard([]string{"a"}).IsInline())
	assert.True(t, Column(Button{Text: "a", Token: "t"}).IsInline())
}

func TestEventHelpers(t *testing.T) {
	var ev Event = CallbackAction{Sender: Sender{UserID: 1}, Token: "main_menu"}
	_, isText := AsText(ev)
	assert.False(t, isText)
	cb, ok := AsCallback(ev)
	assert.True(t, ok)
	assert.Equal(t, "main_menu", cb.Token)
	assert.Equal(t, KindCallback, ev.Kind())
	assert.EqualValues(t, 1, ev.From().UserID)
}
