package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/taskbot/core/chat"
)

func TestMarkupInline(t *testing.T) {
	kb := chat.InlineKeyboard(
		[]chat.Button{{Text: "1", Token: "tasks:edit_task:id_task:1:7"}, {Text: "2", Token: "tasks:edit_task:id_task:2:7"}},
		[]chat.Button{{Text: "Back", Token: "menu_tasks:7"}},
	)
	m := Markup(kb)
	require.NotNil(t, m)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Len(t, m.InlineKeyboard[0], 2)
	assert.Equal(t, "tasks:edit_task:id_task:2:7", m.InlineKeyboard[0][1].Data)
	assert.Equal(t, "Back", m.InlineKeyboard[1][0].Text)
	assert.Empty(t, m.ReplyKeyboard)
}

func TestMarkupReply(t *testing.T) {
	m := Markup(chat.ReplyKeyboard([]string{"A"}, []string{"B", "C"}))
	require.NotNil(t, m)
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Equal(t, "C", m.ReplyKeyboard[1][1].Text)
}

func TestMarkupEmpty(t *testing.T) {
	assert.Nil(t, Markup(chat.Keyboard{}))
}
