package chat

// Button is an inline keyboard button. Token is returned as CallbackAction.Token.
type Button struct {
	Text  string
	Token string
}

// Keyboard is either a reply keyboard (rows of labels) or an inline keyboard.
// A zero Keyboard sends no markup.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
}

// IsInline reports whether the keyboard carries inline buttons.
func (k Keyboard) IsInline() bool { return len(k.Inline) > 0 }

// IsEmpty reports whether there is nothing to attach.
func (k Keyboard) IsEmpty() bool { return len(k.Inline) == 0 && len(k.Reply) == 0 }

// ReplyKeyboard builds a reply keyboard from rows of labels.
func ReplyKeyboard(rows ...[]string) Keyboard {
	return Keyboard{Reply: rows}
}

// InlineKeyboard builds an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]Button) Keyboard {
	return Keyboard{Inline: rows}
}

// Column places every button on its own row.
func Column(buttons ...Button) Keyboard {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return Keyboard{Inline: rows}
}

// Grid splits buttons into rows of up to n buttons.
func Grid(buttons []Button, n int) [][]Button {
	if n <= 1 {
		return Column(buttons...).Inline
	}
	var rows [][]Button
	for i := 0; i < len(buttons); i += n {
		rows = append(rows, buttons[i:min(i+n, len(buttons))])
	}
	return rows
}
