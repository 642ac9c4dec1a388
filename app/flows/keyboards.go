package flows

import (
	"strconv"

	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/paging"
)

func ownerToken(prefix string, owner int64) string {
	return prefix + strconv.FormatInt(owner, 10)
}

func btn(text, prefix string, owner int64) chat.Button {
	return chat.Button{Text: text, Token: ownerToken(prefix, owner)}
}

func mainMenuButton(owner int64) chat.Button {
	return btn(capBackToMain, tokMainMenu+":", owner)
}

func toMainKeyboard() chat.Keyboard {
	return chat.ReplyKeyboard([]string{btnMainMenu})
}

func continueKeyboard() chat.Keyboard {
	return chat.ReplyKeyboard([]string{btnContinue, btnMainMenu})
}

func welcomeKeyboard(hasAccount bool) chat.Keyboard {
	second := btnRegistration
	if hasAccount {
		second = btnDeleteAccount
	}
	return chat.ReplyKeyboard([]string{btnAuthorization}, []string{second})
}

func mainMenuKeyboard(isOwner bool) chat.Keyboard {
	if !isOwner {
		return chat.ReplyKeyboard([]string{btnTasks}, []string{btnLogout})
	}
	return chat.ReplyKeyboard(
		[]string{btnTasks},
		[]string{btnSettings},
		[]string{btnLogout, btnDeleteAccount},
	)
}

func passwordLoginKeyboard(isOwner bool) chat.Keyboard {
	if isOwner {
		return chat.ReplyKeyboard([]string{btnResetPassword}, []string{btnMainMenu})
	}
	return toMainKeyboard()
}

func confirmDeleteAccountKeyboard(owner int64) chat.Keyboard {
	return chat.Column(btn(capDeleteAccount, tokDeleteAccount, owner), mainMenuButton(owner))
}

func settingsKeyboard(owner int64) chat.Keyboard {
	return chat.Column(
		btn(capSetUsername, tokSettingsUsername, owner),
		btn(capSetLogin, tokSettingsLogin, owner),
		btn(capSetPassword, tokSettingsPassword, owner),
		mainMenuButton(owner),
	)
}

func settingsBackKeyboard(owner int64) chat.Keyboard {
	return chat.Column(btn(capBack, tokSettingsMenu, owner), mainMenuButton(owner))
}

func tasksMenuKeyboard(owner int64, isOwner bool) chat.Keyboard {
	var buttons []chat.Button
	if isOwner {
		buttons = append(buttons, btn(capCreateTask, tokTasksCreate, owner))
	}
	buttons = append(buttons,
		btn(capViewTasks, tokTasksView, owner),
		btn(capEditTasks, tokTasksEdit, owner),
		mainMenuButton(owner),
	)
	return chat.Column(buttons...)
}

func tasksBackButtons(owner int64) []chat.Button {
	return []chat.Button{btn(capBack, tokTasksMenu, owner), mainMenuButton(owner)}
}

func tasksBackKeyboard(owner int64) chat.Keyboard {
	return chat.Column(tasksBackButtons(owner)...)
}

func viewMenuKeyboard(owner int64) chat.Keyboard {
	return chat.Column(append([]chat.Button{
		btn(capViewCurrent, "tasks:view_current_tasks:", owner),
		btn(capViewCompleted, "tasks:view_completed_tasks:", owner),
		btn(capViewOverdue, "tasks:view_overdue_tasks:", owner),
		btn(capViewAll, "tasks:view_all_tasks:", owner),
	}, tasksBackButtons(owner)...)...)
}

// taskListKeyboard lays out the visible page of ids, then the paging and back rows.
func taskListKeyboard(owner int64, w paging.Window, ids []int64, columns int) chat.Keyboard {
	page := paging.Page(w, ids)
	buttons := make([]chat.Button, 0, len(page))
	for _, id := range page {
		buttons = append(buttons, chat.Button{
			Text:  strconv.FormatInt(id, 10),
			Token: tokEditPick + strconv.FormatInt(id, 10) + ":" + strconv.FormatInt(owner, 10),
		})
	}
	rows := chat.Grid(buttons, columns)

	var nav []chat.Button
	if w.HasPrevious() {
		nav = append(nav, chat.Button{Text: capPrevious, Token: tokEditPage + "previous"})
	}
	if w.HasNext() {
		nav = append(nav, chat.Button{Text: capNext, Token: tokEditPage + "next"})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []chat.Button{
		{Text: capStart, Token: tokEditPage + "start"},
		{Text: capEnd, Token: tokEditPage + "end"},
	})
	for _, b := range tasksBackButtons(owner) {
		rows = append(rows, []chat.Button{b})
	}
	return chat.InlineKeyboard(rows...)
}

func editMenuKeyboard(owner int64, isOwner bool) chat.Keyboard {
	buttons := []chat.Button{btn(capViewTask, tokEditView, owner)}
	if isOwner {
		buttons = append(buttons,
			btn(capEditStatus, tokEditStatus, owner),
			btn(capEditName, tokEditName, owner),
			btn(capEditDesc, tokEditDesc, owner),
			btn(capEditStart, tokEditStart, owner),
			btn(capEditEnd, tokEditEnd, owner),
			btn(capDeleteTask, tokEditDelete, owner),
		)
	}
	return chat.Column(append(buttons, tasksBackButtons(owner)...)...)
}

func editBackKeyboard(owner int64) chat.Keyboard {
	return chat.Column(btn(capBack, tokEditMenu, owner), mainMenuButton(owner))
}

func confirmDeleteTaskKeyboard(owner int64) chat.Keyboard {
	return chat.InlineKeyboard(
		[]chat.Button{btn(capYes, tokEditConfirmDel, owner), btn(capNo, tokEditMenu, owner)},
		[]chat.Button{mainMenuButton(owner)},
	)
}
