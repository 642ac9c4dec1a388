package flows

import (
	"github.com/m3rciful/taskbot/app/tasks"
	"github.com/m3rciful/taskbot/core/dispatch"
)

// Register installs every route on d. Order matters: the first matching
// guard wins, so global escapes come first and free-text steps last within
// their group.
func (f *Flows) Register(d *dispatch.Dispatcher) {
	on := dispatch.On
	is := dispatch.StateIs
	anyText := dispatch.AnyText()
	cb := dispatch.Callback
	text := dispatch.Text

	toStart := f.denied(f.start)
	toTasks := f.denied(f.backToTasks)
	owned := func(h dispatch.HandlerFunc) dispatch.HandlerFunc { return guarded(f.ownerOnly, h, toTasks) }
	session := func(h dispatch.HandlerFunc) dispatch.HandlerFunc { return guarded(f.withSession, h, toStart) }

	// Escapes.
	d.Handle("start", on(dispatch.Command("start"), text(btnMainMenu), cb(tokMainMenu)), f.start)
	d.Handle("logout", on(text(btnLogout)), session(f.logout))
	d.Handle("account.delete.ask",
		on(text(btnDeleteAccount)).In(is(StateRegistrationAuthorization), is(StateMainMenu)),
		guarded(f.canDeleteAccount, f.askDeleteAccount, toStart))
	d.Handle("account.delete",
		on(cb(tokDeleteAccount)).In(is(StateRegistrationAuthorization), is(StateMainMenu)),
		guarded(f.canConfirmDeleteAccount, f.deleteAccount, toStart))

	d.Handle("settings.open.text", on(text(btnSettings)), guarded(f.ownerOnly, f.showSettings, toStart))
	d.Handle("settings.open",
		on(cb(tokSettingsMenu)).In(is(StateMainMenu), dispatch.StateContains(StateSettings)),
		guarded(f.ownerOnly, f.showSettings, toStart))
	d.Handle("tasks.open.text", on(text(btnTasks)), session(f.showTasksMenu))
	d.Handle("tasks.open",
		on(cb(tokTasksMenu)).In(is(StateMainMenu), dispatch.StateContains(StateTasks)),
		session(f.showTasksMenu))

	// Registration.
	d.Handle("registration.begin", on(text(btnRegistration)).In(is(StateRegistrationAuthorization)),
		guarded(f.hasNoAccount, f.beginRegistration, toStart))
	d.Handle("registration.username", on(anyText).In(is(StateRegistrationUsername)), f.registrationUsername)
	d.Handle("registration.login", on(anyText).In(is(StateRegistrationNickname)), f.registrationLogin)
	d.Handle("registration.password", on(anyText).In(is(StateRegistrationSetPassword)), f.registrationPassword)
	d.Handle("registration.confirm", on(anyText).In(is(StateRegistrationConfirmPassword)), f.registrationConfirm)

	// Authorization.
	d.Handle("authorization.begin", on(text(btnAuthorization)).In(is(StateRegistrationAuthorization)), f.beginAuthorization)
	d.Handle("authorization.login", on(anyText).In(is(StateAuthorizationLogin)), f.authorizationLogin)
	d.Handle("authorization.reset.begin", on(text(btnResetPassword)).In(is(StateAuthorizationPassword)),
		guarded(f.ownsLogin, f.beginResetPassword, toStart))
	d.Handle("authorization.password", on(anyText).In(is(StateAuthorizationPassword)), f.authorizationPassword)
	d.Handle("authorization.reset", on(anyText).In(is(StateAuthorizationResetPassword)),
		guarded(f.ownsLogin, f.resetPassword, toStart))
	d.Handle("authorization.reset.confirm", on(anyText).In(is(StateAuthorizationConfirmReset)),
		guarded(f.ownsLogin, f.confirmResetPassword, toStart))

	// Settings.
	settings := func(h dispatch.HandlerFunc) dispatch.HandlerFunc { return guarded(f.ownerOnly, h, toStart) }
	d.Handle("settings.username.ask", on(cb(tokSettingsUsername)).In(is(StateSettings)),
		settings(f.settingsPrompt(StateSettingsUsername, msgAskNewUsername)))
	d.Handle("settings.login.ask", on(cb(tokSettingsLogin)).In(is(StateSettings)),
		settings(f.settingsPrompt(StateSettingsLogin, msgAskNewLogin)))
	d.Handle("settings.password.ask", on(cb(tokSettingsPassword)).In(is(StateSettings)),
		settings(f.settingsPrompt(StateSettingsPassword, msgPasswordRules)))
	d.Handle("settings.username", on(anyText).In(is(StateSettingsUsername)), settings(f.settingsUsername))
	d.Handle("settings.login", on(anyText).In(is(StateSettingsLogin)), settings(f.settingsLogin))
	d.Handle("settings.password", on(anyText).In(is(StateSettingsPassword)), settings(f.settingsPassword))
	d.Handle("settings.password.confirm", on(anyText).In(is(StateSettingsConfirmPassword)), settings(f.settingsConfirmPassword))

	// Task creation.
	d.Handle("tasks.create", on(cb(tokTasksCreate)).In(is(StateTasks)), owned(f.beginCreateTask))
	d.Handle("tasks.create.name", on(anyText).In(is(StateTasksCreateName)), owned(f.createTaskName))
	d.Handle("tasks.create.description", on(anyText).In(is(StateTasksCreateDescription)), owned(f.createTaskDescription))
	d.Handle("tasks.create.start", on(anyText).In(is(StateTasksCreateStart)), owned(f.createTaskStart))
	d.Handle("tasks.create.end", on(anyText).In(is(StateTasksCreateEnd)), owned(f.createTaskEnd))

	// Task lists.
	d.Handle("tasks.view", on(cb(tokTasksView)).In(is(StateTasks)), session(f.showViewMenu))
	d.Handle("tasks.view.filter", on(dispatch.CallbackRegex(viewFilterToken)).In(is(StateTasksView)), session(f.viewTasks))

	// Task editor.
	d.Handle("tasks.edit", on(cb(tokTasksEdit)).In(is(StateTasks)), session(f.openEditor))
	d.Handle("tasks.edit.page", on(dispatch.CallbackRegex(editPageRe.String())).In(is(StateTasksEdit)), session(f.editPage))
	d.Handle("tasks.edit.pick", on(anyText, cb(tokEditPick)).In(is(StateTasksEdit)), session(f.pickTask))
	d.Handle("tasks.edit.menu", on(cb(tokEditMenu)).In(dispatch.StateContains(StateTasksEdit+":")), session(f.showEditMenu))
	d.Handle("tasks.edit.view", on(cb(tokEditView)).In(is(StateTasksEditTask)), session(f.viewTask))
	d.Handle("tasks.edit.status", on(cb(tokEditStatus)).In(is(StateTasksEditTask)), owned(f.toggleStatus))
	d.Handle("tasks.edit.name.ask", on(cb(tokEditName)).In(is(StateTasksEditTask)),
		owned(f.editPrompt(StateTasksEditName, func(tasks.Task) string { return msgAskNewName })))
	d.Handle("tasks.edit.description.ask", on(cb(tokEditDesc)).In(is(StateTasksEditTask)),
		owned(f.editPrompt(StateTasksEditDescription, func(tasks.Task) string { return msgAskNewDesc })))
	d.Handle("tasks.edit.start.ask", on(cb(tokEditStart)).In(is(StateTasksEditTask)),
		owned(f.editPrompt(StateTasksEditStart, startPrompt)))
	d.Handle("tasks.edit.end.ask", on(cb(tokEditEnd)).In(is(StateTasksEditTask)),
		owned(f.editPrompt(StateTasksEditEnd, endPrompt)))
	d.Handle("tasks.edit.name", on(anyText).In(is(StateTasksEditName)), owned(f.editName))
	d.Handle("tasks.edit.description", on(anyText).In(is(StateTasksEditDescription)), owned(f.editDescription))
	d.Handle("tasks.edit.start", on(anyText).In(is(StateTasksEditStart)), owned(f.editStart))
	d.Handle("tasks.edit.end", on(anyText).In(is(StateTasksEditEnd)), owned(f.editEnd))
	d.Handle("tasks.edit.delete.ask", on(cb(tokEditDelete)).In(is(StateTasksEditTask)), owned(f.askDeleteTask))
	d.Handle("tasks.edit.delete", on(cb(tokEditConfirmDel)).In(is(StateTasksEditDelete)), owned(f.deleteTask))
}
