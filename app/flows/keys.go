package flows

import "github.com/m3rciful/taskbot/core/dispatch"

// FSM data keys.
const (
	keyOwner           = "owner_id"
	keyPendingDelete   = dispatch.KeyPendingDelete
	keyLogin           = "login_name"
	keyUsername        = "username"
	keyPasswordHash    = "password_hash"
	keyTaskName        = "task_name"
	keyTaskDescription = "task_description"
	keyTaskStart       = "task_start"
	keyTaskID          = "task_id"
	keyPagination      = "pagination"
	keyListIDs         = "list_ids"
)

// Callback token prefixes. Tokens that act on an account end with ":<owner id>".
const (
	tokMainMenu         = "main_menu"
	tokDeleteAccount    = "delete_account:"
	tokSettingsMenu     = "menu_settings:"
	tokSettingsUsername = "settings:update_username:"
	tokSettingsLogin    = "settings:update_login:"
	tokSettingsPassword = "settings:update_password:"

	tokTasksMenu   = "menu_tasks:"
	tokTasksCreate = "tasks:create_task:"
	tokTasksView   = "tasks:view_tasks:"
	tokTasksEdit   = "tasks:edit_tasks:"

	tokEditPage       = "tasks:edit_task:button:"
	tokEditPick       = "tasks:edit_task:id_task:"
	tokEditMenu       = "tasks:menu_edit:"
	tokEditView       = "tasks:edit_task:view_task:"
	tokEditStatus     = "tasks:edit_task:edit_status:"
	tokEditName       = "tasks:edit_task:edit_name:"
	tokEditDesc       = "tasks:edit_task:edit_desc:"
	tokEditStart      = "tasks:edit_task:edit_start:"
	tokEditEnd        = "tasks:edit_task:edit_end:"
	tokEditDelete     = "tasks:edit_task:delete:"
	tokEditConfirmDel = "tasks:edit_task:confirm_delete:"
)

// viewFilterToken matches the four task list filters.
const viewFilterToken = `^tasks:view_(current|completed|overdue|all)_tasks:`
