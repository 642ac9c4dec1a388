package flows

// State labels. A label is hierarchical; "tasks:edit" prefixes every state
// of the task editor.
const (
	StateRegistrationAuthorization = "registration_authorization"
	StateMainMenu                  = "main_menu"

	StateRegistrationUsername        = "registration:username"
	StateRegistrationNickname        = "registration:nickname"
	StateRegistrationSetPassword     = "registration:set_password"
	StateRegistrationConfirmPassword = "registration:confirm_set_password"

	StateAuthorizationLogin         = "authorization:login"
	StateAuthorizationPassword      = "authorization:password"
	StateAuthorizationResetPassword = "authorization:reset_password"
	StateAuthorizationConfirmReset  = "authorization:confirm_reset_password"

	StateSettings                = "settings"
	StateSettingsUsername        = "settings:set_username"
	StateSettingsLogin           = "settings:set_login_name"
	StateSettingsPassword        = "settings:set_password"
	StateSettingsConfirmPassword = "settings:confirm_set_password"

	StateTasks                  = "tasks"
	StateTasksCreateName        = "tasks:create:set_name"
	StateTasksCreateDescription = "tasks:create:set_description"
	StateTasksCreateStart       = "tasks:create:set_start_time"
	StateTasksCreateEnd         = "tasks:create:set_end_time"
	StateTasksView              = "tasks:view"
	StateTasksEdit              = "tasks:edit"
	StateTasksEditTask          = "tasks:edit:edit_task"
	StateTasksEditName          = "tasks:edit:edit_task:set_name"
	StateTasksEditDescription   = "tasks:edit:edit_task:set_description"
	StateTasksEditStart         = "tasks:edit:edit_task:set_start_date"
	StateTasksEditEnd           = "tasks:edit:edit_task:set_end_date"
	StateTasksEditDelete        = "tasks:edit:edit_task:delete"
)
