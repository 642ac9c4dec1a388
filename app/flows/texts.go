package flows

// Reply keyboard labels. Handlers match on these exact strings.
const (
	btnRegistration  = "Регистрация"
	btnAuthorization = "Авторизация"
	btnContinue      = "Продолжить"
	btnMainMenu      = "В главное меню"
	btnResetPassword = "Восстановление пароля"
	btnLogout        = "Выйти с аккаунта"
	btnDeleteAccount = "Удалить аккаунт"
	btnSettings      = "Изменение настроек"
	btnTasks         = "Меню просмотра задач"
)

// Inline button captions.
const (
	capBackToMain    = "Вернуться в главное меню"
	capBack          = "Вернуться назад"
	capDeleteAccount = "Удалить аккаунт"
	capSetUsername   = "Изменить название профиля"
	capSetLogin      = "Изменить логин"
	capSetPassword   = "Изменить пароль"
	capCreateTask    = "Создать новую задачу"
	capViewTasks     = "Просмотреть созданные задачи"
	capEditTasks     = "Редактировать созданные задачи"
	capViewCurrent   = "Просмотреть все действующие задачи"
	capViewCompleted = "Просмотреть все выполненные задачи"
	capViewOverdue   = "Просмотреть все просроченные задачи"
	capViewAll       = "Просмотреть все задачи"
	capPrevious      = "Предыдущие"
	capNext          = "Следующие"
	capStart         = "Перейти в начало"
	capEnd           = "Перейти в конец"
	capViewTask      = "Просмотреть данную задачу"
	capEditStatus    = "Изменить статус задачи"
	capEditName      = "Изменить название задачи"
	capEditDesc      = "Изменить описание задачи"
	capEditStart     = "Изменить дату и время старта задачи"
	capEditEnd       = "Изменить дату и время окончания задачи"
	capDeleteTask    = "Удалить задачу"
	capYes           = "Да"
	capNo            = "Нет"
)

const (
	msgAccessDenied = "Вы не имеете доступ к данному функционалу"

	msgGreetingFmt      = "Привет, %s.\n\nДля продолжения работы с данным ботом,\n"
	msgGreetingRegister = "пройдите регистрацию, нажав на кнопку 'Регистрация', или\n"
	msgGreetingLogin    = "пройдите авторизацию, нажав на кнопку 'Авторизация'"
	msgMainMenuFmt      = "Был выполнен вход %sиз кабинета владельца!\nПривет, %s.\n\n" +
		"Ты находишься в главном меню приложения.\nДля продолжения работы с ботом нажмите на нижние кнопки"

	msgAskUsername       = "Введите ваше имя в системе или нажмите «Продолжить», чтобы использовать ваше имя в Telegram"
	msgAskLoginFmt       = "Ваше имя: %s. Введите логин для доступа к боту или нажмите «Продолжить», чтобы использовать ваш логин Telegram"
	msgLoginTaken        = "Данный логин уже занят. Введите другой логин или нажмите «Продолжить»"
	msgLoginMissing      = "У вашего аккаунта Telegram нет логина. Введите логин вручную"
	msgEmptyInput        = "Пустое значение не подходит. Повторите ввод"
	msgConfirmPassword   = "Подтвердите ваш новый пароль, введя его еще раз"
	msgPasswordsMismatch = "Пароли не совпадают!\n"
	msgRegistered        = "Регистрация в боте прошла успешно"

	msgAskAuthLogin    = "Введите ваш логин для авторизации или нажмите «Продолжить», чтобы использовать ваш логин Telegram"
	msgUnknownLogin    = "Данный логин не был обнаружен. Повторите ввод логина"
	msgAskAuthPassword = "Введите ваш пароль от аккаунта"
	msgWrongPassword   = "Вы ввели неверный пароль. Повторите попытку или восстановите пароль"
	msgAuthorized      = "Вы успешно авторизовались"
	msgPasswordChanged = "Пароль успешно изменен"
	msgLoggedOut       = "Вы успешно отключились от аккаунта"

	msgConfirmDeleteAccount = "Вы точно уверены, что хотите удалить аккаунт?"
	msgAccountDeleted       = "Привязанный аккаунт был успешно удален"

	msgSettingsMenu   = "Данное меню предназначено для изменения настроек профиля"
	msgAskNewUsername = "Введите ваше новое имя"
	msgUsernameSetFmt = "Имя успешно изменено. Новое имя: %s"
	msgAskNewLogin    = "Введите ваш новый логин"
	msgNewLoginTaken  = "Данный логин уже существует!\nВведите ваш новый логин"
	msgLoginSetFmt    = "Логин успешно изменен. Новый логин: %s"

	msgTasksMenu = "Только владелец аккаунта может создавать новые задачи.\n" +
		"Данное меню позволяет:\n\n1) Создать новую задачу\n2) Посмотреть созданные задачи\n3) Редактировать созданные задачи"
	msgAskTaskName        = "Введите название вашей новой задачи"
	msgAskTaskDescription = "Введите описание вашей новой задачи"
	msgTaskCreated        = "Новая задача успешно создана"

	msgViewMenu = "В данном меню вы можете:\n\n1) Просмотреть все действующие задачи\n" +
		"2) Просмотреть все выполненные задачи\n3) Просмотреть все просроченные задачи\n4) Просмотреть все задачи"
	msgNoTasksOfKind = "Задачи данного типа у вас отсутствуют"

	msgNoTasks        = "У вас отсутствуют созданные задачи"
	msgPickTask       = "Введите номер вашей задачи или выберите ее из списка"
	msgBadTaskNumber  = "Неверный формат ввода. Отправьте номер задачи заново"
	msgTaskNotFound   = "Данная задача не найдена. Отправьте номер задачи заново"
	msgEditMenu       = "В данном меню вы можете просмотреть задачу, изменить ее статус, название, описание, даты, или удалить ее"
	msgStatusSetFmt   = "Статус задачи №%d изменен на «%s»"
	msgAskNewName     = "Введите новое название задачи"
	msgAskNewDesc     = "Введите новое описание задачи"
	msgNameSetFmt     = "Название задачи №%d изменено на %s"
	msgDescSetFmt     = "Описание задачи №%d изменено на:\n%s"
	msgStartSetFmt    = "Дата старта задачи (UTC) обновлена на %s"
	msgEndSetFmt      = "Дата завершения задачи (UTC) обновлена на %s"
	msgConfirmDelFmt  = "Вы точно хотите удалить задачу №%d?"
	msgTaskDeletedFmt = "Задача №%d была успешно удалена"

	statusDone       = "Завершена"
	statusNotDone    = "Не завершена"
	cardStatusDone   = "завершена"
	cardStatusLate   = "просрочена"
	cardStatusActive = "выполняется"
)

const msgPasswordRules = "Введите ваш новый пароль.\n\n" +
	"Он должен соответствовать следующим критериям:\n\n" +
	"1) От 8 до 72 символов\n" +
	"2) Должен содержать спецсимвол (@$!%*?&#), цифру, заглавную и строчную букву\n" +
	"3) Разрешено использовать только латиницу"

const msgPasswordInvalid = "Вы ввели пароль, не соответствующий критериям!\n"

const msgBadDate = "Вы ввели неверный формат даты и времени!\n"
