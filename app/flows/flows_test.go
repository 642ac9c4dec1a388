package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/app/tasks"
	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/chat/chattest"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
)

const password = "Passw0rd!"

type harness struct {
	t        *testing.T
	d        *dispatch.Dispatcher
	engine   *fsm.Engine
	out      *chattest.Recorder
	accounts *accounts.MemoryRepository
	tasks    *tasks.MemoryRepository
	now      time.Time
	msgID    int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	engine, err := fsm.NewEngine(context.Background(), fsm.NewMemoryStore(), fsm.Options{RetryInitial: time.Millisecond})
	require.NoError(t, err)

	h := &harness{
		t:        t,
		engine:   engine,
		out:      chattest.NewRecorder(),
		accounts: accounts.NewMemoryRepository(),
		tasks:    tasks.NewMemoryRepository(),
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.accounts.OnDelete = h.tasks.DeleteOwner
	h.d = dispatch.New(engine, h.out, dispatch.Options{DeleteIncoming: true})
	New(h.accounts, h.tasks, Options{
		Hasher:   accounts.NewHasher(bcrypt.MinCost),
		PageSize: 3,
		Now:      func() time.Time { return h.now },
	}).Register(h.d)
	return h
}

func sender(user int64) chat.Sender {
	return chat.Sender{UserID: user, ChatID: user, FirstName: "Ann", Username: fmt.Sprintf("user%d", user)}
}

func (h *harness) dispatch(ev chat.Event) dispatch.Result {
	h.t.Helper()
	res, err := h.d.Dispatch(context.Background(), ev)
	require.NoError(h.t, err)
	if res.Matched {
		assert.True(h.t, res.Sent > 0 || res.Transitioned, "route %s did nothing", res.Route)
	}
	return res
}

func (h *harness) text(user int64, s string) dispatch.Result {
	h.t.Helper()
	h.msgID++
	return h.dispatch(chat.TextMessage{Sender: sender(user), MessageID: h.msgID, Text: s})
}

func (h *harness) press(user int64, token string) dispatch.Result {
	h.t.Helper()
	return h.dispatch(chat.CallbackAction{Sender: sender(user), Token: token})
}

func (h *harness) state(user int64) string {
	s, _ := h.engine.State(user)
	return s
}

func (h *harness) last() chattest.Sent {
	h.t.Helper()
	msg, ok := h.out.Last()
	require.True(h.t, ok, "nothing sent")
	return msg
}

func (h *harness) sentTexts() []string {
	var out []string
	for _, m := range h.out.Sent() {
		out = append(out, m.Text)
	}
	return out
}

func (h *harness) register(user int64) {
	h.t.Helper()
	h.text(user, "/start")
	h.text(user, btnRegistration)
	h.text(user, btnContinue)
	h.text(user, btnContinue)
	h.text(user, password)
	h.text(user, password)
	require.Equal(h.t, StateMainMenu, h.state(user))
}

// loginAs authorizes user into the account registered under login.
func (h *harness) loginAs(user int64, login string) {
	h.t.Helper()
	h.text(user, "/start")
	h.text(user, btnAuthorization)
	h.text(user, login)
	h.text(user, password)
	require.Equal(h.t, StateMainMenu, h.state(user))
}

func (h *harness) addTask(owner int64, name string) int64 {
	h.t.Helper()
	id, err := h.tasks.Create(context.Background(), tasks.Task{
		OwnerID: owner,
		Name:    name,
		Start:   h.now.Add(-time.Hour),
		End:     h.now.Add(time.Hour),
	})
	require.NoError(h.t, err)
	return id
}

func tokens(kb chat.Keyboard) []string {
	var out []string
	for _, row := range kb.Inline {
		for _, b := range row {
			out = append(out, b.Token)
		}
	}
	return out
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestStartShowsWelcomeAndIgnoresNoise(t *testing.T) {
	h := newHarness(t)

	h.text(1, "/start")
	assert.Equal(t, StateRegistrationAuthorization, h.state(1))
	greeting := h.last()
	assert.Contains(t, greeting.Text, "Привет, Ann")
	assert.Equal(t, [][]string{{btnAuthorization}, {btnRegistration}}, greeting.Keyboard.Reply)

	sent := len(h.out.Sent())
	res := h.text(1, "hello")
	assert.False(t, res.Matched)
	assert.Equal(t, StateRegistrationAuthorization, h.state(1))
	assert.Len(t, h.out.Sent(), sent)

	h.text(1, btnRegistration)
	assert.Equal(t, StateRegistrationUsername, h.state(1))
}

func TestRegistration(t *testing.T) {
	h := newHarness(t)
	h.text(1, "/start")
	h.text(1, btnRegistration)

	h.text(1, btnContinue)
	assert.Equal(t, StateRegistrationNickname, h.state(1))
	assert.Contains(t, h.last().Text, "Ann")

	h.text(1, btnContinue)
	assert.Equal(t, StateRegistrationSetPassword, h.state(1))

	h.text(1, "weak")
	assert.Equal(t, StateRegistrationSetPassword, h.state(1))
	assert.True(t, strings.HasPrefix(h.last().Text, msgPasswordInvalid))

	h.text(1, password)
	assert.Equal(t, StateRegistrationConfirmPassword, h.state(1))
	hash, _ := h.engine.Data(1).String(keyPasswordHash)
	assert.NotEqual(t, password, hash)

	h.text(1, "Passw0rd?")
	assert.Equal(t, StateRegistrationSetPassword, h.state(1))
	_, kept := h.engine.Data(1)[keyPasswordHash]
	assert.False(t, kept)

	h.text(1, password)
	h.text(1, password)
	assert.Equal(t, StateMainMenu, h.state(1))
	assert.Contains(t, h.sentTexts(), msgRegistered)

	acc, err := h.accounts.ByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "user1", acc.LoginName)
	assert.Equal(t, "Ann", acc.Username)
	assert.True(t, acc.LoggedIn)

	data := h.engine.Data(1)
	owner, ok := data.Int64(keyOwner)
	require.True(t, ok)
	assert.Equal(t, int64(1), owner)
	_, hashLeft := data[keyPasswordHash]
	assert.False(t, hashLeft)
}

func TestRegistrationRejectsTakenLogin(t *testing.T) {
	h := newHarness(t)
	h.register(1)

	h.text(2, "/start")
	h.text(2, btnRegistration)
	h.text(2, btnContinue)
	h.text(2, "user1")
	assert.Equal(t, StateRegistrationNickname, h.state(2))
	assert.Equal(t, msgLoginTaken, h.last().Text)
}

func TestRegistrationRepromptsOverlongPassword(t *testing.T) {
	h := newHarness(t)
	h.text(1, "/start")
	h.text(1, btnRegistration)
	h.text(1, btnContinue)
	h.text(1, btnContinue)
	require.Equal(t, StateRegistrationSetPassword, h.state(1))

	h.out.Reset()
	h.text(1, "Aa1!"+strings.Repeat("a", 80))
	assert.Equal(t, StateRegistrationSetPassword, h.state(1))
	assert.Equal(t, msgPasswordInvalid+msgPasswordRules, h.last().Text)
	_, stored := h.engine.Data(1)[keyPasswordHash]
	assert.False(t, stored)
}

func TestRegistrationLoginTakenAtConfirmDropsHash(t *testing.T) {
	h := newHarness(t)
	h.text(1, "/start")
	h.text(1, btnRegistration)
	h.text(1, btnContinue)
	h.text(1, btnContinue)
	h.text(1, password)
	require.Equal(t, StateRegistrationConfirmPassword, h.state(1))

	require.NoError(t, h.accounts.Create(context.Background(), accounts.Account{OwnerID: 9, LoginName: "user1"}))
	h.text(1, password)
	assert.Equal(t, StateRegistrationNickname, h.state(1))
	assert.Equal(t, msgLoginTaken, h.last().Text)
	_, kept := h.engine.Data(1)[keyPasswordHash]
	assert.False(t, kept)
}

func TestRegisteredUserCannotRegisterAgain(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.text(1, btnLogout)
	require.Equal(t, StateRegistrationAuthorization, h.state(1))

	h.text(1, btnRegistration)
	assert.Contains(t, h.sentTexts(), msgAccessDenied)
	assert.Equal(t, StateRegistrationAuthorization, h.state(1))
}

func TestDelegateLoginAndOwnershipGate(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	taskID := h.addTask(1, "report")

	h.loginAs(2, "user1")
	owner, _ := h.engine.Data(2).Int64(keyOwner)
	assert.Equal(t, int64(1), owner)
	assert.Contains(t, h.last().Text, "не из кабинета")
	assert.Equal(t, [][]string{{btnTasks}, {btnLogout}}, h.last().Keyboard.Reply)

	h.text(2, btnTasks)
	require.Equal(t, StateTasks, h.state(2))
	assert.NotContains(t, tokens(h.last().Keyboard), tokTasksCreate+"1")

	h.press(2, tokTasksCreate+"1")
	assert.Equal(t, StateTasks, h.state(2))
	assert.Contains(t, h.sentTexts(), msgAccessDenied)

	h.press(2, tokTasksEdit+"1")
	require.Equal(t, StateTasksEdit, h.state(2))
	h.press(2, tokEditPick+itoa(taskID)+":1")
	require.Equal(t, StateTasksEditTask, h.state(2))
	assert.Equal(t, []string{tokEditView + "1", tokTasksMenu + "1", tokMainMenu + ":1"}, tokens(h.last().Keyboard))

	h.press(2, tokEditView+"1")
	assert.Equal(t, StateTasksEditTask, h.state(2))

	h.out.Reset()
	h.press(2, tokEditStatus+"1")
	assert.Equal(t, msgAccessDenied, h.out.Sent()[0].Text)
	assert.Equal(t, StateTasks, h.state(2))

	task, err := h.tasks.Get(context.Background(), taskID, 1)
	require.NoError(t, err)
	assert.False(t, task.Done)
}

func TestDelegateCannotResetOwnersPassword(t *testing.T) {
	h := newHarness(t)
	h.register(1)

	h.text(2, "/start")
	h.text(2, btnAuthorization)
	h.text(2, "user1")
	require.Equal(t, StateAuthorizationPassword, h.state(2))
	assert.Equal(t, [][]string{{btnMainMenu}}, h.last().Keyboard.Reply)

	h.text(2, btnResetPassword)
	assert.Contains(t, h.sentTexts(), msgAccessDenied)
	assert.Equal(t, StateRegistrationAuthorization, h.state(2))
}

func TestOwnerResetsPassword(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.text(1, btnLogout)

	h.text(1, btnAuthorization)
	h.text(1, btnContinue)
	require.Equal(t, StateAuthorizationPassword, h.state(1))
	h.text(1, "Wrong1!pass")
	assert.Equal(t, msgWrongPassword, h.last().Text)

	h.text(1, btnResetPassword)
	require.Equal(t, StateAuthorizationResetPassword, h.state(1))
	h.text(1, "N3w!secret")
	h.text(1, "N3w!secret")
	assert.Equal(t, StateAuthorizationLogin, h.state(1))

	acc, err := h.accounts.ByOwner(context.Background(), 1)
	require.NoError(t, err)
	ok, err := accounts.NewHasher(bcrypt.MinCost).Check(acc.PasswordHash, "N3w!secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStaleTokenIsDenied(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.out.Reset()

	h.press(1, tokTasksMenu+"999")
	texts := h.sentTexts()
	require.NotEmpty(t, texts)
	assert.Equal(t, msgAccessDenied, texts[0])
	assert.Equal(t, StateMainMenu, h.state(1))
}

func TestLogoutEndsSharedSession(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.loginAs(2, "user1")

	h.text(2, btnLogout)
	assert.Equal(t, StateRegistrationAuthorization, h.state(2))
	acc, err := h.accounts.ByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, acc.LoggedIn)

	h.text(1, "/start")
	assert.Equal(t, StateRegistrationAuthorization, h.state(1))
	assert.Equal(t, [][]string{{btnAuthorization}, {btnDeleteAccount}}, h.last().Keyboard.Reply)
}

func TestLogoutFromAnyState(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.text(1, btnTasks)
	h.press(1, tokTasksCreate+"1")
	require.Equal(t, StateTasksCreateName, h.state(1))

	h.text(1, btnLogout)
	assert.Equal(t, StateRegistrationAuthorization, h.state(1))
	assert.Contains(t, h.sentTexts(), msgLoggedOut)
	acc, err := h.accounts.ByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, acc.LoggedIn)
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.addTask(1, "report")

	h.text(1, btnDeleteAccount)
	assert.Equal(t, []string{tokDeleteAccount + "1", tokMainMenu + ":1"}, tokens(h.last().Keyboard))

	h.press(1, tokDeleteAccount+"1")
	assert.Equal(t, StateRegistrationAuthorization, h.state(1))
	assert.Contains(t, h.sentTexts(), msgAccountDeleted)

	_, err := h.accounts.ByOwner(context.Background(), 1)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
	ids, err := h.tasks.IDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestForeignDeleteTokenIsDenied(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.register(2)

	h.press(2, tokDeleteAccount+"1")
	assert.Contains(t, h.sentTexts(), msgAccessDenied)
	_, err := h.accounts.ByOwner(context.Background(), 1)
	assert.NoError(t, err)
	_, err = h.accounts.ByOwner(context.Background(), 2)
	assert.NoError(t, err)
}

func TestSettings(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.register(2)

	h.text(1, btnSettings)
	require.Equal(t, StateSettings, h.state(1))

	h.press(1, tokSettingsUsername+"1")
	require.Equal(t, StateSettingsUsername, h.state(1))
	h.text(1, "Annie")
	assert.Equal(t, StateSettings, h.state(1))

	h.press(1, tokSettingsLogin+"1")
	h.text(1, "user2")
	assert.Equal(t, msgNewLoginTaken, h.last().Text)
	assert.Equal(t, StateSettingsLogin, h.state(1))
	h.text(1, "annie")
	assert.Equal(t, StateSettings, h.state(1))

	h.press(1, tokSettingsPassword+"1")
	h.text(1, "N3w!secret")
	h.text(1, "N3w!secreT")
	assert.Equal(t, StateSettingsPassword, h.state(1))
	h.text(1, "N3w!secret")
	h.text(1, "N3w!secret")
	assert.Equal(t, StateSettings, h.state(1))

	acc, err := h.accounts.ByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Annie", acc.Username)
	assert.Equal(t, "annie", acc.LoginName)
	ok, err := accounts.NewHasher(bcrypt.MinCost).Check(acc.PasswordHash, "N3w!secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateTask(t *testing.T) {
	h := newHarness(t)
	h.register(1)

	h.text(1, btnTasks)
	h.press(1, tokTasksCreate+"1")
	require.Equal(t, StateTasksCreateName, h.state(1))
	h.text(1, "Buy milk")
	h.text(1, "2 liters")
	require.Equal(t, StateTasksCreateStart, h.state(1))

	h.text(1, "31.02.2025 10:00")
	assert.Equal(t, StateTasksCreateStart, h.state(1))
	assert.True(t, strings.HasPrefix(h.last().Text, msgBadDate))

	h.text(1, "01.06.2025 10:00")
	require.Equal(t, StateTasksCreateEnd, h.state(1))
	h.text(1, "01.06.2025 10:00")
	assert.Equal(t, StateTasksCreateEnd, h.state(1))
	assert.Contains(t, h.last().Text, "01.06.2025 10:00")

	h.text(1, "01.06.2025 18:30")
	assert.Equal(t, StateTasks, h.state(1))
	assert.Contains(t, h.sentTexts(), msgTaskCreated)

	list, err := h.tasks.List(context.Background(), 1, tasks.FilterAll, h.now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", list[0].Name)
	assert.Equal(t, "2 liters", list[0].Description)
	assert.Equal(t, time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC), list[0].End)

	data := h.engine.Data(1)
	for _, key := range []string{keyTaskName, keyTaskDescription, keyTaskStart} {
		_, left := data[key]
		assert.False(t, left, key)
	}
}

func TestViewTasksByFilter(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.addTask(1, "current")
	late, err := h.tasks.Create(context.Background(), tasks.Task{
		OwnerID: 1, Name: "late", Start: h.now.Add(-3 * time.Hour), End: h.now.Add(-time.Hour),
	})
	require.NoError(t, err)

	h.text(1, btnTasks)
	h.press(1, tokTasksView+"1")
	require.Equal(t, StateTasksView, h.state(1))

	h.out.Reset()
	h.press(1, "tasks:view_overdue_tasks:1")
	texts := h.sentTexts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], fmt.Sprintf("late №%d", late))
	assert.Contains(t, texts[0], cardStatusLate)
	assert.Equal(t, msgViewMenu, texts[1])

	h.out.Reset()
	h.press(1, "tasks:view_completed_tasks:1")
	assert.Equal(t, []string{msgNoTasksOfKind, msgViewMenu}, h.sentTexts())
}

func TestEditorPaging(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	var ids []int64
	for i := 0; i < 7; i++ {
		ids = append(ids, h.addTask(1, fmt.Sprintf("task %d", i)))
	}

	h.text(1, btnTasks)
	h.press(1, tokTasksEdit+"1")
	require.Equal(t, StateTasksEdit, h.state(1))
	first := tokens(h.last().Keyboard)
	assert.Contains(t, first, tokEditPick+itoa(ids[0])+":1")
	assert.Contains(t, first, tokEditPage+"next")
	assert.NotContains(t, first, tokEditPage+"previous")

	h.press(1, tokEditPage+"next")
	offset, _ := h.engine.Data(1).Int64(keyPagination)
	assert.Equal(t, int64(3), offset)
	second := tokens(h.last().Keyboard)
	assert.Contains(t, second, tokEditPick+itoa(ids[3])+":1")
	assert.Contains(t, second, tokEditPage+"previous")

	h.press(1, tokEditPage+"end")
	last := tokens(h.last().Keyboard)
	assert.Contains(t, last, tokEditPick+itoa(ids[6])+":1")
	assert.NotContains(t, last, tokEditPick+itoa(ids[5])+":1")
	assert.NotContains(t, last, tokEditPage+"next")

	h.text(1, "abc")
	assert.True(t, strings.HasPrefix(h.last().Text, msgBadTaskNumber))
	assert.Equal(t, StateTasksEdit, h.state(1))

	h.text(1, "99999")
	assert.True(t, strings.HasPrefix(h.last().Text, msgTaskNotFound))

	h.text(1, itoa(ids[4]))
	assert.Equal(t, StateTasksEditTask, h.state(1))
	picked, _ := h.engine.Data(1).Int64(keyTaskID)
	assert.Equal(t, ids[4], picked)
}

func TestOwnerEditsTask(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	taskID := h.addTask(1, "draft")

	h.text(1, btnTasks)
	h.press(1, tokTasksEdit+"1")
	h.text(1, itoa(taskID))
	require.Equal(t, StateTasksEditTask, h.state(1))

	h.press(1, tokEditStatus+"1")
	assert.Equal(t, fmt.Sprintf(msgStatusSetFmt, taskID, statusDone), h.out.Sent()[len(h.out.Sent())-2].Text)

	h.press(1, tokEditName+"1")
	require.Equal(t, StateTasksEditName, h.state(1))
	h.text(1, "final")

	h.press(1, tokEditEnd+"1")
	require.Equal(t, StateTasksEditEnd, h.state(1))
	h.text(1, "01.06.2025 10:00")
	assert.Equal(t, StateTasksEditEnd, h.state(1))
	assert.True(t, strings.HasPrefix(h.last().Text, msgBadDate))
	h.text(1, "02.06.2025 10:00")
	assert.Equal(t, StateTasksEditTask, h.state(1))

	task, err := h.tasks.Get(context.Background(), taskID, 1)
	require.NoError(t, err)
	assert.True(t, task.Done)
	assert.True(t, task.CompletedAt.Valid)
	assert.Equal(t, "final", task.Name)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), task.End)

	h.press(1, tokEditDelete+"1")
	require.Equal(t, StateTasksEditDelete, h.state(1))
	h.press(1, tokEditConfirmDel+"1")
	assert.Equal(t, StateTasks, h.state(1))
	assert.Contains(t, h.sentTexts(), msgNoTasks)
	_, err = h.tasks.Get(context.Background(), taskID, 1)
	assert.ErrorIs(t, err, tasks.ErrNotFound)
}

func TestInlineMenusAreDeletedOnNextTurn(t *testing.T) {
	h := newHarness(t)
	h.register(1)

	h.text(1, btnTasks)
	menu := h.last()
	require.True(t, menu.Keyboard.IsInline())
	assert.Equal(t, []int64{int64(menu.ID)}, h.engine.Data(1).Int64s(keyPendingDelete))

	h.press(1, tokTasksView+"1")
	assert.Contains(t, h.out.Deleted(), menu.ID)
	view := h.last()

	h.text(1, btnMainMenu)
	assert.Contains(t, h.out.Deleted(), view.ID)
	assert.Contains(t, h.out.Deleted(), h.msgID)
	assert.Equal(t, StateMainMenu, h.state(1))
	assert.Empty(t, h.engine.Data(1).Int64s(keyPendingDelete))
}

func TestMainMenuResetsContext(t *testing.T) {
	h := newHarness(t)
	h.register(1)
	h.text(1, btnTasks)
	h.press(1, tokTasksCreate+"1")
	h.text(1, "half-done")

	h.text(1, btnMainMenu)
	assert.Equal(t, StateMainMenu, h.state(1))
	data := h.engine.Data(1)
	_, left := data[keyTaskName]
	assert.False(t, left)
	owner, _ := data.Int64(keyOwner)
	assert.Equal(t, int64(1), owner)
}
