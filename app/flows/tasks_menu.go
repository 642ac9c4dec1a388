package flows

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/m3rciful/taskbot/app/tasks"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
)

// showTasksMenu resets the context to the session and opens the tasks menu.
func (f *Flows) showTasksMenu(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if _, err := t.SetData(ctx, t.Data().Only(keyOwner)); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateTasks); err != nil {
		return err
	}
	return t.Send(ctx, msgTasksMenu, tasksMenuKeyboard(owner, owner == t.UserID()))
}

// backToTasks reopens the tasks menu, or the start menu without a session.
func (f *Flows) backToTasks(ctx context.Context, t *dispatch.Turn) error {
	if _, ok := sessionOwner(t); !ok {
		return f.start(ctx, t)
	}
	return f.showTasksMenu(ctx, t)
}

func (f *Flows) beginCreateTask(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if err := t.SetState(ctx, StateTasksCreateName); err != nil {
		return err
	}
	return t.Send(ctx, msgAskTaskName, tasksBackKeyboard(owner))
}

func (f *Flows) createTaskName(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	name := input(t)
	if name == "" {
		return t.Send(ctx, msgEmptyInput, tasksBackKeyboard(owner))
	}
	if err := t.Merge(ctx, fsm.Data{keyTaskName: name}); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateTasksCreateDescription); err != nil {
		return err
	}
	return t.Send(ctx, msgAskTaskDescription, tasksBackKeyboard(owner))
}

func (f *Flows) createTaskDescription(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if err := t.Merge(ctx, fsm.Data{keyTaskDescription: input(t)}); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateTasksCreateStart); err != nil {
		return err
	}
	return t.Send(ctx, datePrompt(""), tasksBackKeyboard(owner))
}

func (f *Flows) createTaskStart(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	start, err := tasks.ParseDate(input(t))
	if err != nil {
		return t.Send(ctx, msgBadDate+datePrompt(""), tasksBackKeyboard(owner))
	}
	formatted := tasks.FormatDate(start)
	if err := t.Merge(ctx, fsm.Data{keyTaskStart: formatted}); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateTasksCreateEnd); err != nil {
		return err
	}
	return t.Send(ctx, datePrompt(formatted), tasksBackKeyboard(owner))
}

func (f *Flows) createTaskEnd(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	data := t.Data()
	rawStart, _ := data.String(keyTaskStart)
	start, err := tasks.ParseDate(rawStart)
	if err != nil {
		return f.showTasksMenu(ctx, t)
	}
	end, err := tasks.ParseDate(input(t))
	if err == nil {
		err = tasks.ValidateRange(start, end)
	}
	if err != nil {
		return t.Send(ctx, msgBadDate+datePrompt(rawStart), tasksBackKeyboard(owner))
	}
	name, _ := data.String(keyTaskName)
	description, _ := data.String(keyTaskDescription)
	if _, err := f.tasks.Create(ctx, tasks.Task{
		OwnerID:     owner,
		Name:        name,
		Description: description,
		Start:       start,
		End:         end,
	}); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if err := say(ctx, t, msgTaskCreated); err != nil {
		return err
	}
	return f.showTasksMenu(ctx, t)
}

// datePrompt asks for a start date, or for an end date after the given start.
func datePrompt(after string) string {
	if after == "" {
		return "Введите дату и время старта задачи в формате DD.MM.YYYY HH:MM (UTC)"
	}
	return "Введите дату и время завершения задачи в формате DD.MM.YYYY HH:MM (UTC).\n" +
		"Дата должна быть позже, чем " + after
}

func (f *Flows) showViewMenu(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if err := t.SetState(ctx, StateTasksView); err != nil {
		return err
	}
	return t.Send(ctx, msgViewMenu, viewMenuKeyboard(owner))
}

var viewFilterRe = regexp.MustCompile(viewFilterToken)

// viewTasks sends one message per task matching the filter in the token.
func (f *Flows) viewTasks(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	m := viewFilterRe.FindStringSubmatch(t.Token())
	if m == nil {
		return f.showViewMenu(ctx, t)
	}
	filter, err := tasks.ParseFilter(m[1])
	if err != nil {
		return err
	}
	now := f.now()
	list, err := f.tasks.List(ctx, owner, filter, now)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(list) == 0 {
		if err := say(ctx, t, msgNoTasksOfKind); err != nil {
			return err
		}
	}
	for _, task := range list {
		if err := say(ctx, t, taskCard(task, now)); err != nil {
			return err
		}
	}
	return f.showViewMenu(ctx, t)
}

func taskCard(task tasks.Task, now time.Time) string {
	status := cardStatusActive
	switch {
	case task.Done:
		status = cardStatusDone
	case task.Overdue(now):
		status = cardStatusLate
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Задача %s №%d\n\n", task.Name, task.ID)
	fmt.Fprintf(&b, "Описание задачи:\n%s\n\n", task.Description)
	fmt.Fprintf(&b, "Время старта (UTC):\n%s\n\n", tasks.FormatDate(task.Start))
	fmt.Fprintf(&b, "Время завершения (UTC):\n%s\n\n", tasks.FormatDate(task.End))
	fmt.Fprintf(&b, "Статус задачи:\n%s", status)
	if task.Done && task.CompletedAt.Valid {
		fmt.Fprintf(&b, "\n\nВремя выполнения (UTC):\n%s", tasks.FormatDate(task.CompletedAt.Time))
	}
	return b.String()
}
