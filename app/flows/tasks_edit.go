package flows

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/m3rciful/taskbot/app/tasks"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
	"github.com/m3rciful/taskbot/core/paging"
)

var editPageRe = regexp.MustCompile(`^` + tokEditPage + `(previous|next|start|end)$`)

// openEditor snapshots the owner's task ids and shows the first page.
func (f *Flows) openEditor(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	ids, err := f.tasks.IDs(ctx, owner)
	if err != nil {
		return fmt.Errorf("list task ids: %w", err)
	}
	if len(ids) == 0 {
		if err := say(ctx, t, msgNoTasks); err != nil {
			return err
		}
		return f.showTasksMenu(ctx, t)
	}
	data := t.Data().Only(keyOwner).With(keyListIDs, ids).With(keyPagination, 0)
	if _, err := t.SetData(ctx, data); err != nil {
		return err
	}
	return f.renderEditor(ctx, t, "")
}

// window is the list page stored in FSM data.
func (f *Flows) window(t *dispatch.Turn) (paging.Window, []int64) {
	data := t.Data()
	ids := data.Int64s(keyListIDs)
	offset, _ := data.Int64(keyPagination)
	return paging.New(int(offset), f.pageSize, len(ids)), ids
}

// renderEditor shows the current page, prefixed by note when set.
func (f *Flows) renderEditor(ctx context.Context, t *dispatch.Turn, note string) error {
	owner, _ := sessionOwner(t)
	if err := t.SetState(ctx, StateTasksEdit); err != nil {
		return err
	}
	w, ids := f.window(t)
	return t.Send(ctx, note+msgPickTask, taskListKeyboard(owner, w, ids, f.columns))
}

func (f *Flows) editPage(ctx context.Context, t *dispatch.Turn) error {
	m := editPageRe.FindStringSubmatch(t.Token())
	if m == nil {
		return f.renderEditor(ctx, t, "")
	}
	w, _ := f.window(t)
	switch m[1] {
	case "previous":
		w = w.Previous()
	case "next":
		w = w.Next()
	case "start":
		w = w.Start()
	case "end":
		w = w.End()
	}
	if err := t.Merge(ctx, fsm.Data{keyPagination: w.Offset}); err != nil {
		return err
	}
	return f.renderEditor(ctx, t, "")
}

// pickTask selects a task by the number typed or the button pressed.
func (f *Flows) pickTask(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	raw := input(t)
	if t.Token() != "" {
		raw = tokenField(t, 3)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return f.renderEditor(ctx, t, msgBadTaskNumber+"\n\n")
	}
	if _, err := f.tasks.Get(ctx, id, owner); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			return f.renderEditor(ctx, t, msgTaskNotFound+"\n\n")
		}
		return fmt.Errorf("get task %d: %w", id, err)
	}
	if err := t.Merge(ctx, fsm.Data{keyTaskID: id}); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

func (f *Flows) showEditMenu(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if _, ok := t.Data().Int64(keyTaskID); !ok {
		return f.openEditor(ctx, t)
	}
	if err := t.SetState(ctx, StateTasksEditTask); err != nil {
		return err
	}
	return t.Send(ctx, msgEditMenu, editMenuKeyboard(owner, owner == t.UserID()))
}

// currentTask loads the selected task. When it is gone the editor list is
// shown again and ok is false.
func (f *Flows) currentTask(ctx context.Context, t *dispatch.Turn) (task tasks.Task, ok bool, err error) {
	owner, _ := sessionOwner(t)
	id, found := t.Data().Int64(keyTaskID)
	if found {
		task, err = f.tasks.Get(ctx, id, owner)
		if err == nil {
			return task, true, nil
		}
		if !errors.Is(err, tasks.ErrNotFound) {
			return task, false, fmt.Errorf("get task %d: %w", id, err)
		}
		if err := say(ctx, t, msgTaskNotFound); err != nil {
			return task, false, err
		}
	}
	return task, false, f.openEditor(ctx, t)
}

func (f *Flows) viewTask(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	if err := say(ctx, t, taskCard(task, f.now())); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

func (f *Flows) toggleStatus(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	done, err := f.tasks.ToggleStatus(ctx, task.ID, task.OwnerID, f.now())
	if err != nil {
		return fmt.Errorf("toggle task %d: %w", task.ID, err)
	}
	status := statusNotDone
	if done {
		status = statusDone
	}
	if err := say(ctx, t, fmt.Sprintf(msgStatusSetFmt, task.ID, status)); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

// editPrompt moves to state and asks for the new value of the selected task.
func (f *Flows) editPrompt(state string, text func(tasks.Task) string) dispatch.HandlerFunc {
	return func(ctx context.Context, t *dispatch.Turn) error {
		task, ok, err := f.currentTask(ctx, t)
		if err != nil || !ok {
			return err
		}
		if err := t.SetState(ctx, state); err != nil {
			return err
		}
		return t.Send(ctx, text(task), editBackKeyboard(task.OwnerID))
	}
}

func startPrompt(task tasks.Task) string {
	return datePrompt("") + ".\nДата должна быть раньше, чем " + tasks.FormatDate(task.End)
}

func endPrompt(task tasks.Task) string {
	return datePrompt(tasks.FormatDate(task.Start))
}

func (f *Flows) editName(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	name := input(t)
	if name == "" {
		return t.Send(ctx, msgEmptyInput, editBackKeyboard(task.OwnerID))
	}
	if err := f.tasks.SetName(ctx, task.ID, task.OwnerID, name); err != nil {
		return fmt.Errorf("rename task %d: %w", task.ID, err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgNameSetFmt, task.ID, name)); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

func (f *Flows) editDescription(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	description := input(t)
	if err := f.tasks.SetDescription(ctx, task.ID, task.OwnerID, description); err != nil {
		return fmt.Errorf("describe task %d: %w", task.ID, err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgDescSetFmt, task.ID, description)); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

func (f *Flows) editStart(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	start, err := tasks.ParseDate(input(t))
	if err == nil {
		err = tasks.ValidateRange(start, task.End)
	}
	if err != nil {
		return t.Send(ctx, msgBadDate+startPrompt(task), editBackKeyboard(task.OwnerID))
	}
	if err := f.tasks.SetStart(ctx, task.ID, task.OwnerID, start); err != nil {
		return fmt.Errorf("move task %d start: %w", task.ID, err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgStartSetFmt, tasks.FormatDate(start))); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

func (f *Flows) editEnd(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	end, err := tasks.ParseDate(input(t))
	if err == nil {
		err = tasks.ValidateRange(task.Start, end)
	}
	if err != nil {
		return t.Send(ctx, msgBadDate+endPrompt(task), editBackKeyboard(task.OwnerID))
	}
	if err := f.tasks.SetEnd(ctx, task.ID, task.OwnerID, end); err != nil {
		return fmt.Errorf("move task %d end: %w", task.ID, err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgEndSetFmt, tasks.FormatDate(end))); err != nil {
		return err
	}
	return f.showEditMenu(ctx, t)
}

func (f *Flows) askDeleteTask(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	if err := t.SetState(ctx, StateTasksEditDelete); err != nil {
		return err
	}
	return t.Send(ctx, fmt.Sprintf(msgConfirmDelFmt, task.ID), confirmDeleteTaskKeyboard(task.OwnerID))
}

func (f *Flows) deleteTask(ctx context.Context, t *dispatch.Turn) error {
	task, ok, err := f.currentTask(ctx, t)
	if err != nil || !ok {
		return err
	}
	if err := f.tasks.Delete(ctx, task.ID, task.OwnerID); err != nil && !errors.Is(err, tasks.ErrNotFound) {
		return fmt.Errorf("delete task %d: %w", task.ID, err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgTaskDeletedFmt, task.ID)); err != nil {
		return err
	}
	return f.openEditor(ctx, t)
}
