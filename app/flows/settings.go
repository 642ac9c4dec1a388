package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/core/dispatch"
)

// showSettings drops flow keys and opens the settings menu.
func (f *Flows) showSettings(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if _, err := t.SetData(ctx, t.Data().Only(keyOwner)); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateSettings); err != nil {
		return err
	}
	return t.Send(ctx, msgSettingsMenu, settingsKeyboard(owner))
}

// settingsPrompt moves to state and asks with the settings back buttons.
func (f *Flows) settingsPrompt(state, text string) dispatch.HandlerFunc {
	return func(ctx context.Context, t *dispatch.Turn) error {
		owner, _ := sessionOwner(t)
		if err := t.SetState(ctx, state); err != nil {
			return err
		}
		return t.Send(ctx, text, settingsBackKeyboard(owner))
	}
}

func (f *Flows) settingsUsername(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	name := input(t)
	if name == "" {
		return t.Send(ctx, msgEmptyInput, settingsBackKeyboard(owner))
	}
	if err := f.accounts.SetUsername(ctx, owner, name); err != nil {
		return fmt.Errorf("set username: %w", err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgUsernameSetFmt, name)); err != nil {
		return err
	}
	return f.showSettings(ctx, t)
}

func (f *Flows) settingsLogin(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	login := input(t)
	if login == "" {
		return t.Send(ctx, msgEmptyInput, settingsBackKeyboard(owner))
	}
	free, err := f.loginFree(ctx, login, owner)
	if err != nil {
		return err
	}
	if free {
		err = f.accounts.SetLogin(ctx, owner, login)
	}
	if !free || errors.Is(err, accounts.ErrLoginTaken) {
		return t.Send(ctx, msgNewLoginTaken, settingsBackKeyboard(owner))
	}
	if err != nil {
		return fmt.Errorf("set login: %w", err)
	}
	if err := say(ctx, t, fmt.Sprintf(msgLoginSetFmt, login)); err != nil {
		return err
	}
	return f.showSettings(ctx, t)
}

func (f *Flows) settingsPassword(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	return f.acceptPassword(ctx, t, StateSettingsConfirmPassword, settingsBackKeyboard(owner))
}

func (f *Flows) settingsConfirmPassword(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	hash, ok, err := f.confirmPassword(ctx, t, StateSettingsPassword, settingsBackKeyboard(owner))
	if err != nil || !ok {
		return err
	}
	if err := f.accounts.SetPassword(ctx, owner, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if err := say(ctx, t, msgPasswordChanged); err != nil {
		return err
	}
	return f.showSettings(ctx, t)
}
