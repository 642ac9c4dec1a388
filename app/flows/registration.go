package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
)

// hasNoAccount holds for users who have not registered yet.
func (f *Flows) hasNoAccount(ctx context.Context, t *dispatch.Turn) (bool, error) {
	_, err := f.accounts.ByOwner(ctx, t.UserID())
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		return true, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

func (f *Flows) beginRegistration(ctx context.Context, t *dispatch.Turn) error {
	if err := t.SetState(ctx, StateRegistrationUsername); err != nil {
		return err
	}
	return t.Send(ctx, msgAskUsername, continueKeyboard())
}

func (f *Flows) registrationUsername(ctx context.Context, t *dispatch.Turn) error {
	name := input(t)
	if name == btnContinue {
		name = t.Sender.FirstName
	}
	if name == "" {
		return t.Send(ctx, msgEmptyInput, continueKeyboard())
	}
	if err := t.Merge(ctx, fsm.Data{keyUsername: name}); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateRegistrationNickname); err != nil {
		return err
	}
	return t.Send(ctx, fmt.Sprintf(msgAskLoginFmt, name), continueKeyboard())
}

// loginInput reads a login, "Продолжить" meaning the Telegram username.
func loginInput(t *dispatch.Turn) string {
	login := input(t)
	if login == btnContinue {
		login = t.Sender.Username
	}
	return login
}

func (f *Flows) loginFree(ctx context.Context, login string, self int64) (bool, error) {
	acc, err := f.accounts.ByLogin(ctx, login)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		return true, nil
	case err != nil:
		return false, err
	}
	return acc.OwnerID == self, nil
}

func (f *Flows) registrationLogin(ctx context.Context, t *dispatch.Turn) error {
	login := loginInput(t)
	if login == "" {
		return t.Send(ctx, msgLoginMissing, continueKeyboard())
	}
	free, err := f.loginFree(ctx, login, 0)
	if err != nil {
		return err
	}
	if !free {
		return t.Send(ctx, msgLoginTaken, continueKeyboard())
	}
	if err := t.Merge(ctx, fsm.Data{keyLogin: login}); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateRegistrationSetPassword); err != nil {
		return err
	}
	return t.Send(ctx, msgPasswordRules, toMainKeyboard())
}

func (f *Flows) registrationPassword(ctx context.Context, t *dispatch.Turn) error {
	return f.acceptPassword(ctx, t, StateRegistrationConfirmPassword, toMainKeyboard())
}

func (f *Flows) registrationConfirm(ctx context.Context, t *dispatch.Turn) error {
	hash, ok, err := f.confirmPassword(ctx, t, StateRegistrationSetPassword, toMainKeyboard())
	if err != nil || !ok {
		return err
	}
	data := t.Data()
	login, _ := data.String(keyLogin)
	username, _ := data.String(keyUsername)
	err = f.accounts.Create(ctx, accounts.Account{
		OwnerID:      t.UserID(),
		LoginName:    login,
		Username:     username,
		PasswordHash: hash,
		LoggedIn:     true,
	})
	if errors.Is(err, accounts.ErrLoginTaken) {
		if _, err := t.SetData(ctx, t.Data().Without(keyPasswordHash)); err != nil {
			return err
		}
		if err := t.SetState(ctx, StateRegistrationNickname); err != nil {
			return err
		}
		return t.Send(ctx, msgLoginTaken, continueKeyboard())
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if err := say(ctx, t, msgRegistered); err != nil {
		return err
	}
	return f.startFor(ctx, t, t.UserID())
}
