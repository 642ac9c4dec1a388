package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
)

func (f *Flows) beginAuthorization(ctx context.Context, t *dispatch.Turn) error {
	if err := t.SetState(ctx, StateAuthorizationLogin); err != nil {
		return err
	}
	return t.Send(ctx, msgAskAuthLogin, continueKeyboard())
}

func (f *Flows) authorizationLogin(ctx context.Context, t *dispatch.Turn) error {
	login := loginInput(t)
	acc, err := f.accounts.ByLogin(ctx, login)
	if errors.Is(err, accounts.ErrNotFound) || login == "" {
		return t.Send(ctx, msgUnknownLogin, continueKeyboard())
	}
	if err != nil {
		return fmt.Errorf("find login: %w", err)
	}
	if err := t.Merge(ctx, fsm.Data{keyLogin: login}); err != nil {
		return err
	}
	if err := t.SetState(ctx, StateAuthorizationPassword); err != nil {
		return err
	}
	return t.Send(ctx, msgAskAuthPassword, passwordLoginKeyboard(acc.OwnerID == t.UserID()))
}

// loginAccount loads the account chosen at the login step.
func (f *Flows) loginAccount(ctx context.Context, t *dispatch.Turn) (accounts.Account, bool, error) {
	login, _ := t.Data().String(keyLogin)
	if login == "" {
		return accounts.Account{}, false, nil
	}
	acc, err := f.accounts.ByLogin(ctx, login)
	if errors.Is(err, accounts.ErrNotFound) {
		return accounts.Account{}, false, nil
	}
	if err != nil {
		return accounts.Account{}, false, fmt.Errorf("find login: %w", err)
	}
	return acc, true, nil
}

// ownsLogin holds when the account chosen at the login step is the user's own.
func (f *Flows) ownsLogin(ctx context.Context, t *dispatch.Turn) (bool, error) {
	acc, ok, err := f.loginAccount(ctx, t)
	if err != nil || !ok {
		return false, err
	}
	return acc.OwnerID == t.UserID(), nil
}

func (f *Flows) authorizationPassword(ctx context.Context, t *dispatch.Turn) error {
	acc, ok, err := f.loginAccount(ctx, t)
	if err != nil {
		return err
	}
	if !ok {
		return f.start(ctx, t)
	}
	match, err := f.hasher.Check(acc.PasswordHash, input(t))
	if err != nil {
		return err
	}
	if !match {
		return t.Send(ctx, msgWrongPassword, passwordLoginKeyboard(acc.OwnerID == t.UserID()))
	}
	if err := f.accounts.SetLoggedIn(ctx, acc.OwnerID, true); err != nil {
		return fmt.Errorf("login %d: %w", acc.OwnerID, err)
	}
	if err := say(ctx, t, msgAuthorized); err != nil {
		return err
	}
	return f.startFor(ctx, t, acc.OwnerID)
}

func (f *Flows) beginResetPassword(ctx context.Context, t *dispatch.Turn) error {
	if err := t.SetState(ctx, StateAuthorizationResetPassword); err != nil {
		return err
	}
	return t.Send(ctx, msgPasswordRules, toMainKeyboard())
}

func (f *Flows) resetPassword(ctx context.Context, t *dispatch.Turn) error {
	return f.acceptPassword(ctx, t, StateAuthorizationConfirmReset, toMainKeyboard())
}

func (f *Flows) confirmResetPassword(ctx context.Context, t *dispatch.Turn) error {
	hash, ok, err := f.confirmPassword(ctx, t, StateAuthorizationResetPassword, toMainKeyboard())
	if err != nil || !ok {
		return err
	}
	if err := f.accounts.SetPassword(ctx, t.UserID(), hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if _, err := t.SetData(ctx, t.Data().Without(keyPasswordHash)); err != nil {
		return err
	}
	if err := say(ctx, t, msgPasswordChanged); err != nil {
		return err
	}
	return f.beginAuthorization(ctx, t)
}
