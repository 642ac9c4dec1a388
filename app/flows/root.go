package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
)

// start returns to the top of the dialog for the session account, or for the
// user's own account when there is no session.
func (f *Flows) start(ctx context.Context, t *dispatch.Turn) error {
	owner, ok := sessionOwner(t)
	if !ok {
		owner = t.UserID()
	}
	return f.startFor(ctx, t, owner)
}

// startFor resets the context. A logged-in account opens the main menu with
// owner_id carried over; anything else shows the welcome menu.
func (f *Flows) startFor(ctx context.Context, t *dispatch.Turn, owner int64) error {
	acc, err := f.accounts.ByOwner(ctx, owner)
	found := err == nil
	if err != nil && !errors.Is(err, accounts.ErrNotFound) {
		return fmt.Errorf("load account %d: %w", owner, err)
	}

	if !found || !acc.LoggedIn {
		if owner != t.UserID() {
			return f.startFor(ctx, t, t.UserID())
		}
		if err := t.Reset(ctx, StateRegistrationAuthorization, nil); err != nil {
			return err
		}
		text := fmt.Sprintf(msgGreetingFmt, t.Sender.FirstName)
		if !found {
			text += msgGreetingRegister
		}
		return t.Send(ctx, text+msgGreetingLogin, welcomeKeyboard(found))
	}

	if err := t.Reset(ctx, StateMainMenu, fsm.Data{keyOwner: owner}); err != nil {
		return err
	}
	isOwner := owner == t.UserID()
	prefix := ""
	if !isOwner {
		prefix = "не "
	}
	return t.Send(ctx, fmt.Sprintf(msgMainMenuFmt, prefix, acc.Username), mainMenuKeyboard(isOwner))
}

func (f *Flows) logout(ctx context.Context, t *dispatch.Turn) error {
	owner, _ := sessionOwner(t)
	if err := f.accounts.SetLoggedIn(ctx, owner, false); err != nil && !errors.Is(err, accounts.ErrNotFound) {
		return fmt.Errorf("logout %d: %w", owner, err)
	}
	if err := say(ctx, t, msgLoggedOut); err != nil {
		return err
	}
	return f.startFor(ctx, t, t.UserID())
}

// canDeleteAccount holds when the user owns an account and is not working
// inside somebody else's.
func (f *Flows) canDeleteAccount(ctx context.Context, t *dispatch.Turn) (bool, error) {
	if _, err := f.accounts.ByOwner(ctx, t.UserID()); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if owner, ok := sessionOwner(t); ok && owner != t.UserID() {
		return false, nil
	}
	return true, nil
}

func (f *Flows) canConfirmDeleteAccount(ctx context.Context, t *dispatch.Turn) (bool, error) {
	if owner, ok := tokenOwner(t); !ok || owner != t.UserID() {
		return false, nil
	}
	return f.canDeleteAccount(ctx, t)
}

func (f *Flows) askDeleteAccount(ctx context.Context, t *dispatch.Turn) error {
	return t.Send(ctx, msgConfirmDeleteAccount, confirmDeleteAccountKeyboard(t.UserID()))
}

func (f *Flows) deleteAccount(ctx context.Context, t *dispatch.Turn) error {
	err := f.accounts.Delete(ctx, t.UserID())
	if err != nil && !errors.Is(err, accounts.ErrNotFound) {
		return fmt.Errorf("delete account %d: %w", t.UserID(), err)
	}
	if err == nil {
		if err := say(ctx, t, msgAccountDeleted); err != nil {
			return err
		}
	}
	return f.startFor(ctx, t, t.UserID())
}
