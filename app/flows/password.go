package flows

import (
	"context"
	"fmt"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/core/chat"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
)

// acceptPassword validates a new password and stores its hash for the
// confirmation step. An invalid password re-prompts in the same state.
func (f *Flows) acceptPassword(ctx context.Context, t *dispatch.Turn, next string, kb chat.Keyboard) error {
	pw := input(t)
	if !accounts.ValidatePassword(pw) {
		return t.Send(ctx, msgPasswordInvalid+msgPasswordRules, kb)
	}
	hash, err := f.hasher.Hash(pw)
	if err != nil {
		return err
	}
	if err := t.Merge(ctx, fsm.Data{keyPasswordHash: hash}); err != nil {
		return err
	}
	if err := t.SetState(ctx, next); err != nil {
		return err
	}
	return t.Send(ctx, msgConfirmPassword, kb)
}

// confirmPassword checks the repeated password against the stored hash. On a
// mismatch it moves back to retry and reports ok=false.
func (f *Flows) confirmPassword(ctx context.Context, t *dispatch.Turn, retry string, kb chat.Keyboard) (string, bool, error) {
	hash, _ := t.Data().String(keyPasswordHash)
	match := false
	if hash != "" {
		var err error
		if match, err = f.hasher.Check(hash, input(t)); err != nil {
			return "", false, fmt.Errorf("confirm password: %w", err)
		}
	}
	if match {
		return hash, true, nil
	}
	if _, err := t.SetData(ctx, t.Data().Without(keyPasswordHash)); err != nil {
		return "", false, err
	}
	if err := t.SetState(ctx, retry); err != nil {
		return "", false, err
	}
	return "", false, t.Send(ctx, msgPasswordsMismatch+msgPasswordRules, kb)
}
