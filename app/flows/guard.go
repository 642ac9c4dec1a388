package flows

import (
	"context"
	"log/slog"

	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/logger"
)

type predicate func(ctx context.Context, t *dispatch.Turn) (bool, error)

// guarded runs success when allowed holds and failure otherwise. The
// predicate is evaluated on every call.
func guarded(allowed predicate, success, failure dispatch.HandlerFunc) dispatch.HandlerFunc {
	return func(ctx context.Context, t *dispatch.Turn) error {
		ok, err := allowed(ctx, t)
		if err != nil {
			return err
		}
		if !ok {
			return failure(ctx, t)
		}
		return success(ctx, t)
	}
}

// denied tells the user the action is not theirs and continues with then.
func (f *Flows) denied(then dispatch.HandlerFunc) dispatch.HandlerFunc {
	return func(ctx context.Context, t *dispatch.Turn) error {
		owner, _ := sessionOwner(t)
		logger.Info(ctx, "flows", "access.denied",
			slog.String("route", t.Route),
			slog.Int64("owner_id", owner),
			slog.String("status", "denied"),
		)
		if err := say(ctx, t, msgAccessDenied); err != nil {
			return err
		}
		return then(ctx, t)
	}
}

// withSession holds when FSM data names an account and a callback token, if
// it carries an owner id, names the same one. A mismatch is a stale token.
func (f *Flows) withSession(ctx context.Context, t *dispatch.Turn) (bool, error) {
	owner, ok := sessionOwner(t)
	if !ok {
		return false, nil
	}
	if fromToken, embedded := tokenOwner(t); embedded && fromToken != owner {
		logger.Info(ctx, "flows", "token.stale",
			slog.Int64("owner_id", owner),
			slog.Int64("token_owner", fromToken),
		)
		return false, nil
	}
	return true, nil
}

// ownerOnly additionally requires the acting user to own the session account.
func (f *Flows) ownerOnly(ctx context.Context, t *dispatch.Turn) (bool, error) {
	ok, err := f.withSession(ctx, t)
	if err != nil || !ok {
		return false, err
	}
	owner, _ := sessionOwner(t)
	return owner == t.UserID(), nil
}
