package ledger

import (
	"context"

	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models/events"
)

// MaxPINSubmissions bounds the PIN entries accepted by one login.
const MaxPINSubmissions = 3

// Session is an authenticated customer bound to one account.
type Session struct {
	AccountID string
}

// LoginAttempt is one login sequence against an account. It is not safe for
// concurrent use.
type LoginAttempt struct {
	engine      *Engine
	accountID   string
	submissions int
	done        bool
}

// Login starts a login sequence for id. It fails right away when the
// account does not exist or is locked.
func (e *Engine) Login(ctx context.Context, id string) (*LoginAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := e.view(func(l *models.Ledger) error {
		a, err := lookup(l, id)
		if err != nil {
			return err
		}
		if a.Locked {
			return ErrAccountLocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LoginAttempt{engine: e, accountID: id}, nil
}

// Submit checks one PIN entry. Every entry is persisted before it returns:
// a match resets the failure counter, a miss increments it and locks the
// account once it reaches models.MaxFailedAttempts.
func (la *LoginAttempt) Submit(ctx context.Context, pin string) (Session, error) {
	if la.done {
		return Session{}, ErrAttemptsExhausted
	}
	la.submissions++

	var matched, locked bool
	var failures int
	hasher := la.engine.hasher
	err := la.engine.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		a, err := lookup(l, la.accountID)
		if err != nil {
			return nil, err
		}
		if a.Locked {
			return nil, ErrAccountLocked
		}

		ok, legacy := hasher.Verify(a.PIN, pin)
		if ok {
			matched = true
			a.FailedAttempts = 0
			if legacy {
				hashed, err := hasher.Hash(pin)
				if err != nil {
					return nil, err
				}
				a.PIN = hashed
			}
			return nil, nil
		}

		a.FailedAttempts++
		failures = a.FailedAttempts
		if a.FailedAttempts >= models.MaxFailedAttempts {
			a.Locked = true
			locked = true
		}
		return nil, nil
	})

	log := la.engine.log.WithField("account_id", la.accountID)
	switch {
	case err != nil:
		la.done = true
		return Session{}, err
	case matched:
		la.done = true
		log.Info("login succeeded")
		return Session{AccountID: la.accountID}, nil
	case locked:
		la.done = true
		log.Warn("account locked after repeated pin failures")
		return Session{}, ErrAccountLocked
	}

	log.WithField("failed_attempts", failures).Warn("incorrect pin")
	remaining := min(MaxPINSubmissions-la.submissions, models.MaxFailedAttempts-failures)
	if remaining <= 0 {
		la.done = true
		return Session{}, ErrAttemptsExhausted
	}
	return Session{}, &IncorrectPINError{Remaining: remaining}
}

// Done reports whether the sequence has ended, successfully or not.
func (la *LoginAttempt) Done() bool {
	return la.done
}
