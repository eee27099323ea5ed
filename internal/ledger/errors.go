package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrAccountLocked      = errors.New("account is locked, contact the administrator")
	ErrInvalidPIN         = errors.New("pin must be a 4-digit number")
	ErrIncorrectPIN       = errors.New("incorrect pin")
	ErrAttemptsExhausted  = errors.New("no pin attempts left for this login")
	ErrInvalidAmount      = errors.New("amount must be a positive value with at most two decimals")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrDuplicateID        = errors.New("account number already exists")
	ErrInvalidType        = errors.New("invalid account type")
	ErrInvalidInput       = errors.New("invalid account details")
	ErrNotConfirmed       = errors.New("deletion not confirmed")
	ErrStorageFailure     = errors.New("storage failure")
)

// IncorrectPINError reports a wrong PIN that did not lock the account.
type IncorrectPINError struct {
	Remaining int // submissions left before the login ends or the account locks
}

func (e *IncorrectPINError) Error() string {
	return fmt.Sprintf("incorrect pin, %d attempt(s) remaining", e.Remaining)
}

func (e *IncorrectPINError) Is(target error) bool {
	return target == ErrIncorrectPIN
}

// DailyLimitError carries the limit state behind a rejected debit.
type DailyLimitError struct {
	Limit     decimal.Decimal
	UsedToday decimal.Decimal
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily limit exceeded: limit %s, already used today %s",
		e.Limit.StringFixed(2), e.UsedToday.StringFixed(2))
}

func (e *DailyLimitError) Is(target error) bool {
	return target == ErrDailyLimitExceeded
}
