package ledger

import (
	"context"
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models/events"
)

// NewAccount is what the admin enters to open an account.
type NewAccount struct {
	ID             string `validate:"required"`
	Holder         string
	PIN            string `validate:"pin"`
	OpeningBalance decimal.Decimal
	Type           string `validate:"account_type"`
}

// AccountSummary is one row of the admin account listing.
type AccountSummary struct {
	ID      string
	Holder  string
	Type    models.AccountType
	Balance decimal.Decimal
	Locked  bool
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return auth.ValidPIN(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("account_type", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		_, ok := models.ParseAccountType(fl.Field().String())
		return ok
	}); err != nil {
		return nil, err
	}
	return v, nil
}

// checkNewAccount maps the first failing field rule to its domain error.
func (e *Engine) checkNewAccount(req NewAccount) error {
	if err := e.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}
		switch fieldErrs[0].Field() {
		case "PIN":
			return ErrInvalidPIN
		case "Type":
			return ErrInvalidType
		default:
			return ErrInvalidInput
		}
	}
	if !models.InMoneyRange(req.OpeningBalance) || req.OpeningBalance.IsNegative() ||
		!req.OpeningBalance.Equal(models.RoundMoney(req.OpeningBalance)) {
		return ErrInvalidAmount
	}
	return nil
}

// CreateAccount opens an account with the default daily limit and the
// interest rate of its type. A positive opening balance is logged as a deposit.
func (e *Engine) CreateAccount(ctx context.Context, req NewAccount) (*models.Account, error) {
	var created *models.Account
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		if _, exists := l.Get(req.ID); exists {
			return nil, ErrDuplicateID
		}
		if err := e.checkNewAccount(req); err != nil {
			return nil, err
		}
		accountType, _ := models.ParseAccountType(req.Type)

		pin, err := e.hasher.Hash(req.PIN)
		if err != nil {
			return nil, err
		}

		today := e.today()
		a := &models.Account{
			ID:               req.ID,
			HolderName:       req.Holder,
			PIN:              pin,
			Balance:          req.OpeningBalance,
			Type:             accountType,
			Transactions:     []models.Transaction{},
			DailyLimit:       models.DefaultDailyLimit,
			WithdrawnToday:   decimal.Zero,
			LastWithdrawDate: today,
			InterestRate:     accountType.Rule().InterestRate,
			LastInterestDate: today,
		}
		l.Put(a)

		var evts []events.TransactionCompleted
		if a.Balance.IsPositive() {
			evts = append(evts, e.record(a, models.KindDeposit, a.Balance, "Opening deposit", ""))
		}
		created = a.Clone()
		return evts, nil
	})
	if err != nil {
		return nil, err
	}
	e.log.WithField("account_id", req.ID).WithField("type", created.Type).Info("account created")
	return created, nil
}

// DeleteAccount removes id and its history for good. Nothing happens unless
// confirmed is true.
func (e *Engine) DeleteAccount(ctx context.Context, id string, confirmed bool) error {
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		if _, err := lookup(l, id); err != nil {
			return nil, err
		}
		if !confirmed {
			return nil, ErrNotConfirmed
		}
		l.Delete(id)
		return nil, nil
	})
	if err != nil {
		return err
	}
	e.log.WithField("account_id", id).Info("account deleted")
	return nil
}

// UnlockAccount clears the lockout and the failure counter of id.
func (e *Engine) UnlockAccount(ctx context.Context, id string) error {
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		a, err := lookup(l, id)
		if err != nil {
			return nil, err
		}
		a.Locked = false
		a.FailedAttempts = 0
		return nil, nil
	})
	if err != nil {
		return err
	}
	e.log.WithField("account_id", id).Info("account unlocked")
	return nil
}

// ListAccounts summarizes every account in ledger order.
func (e *Engine) ListAccounts() []AccountSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]AccountSummary, 0, e.state.Len())
	for _, a := range e.state.Accounts() {
		out = append(out, AccountSummary{
			ID:      a.ID,
			Holder:  a.HolderName,
			Type:    a.Type,
			Balance: a.Balance,
			Locked:  a.Locked,
		})
	}
	return out
}
