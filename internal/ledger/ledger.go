package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	interfaces "github.com/sheikh-saqib/atm-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models/events"
)

// errNoChange aborts a commit without saving when an operation turns out to be a no-op.
var errNoChange = errors.New("no change")

// Engine runs every operation that reads or changes account state.
// It owns the in-memory ledger and a single mutex serializes each
// load-mutate-save, so transfers never need per-account locks.
type Engine struct {
	repo      interfaces.Repository
	publisher interfaces.EventPublisher
	topic     string
	hasher    *auth.PINHasher
	validate  *validator.Validate
	now       func() time.Time
	log       logrus.FieldLogger

	mu    sync.Mutex
	state *models.Ledger
}

type Option func(*Engine)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPublisher announces every committed transaction on topic.
func WithPublisher(p interfaces.EventPublisher, topic string) Option {
	return func(e *Engine) {
		e.publisher = p
		e.topic = topic
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

func WithPINHasher(h *auth.PINHasher) Option {
	return func(e *Engine) { e.hasher = h }
}

// Open loads the ledger from repo and returns an engine that persists every
// change back through it.
func Open(ctx context.Context, repo interfaces.Repository, opts ...Option) (*Engine, error) {
	e := &Engine{
		repo:   repo,
		hasher: auth.NewPINHasher(0),
		now:    time.Now,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	e.validate = v

	state, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	e.state = state
	return e, nil
}

// commit stages fn on a copy of the ledger. The copy is saved and becomes
// current only when fn succeeds; otherwise the live ledger is untouched.
func (e *Engine) commit(ctx context.Context, fn func(staged *models.Ledger) ([]events.TransactionCompleted, error)) error {
	e.mu.Lock()
	staged := e.state.Clone()
	evts, err := fn(staged)
	if err == nil {
		if saveErr := e.repo.Save(ctx, staged); saveErr != nil {
			err = fmt.Errorf("%w: %w", ErrStorageFailure, saveErr)
		} else {
			e.state = staged
		}
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.publish(ctx, evts)
	return nil
}

func (e *Engine) view(fn func(l *models.Ledger) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

func (e *Engine) publish(ctx context.Context, evts []events.TransactionCompleted) {
	for _, evt := range evts {
		e.log.WithField("account_id", evt.AccountID).
			WithField("kind", evt.Kind).
			WithField("amount", evt.Amount.StringFixed(2)).
			WithField("balance_after", evt.BalanceAfter.StringFixed(2)).
			Info("transaction committed")
	}
	if e.publisher == nil {
		return
	}
	for _, evt := range evts {
		if err := e.publisher.Publish(ctx, e.topic, evt.AccountID, evt); err != nil {
			e.log.WithError(err).
				WithField("event_id", evt.EventID).
				WithField("account_id", evt.AccountID).
				Warn("publish transaction event failed")
		}
	}
}

func (e *Engine) today() models.Date {
	return models.DateOf(e.now())
}

// record appends a history entry to a and returns the matching event.
func (e *Engine) record(a *models.Account, kind models.TransactionKind, amount decimal.Decimal, note, counterparty string) events.TransactionCompleted {
	now := e.now()
	a.Record(models.Transaction{
		Time:         now,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: a.Balance,
		Note:         note,
	})
	return events.TransactionCompleted{
		EventID:      uuid.New().String(),
		AccountID:    a.ID,
		Kind:         string(kind),
		Amount:       amount,
		BalanceAfter: a.Balance,
		Counterparty: counterparty,
		OccurredAt:   now,
	}
}

// validAmount checks the range before rounding; rounding an unbounded
// exponent would allocate the full expansion.
func validAmount(amount decimal.Decimal) error {
	if !models.InMoneyRange(amount) || !amount.IsPositive() || !amount.Equal(models.RoundMoney(amount)) {
		return ErrInvalidAmount
	}
	return nil
}

func lookup(l *models.Ledger, id string) (*models.Account, error) {
	a, ok := l.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// Account returns a copy of the account with id.
func (e *Engine) Account(id string) (*models.Account, error) {
	var out *models.Account
	err := e.view(func(l *models.Ledger) error {
		a, err := lookup(l, id)
		if err != nil {
			return err
		}
		out = a.Clone()
		return nil
	})
	return out, err
}

// Balance returns the current balance of id.
func (e *Engine) Balance(id string) (decimal.Decimal, error) {
	a, err := e.Account(id)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// Deposit credits amount to id and returns the new balance.
func (e *Engine) Deposit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		a, err := lookup(l, id)
		if err != nil {
			return nil, err
		}
		a.Balance = a.Balance.Add(amount)
		balance = a.Balance
		return []events.TransactionCompleted{e.record(a, models.KindDeposit, amount, "Cash deposit", "")}, nil
	})
	return balance, err
}

// debit applies the daily-window reset, the funds check and the daily limit
// check to a, then takes amount off its balance.
func debit(a *models.Account, amount decimal.Decimal, today models.Date) error {
	a.ResetDailyWindow(today)
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	if a.WithdrawnToday.Add(amount).GreaterThan(a.DailyLimit) {
		return &DailyLimitError{Limit: a.DailyLimit, UsedToday: a.WithdrawnToday}
	}
	a.Balance = a.Balance.Sub(amount)
	a.WithdrawnToday = a.WithdrawnToday.Add(amount)
	return nil
}

// Withdraw debits amount from id within its daily limit and returns the new balance.
func (e *Engine) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		a, err := lookup(l, id)
		if err != nil {
			return nil, err
		}
		if err := debit(a, amount, e.today()); err != nil {
			return nil, err
		}
		balance = a.Balance
		return []events.TransactionCompleted{e.record(a, models.KindWithdraw, amount, "Cash withdrawal", "")}, nil
	})
	return balance, err
}

// Transfer moves amount from sourceID to targetID. Only the source is held
// to its daily limit. Both sides are persisted by one save, and the source's
// new balance is returned.
func (e *Engine) Transfer(ctx context.Context, sourceID, targetID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if sourceID == targetID {
		return decimal.Zero, ErrSameAccount
	}

	var balance decimal.Decimal
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		source, err := lookup(l, sourceID)
		if err != nil {
			return nil, err
		}
		target, err := lookup(l, targetID)
		if err != nil {
			return nil, err
		}
		if err := debit(source, amount, e.today()); err != nil {
			return nil, err
		}
		target.Balance = target.Balance.Add(amount)
		balance = source.Balance

		return []events.TransactionCompleted{
			e.record(source, models.KindTransferOut, amount, "Transfer to "+targetID, targetID),
			e.record(target, models.KindTransferIn, amount, "Transfer from "+sourceID, sourceID),
		}, nil
	})
	return balance, err
}

// MiniStatement returns the last transactions of id, oldest first.
func (e *Engine) MiniStatement(id string) ([]models.Transaction, error) {
	a, err := e.Account(id)
	if err != nil {
		return nil, err
	}
	return a.Statement(models.StatementSize), nil
}

type InterestOutcome int

const (
	InterestApplied InterestOutcome = iota
	InterestNotEligible
	InterestNoRate
	InterestUpToDate
	InterestNothingToApply
)

func (o InterestOutcome) String() string {
	switch o {
	case InterestApplied:
		return "interest applied"
	case InterestNotEligible:
		return "interest applies only to savings accounts"
	case InterestNoRate:
		return "no interest rate set for this account"
	case InterestUpToDate:
		return "interest is already up to date"
	case InterestNothingToApply:
		return "no interest to apply"
	default:
		return "unknown"
	}
}

// InterestResult describes an accrual attempt. Anything but InterestApplied
// is a no-op that left the account unchanged.
type InterestResult struct {
	Outcome  InterestOutcome
	Months   int
	Rate     decimal.Decimal
	Interest decimal.Decimal
	Balance  decimal.Decimal
}

func (r InterestResult) Applied() bool {
	return r.Outcome == InterestApplied
}

var twelve = decimal.NewFromInt(12)

// AccrueInterest credits simple interest for every calendar-month boundary
// crossed since the last accrual: balance * rate/12 * months, rounded to
// minor units.
func (e *Engine) AccrueInterest(ctx context.Context, id string) (InterestResult, error) {
	var res InterestResult
	err := e.commit(ctx, func(l *models.Ledger) ([]events.TransactionCompleted, error) {
		a, err := lookup(l, id)
		if err != nil {
			return nil, err
		}
		res.Balance = a.Balance
		res.Rate = a.InterestRate

		if !a.Type.Rule().EarnsInterest {
			res.Outcome = InterestNotEligible
			return nil, errNoChange
		}
		if !a.InterestRate.IsPositive() {
			res.Outcome = InterestNoRate
			return nil, errNoChange
		}

		today := e.today()
		last := a.LastInterestDate
		if last.IsZero() {
			last = today
		}
		res.Months = last.MonthsUntil(today)
		if res.Months <= 0 {
			res.Outcome = InterestUpToDate
			return nil, errNoChange
		}

		interest := models.RoundMoney(
			a.Balance.Mul(a.InterestRate).Mul(decimal.NewFromInt(int64(res.Months))).Div(twelve),
		)
		if !interest.IsPositive() {
			res.Outcome = InterestNothingToApply
			return nil, errNoChange
		}

		a.Balance = a.Balance.Add(interest)
		a.LastInterestDate = today
		res.Outcome = InterestApplied
		res.Interest = interest
		res.Balance = a.Balance

		note := fmt.Sprintf("Interest for %d month(s) at %s%% p.a.", res.Months, a.InterestRate.Mul(decimal.NewFromInt(100)).StringFixed(2))
		return []events.TransactionCompleted{e.record(a, models.KindInterest, interest, note, "")}, nil
	})
	if errors.Is(err, errNoChange) {
		return res, nil
	}
	return res, err
}
