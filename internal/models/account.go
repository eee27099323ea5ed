package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MaxHistory        = 50 // transactions kept per account
	StatementSize     = 10 // transactions shown on a mini statement
	MaxFailedAttempts = 3  // consecutive wrong PINs before lockout
)

// DefaultDailyLimit applies to accounts opened through the admin dashboard.
var DefaultDailyLimit = decimal.NewFromInt(20000)

// AccountType determines which rules an account follows.
type AccountType string

const (
	Savings AccountType = "savings"
	Current AccountType = "current"
)

// AccountRule is the per-type behavior of an account.
type AccountRule struct {
	InterestRate  decimal.Decimal // annual rate given to new accounts
	EarnsInterest bool
}

// AccountRules is the rule table consulted for every type-dependent decision.
var AccountRules = map[AccountType]AccountRule{
	Savings: {InterestRate: decimal.RequireFromString("0.04"), EarnsInterest: true},
	Current: {InterestRate: decimal.Zero, EarnsInterest: false},
}

// ParseAccountType accepts a type name in any case.
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	_, ok := AccountRules[t]
	return t, ok
}

// Rule returns the rule for t; unknown types follow the zero rule (no interest).
func (t AccountType) Rule() AccountRule {
	return AccountRules[t]
}

// Account is the persisted record of one customer.
type Account struct {
	ID               string
	HolderName       string
	PIN              string // bcrypt hash; legacy files may hold the plain PIN until next login
	Balance          decimal.Decimal
	Type             AccountType
	Transactions     []Transaction // oldest first, at most MaxHistory
	FailedAttempts   int
	Locked           bool
	DailyLimit       decimal.Decimal
	WithdrawnToday   decimal.Decimal // consumed against DailyLimit on LastWithdrawDate
	LastWithdrawDate Date
	InterestRate     decimal.Decimal
	LastInterestDate Date
}

// Record appends tx to the history, dropping the oldest entries past MaxHistory.
func (a *Account) Record(tx Transaction) {
	a.Transactions = append(a.Transactions, tx)
	if n := len(a.Transactions); n > MaxHistory {
		kept := make([]Transaction, MaxHistory)
		copy(kept, a.Transactions[n-MaxHistory:])
		a.Transactions = kept
	}
}

// Statement returns a copy of the last n transactions, oldest first.
func (a *Account) Statement(n int) []Transaction {
	start := len(a.Transactions) - n
	if start < 0 {
		start = 0
	}
	out := make([]Transaction, len(a.Transactions)-start)
	copy(out, a.Transactions[start:])
	return out
}

// ResetDailyWindow zeroes the withdrawal counter when today starts a new window.
func (a *Account) ResetDailyWindow(today Date) {
	if a.LastWithdrawDate != today {
		a.WithdrawnToday = decimal.Zero
		a.LastWithdrawDate = today
	}
}

// Clone returns a deep copy of a.
func (a *Account) Clone() *Account {
	cp := *a
	if a.Transactions != nil {
		cp.Transactions = make([]Transaction, len(a.Transactions))
		copy(cp.Transactions, a.Transactions)
	}
	return &cp
}
