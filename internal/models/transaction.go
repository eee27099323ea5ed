package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind names what a history entry did to the balance.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindWithdraw    TransactionKind = "withdraw"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
	KindInterest    TransactionKind = "interest"
)

// Transaction is one entry of an account's history. It is owned by exactly one Account.
type Transaction struct {
	Time         time.Time
	Kind         TransactionKind
	Amount       decimal.Decimal // always positive
	BalanceAfter decimal.Decimal // balance once the entry was applied
	Note         string          // free text, e.g. the counterparty account id
}

// RoundMoney rounds to minor units (two decimal places, half away from zero).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

const (
	maxMoneyIntegerDigits = 15  // up to 999 trillion
	maxMoneyScale         = 400 // covers the smallest float a legacy file can hold
)

// InMoneyRange reports whether d can be rounded and stored without
// expanding its exponent: at most 15 integer digits and a bounded scale.
// It only inspects the coefficient and exponent, so it is safe on input
// such as 1e900000000.
func InMoneyRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -maxMoneyScale {
		return false
	}
	if d.IsZero() {
		return true
	}
	return int64(d.NumDigits())+exp <= maxMoneyIntegerDigits
}
