package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsUntil(t *testing.T) {
	cases := []struct {
		from, to string
		want     int
	}{
		{"2024-01-15", "2024-04-02", 3},
		{"2024-01-31", "2024-02-01", 1},
		{"2024-01-01", "2024-01-31", 0},
		{"2023-12-31", "2024-01-01", 1},
		{"2024-05-10", "2024-03-10", -2},
	}
	for _, tc := range cases {
		from, err := ParseDate(tc.from)
		require.NoError(t, err)
		to, err := ParseDate(tc.to)
		require.NoError(t, err)
		assert.Equal(t, tc.want, from.MonthsUntil(to), "%s -> %s", tc.from, tc.to)
	}
}

func TestDate(t *testing.T) {
	d := DateOf(time.Date(2024, time.March, 7, 23, 59, 0, 0, time.Local))
	assert.Equal(t, "2024-03-07", d.String())
	assert.False(t, d.IsZero())
	assert.True(t, Date{}.IsZero())

	var parsed Date
	require.NoError(t, parsed.UnmarshalText([]byte("2024-03-07")))
	assert.Equal(t, d, parsed)
	assert.Error(t, parsed.UnmarshalText([]byte("07/03/2024")))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "33.33", RoundMoney(decimal.RequireFromString("33.333333")).StringFixed(2))
	assert.Equal(t, "0.13", RoundMoney(decimal.RequireFromString("0.125")).StringFixed(2))
	assert.Equal(t, "-0.13", RoundMoney(decimal.RequireFromString("-0.125")).StringFixed(2))
	assert.Equal(t, "10100.00", RoundMoney(decimal.NewFromFloat(10100.000000000002)).StringFixed(2))
}

func TestInMoneyRange(t *testing.T) {
	for in, want := range map[string]bool{
		"0":                   true,
		"20000":               true,
		"0.001":               true,
		"999999999999999.99":  true,
		"10100.000000000002":  true,
		"1000000000000000":    false,
		"1e16":                false,
		"1e900000000":         false,
		"1e-900000000":        false,
		"-999999999999999.99": true,
	} {
		assert.Equal(t, want, InMoneyRange(decimal.RequireFromString(in)), in)
	}
	assert.True(t, InMoneyRange(decimal.Decimal{}))
}

func TestParseAccountType(t *testing.T) {
	typ, ok := ParseAccountType(" SAVINGS ")
	assert.True(t, ok)
	assert.Equal(t, Savings, typ)
	assert.True(t, typ.Rule().EarnsInterest)

	_, ok = ParseAccountType("checking")
	assert.False(t, ok)
	assert.False(t, AccountType("checking").Rule().EarnsInterest)
	assert.False(t, Current.Rule().EarnsInterest)
}

func TestAccountRecordKeepsLastFifty(t *testing.T) {
	a := &Account{ID: "1"}
	for i := 1; i <= MaxHistory+7; i++ {
		a.Record(Transaction{Kind: KindDeposit, Amount: decimal.NewFromInt(int64(i))})
	}
	require.Len(t, a.Transactions, MaxHistory)
	assert.Equal(t, "8", a.Transactions[0].Amount.String())

	stmt := a.Statement(StatementSize)
	require.Len(t, stmt, StatementSize)
	assert.Equal(t, "48", stmt[0].Amount.String())
	assert.Equal(t, "57", stmt[9].Amount.String())

	stmt[0].Note = "changed"
	assert.Empty(t, a.Transactions[MaxHistory-StatementSize].Note, "statement is a copy")

	short := &Account{}
	short.Record(Transaction{Kind: KindWithdraw})
	assert.Len(t, short.Statement(StatementSize), 1)
}

func TestResetDailyWindow(t *testing.T) {
	day := Date{Year: 2024, Month: time.January, Day: 15}
	a := &Account{WithdrawnToday: decimal.NewFromInt(500), LastWithdrawDate: day}

	a.ResetDailyWindow(day)
	assert.Equal(t, "500", a.WithdrawnToday.String())

	next := Date{Year: 2024, Month: time.January, Day: 16}
	a.ResetDailyWindow(next)
	assert.True(t, a.WithdrawnToday.IsZero())
	assert.Equal(t, next, a.LastWithdrawDate)
}

func TestLedgerOrderAndClone(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"b", "a", "c"} {
		l.Put(&Account{ID: id, Balance: decimal.NewFromInt(1)})
	}
	l.Put(&Account{ID: "a", Balance: decimal.NewFromInt(9)})

	ids := func(l *Ledger) string {
		out := ""
		for _, a := range l.Accounts() {
			out += a.ID
		}
		return out
	}
	assert.Equal(t, "bac", ids(l), "replacing keeps the position")
	assert.Equal(t, 3, l.Len())

	cp := l.Clone()
	got, _ := cp.Get("a")
	got.Balance = decimal.NewFromInt(100)
	got.Record(Transaction{Kind: KindDeposit})
	orig, _ := l.Get("a")
	assert.Equal(t, "9", orig.Balance.String())
	assert.Empty(t, orig.Transactions)

	assert.True(t, cp.Delete("b"))
	assert.False(t, cp.Delete("b"))
	assert.Equal(t, "ac", ids(cp))
	assert.Equal(t, "bac", ids(l))
	_, ok := cp.Get("b")
	assert.False(t, ok)
}

func ExampleDate_MonthsUntil() {
	from := Date{Year: 2024, Month: time.January, Day: 31}
	to := Date{Year: 2024, Month: time.February, Day: 1}
	fmt.Println(from.MonthsUntil(to))
	// Output: 1
}
