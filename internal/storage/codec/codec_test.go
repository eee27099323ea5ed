package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
)

// legacyDoc is what the original program wrote: float money, plain pins,
// accounts in creation order rather than sorted.
const legacyDoc = `{
    "1002": {
        "name": "Priya Verma",
        "pin": "4321",
        "balance": 8000.0,
        "type": "current",
        "transactions": [
            {"time": "2024-01-15 09:12:44", "type": "deposit", "amount": 0.1, "balance_after": 8000.1, "note": "Cash deposit"},
            {"time": "2024-01-15 09:13:02", "type": "withdraw", "amount": 0.1, "balance_after": 8000.000000000001, "note": "Cash withdrawal"}
        ],
        "failed_attempts": 1,
        "locked": false,
        "daily_limit": 30000.0,
        "withdrawn_today": 0.1,
        "last_withdraw_date": "2024-01-15",
        "interest_rate": 0.0,
        "last_interest_date": "2024-01-01"
    },
    "1001": {
        "name": "Rahul Sharma",
        "pin": "1234",
        "balance": 10100.000000000002,
        "type": "Savings",
        "transactions": [],
        "failed_attempts": 0,
        "locked": true,
        "daily_limit": 20000.0,
        "withdrawn_today": 0.0,
        "last_withdraw_date": "2024-01-15",
        "interest_rate": 0.04,
        "last_interest_date": "2024-04-02"
    }
}`

func TestDecode_LegacyDocument(t *testing.T) {
	l, err := Decode([]byte(legacyDoc))
	require.NoError(t, err)

	accounts := l.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "1002", accounts[0].ID, "document order is kept")
	assert.Equal(t, "1001", accounts[1].ID)

	priya := accounts[0]
	assert.Equal(t, "8000.00", priya.Balance.StringFixed(2))
	assert.Equal(t, models.Current, priya.Type)
	assert.Equal(t, 1, priya.FailedAttempts)
	assert.Equal(t, "30000.00", priya.DailyLimit.StringFixed(2))
	require.Len(t, priya.Transactions, 2)
	assert.Equal(t, models.KindWithdraw, priya.Transactions[1].Kind)
	assert.Equal(t, "8000.00", priya.Transactions[1].BalanceAfter.StringFixed(2))
	assert.Equal(t, time.Date(2024, time.January, 15, 9, 13, 2, 0, time.Local), priya.Transactions[1].Time)

	rahul := accounts[1]
	assert.Equal(t, "10100.00", rahul.Balance.StringFixed(2), "float noise is rounded away")
	assert.Equal(t, models.Savings, rahul.Type, "type names are case-insensitive")
	assert.True(t, rahul.Locked)
	assert.Equal(t, "0.04", rahul.InterestRate.String())
	assert.Equal(t, models.Date{Year: 2024, Month: time.April, Day: 2}, rahul.LastInterestDate)
}

func TestDecode_MissingFieldsUseDefaults(t *testing.T) {
	l, err := Decode([]byte(`{"7": {"name": "Min", "pin": "1111", "balance": 5, "type": "odd"}}`))
	require.NoError(t, err)

	a, ok := l.Get("7")
	require.True(t, ok)
	assert.Equal(t, "20000.00", a.DailyLimit.StringFixed(2))
	assert.True(t, a.WithdrawnToday.IsZero())
	assert.True(t, a.InterestRate.IsZero())
	assert.True(t, a.LastWithdrawDate.IsZero())
	assert.True(t, a.LastInterestDate.IsZero())
	assert.Equal(t, models.AccountType("odd"), a.Type, "unknown types are kept as stored")
	assert.Empty(t, a.Transactions)
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"not an object":  `[1, 2]`,
		"truncated":      `{"1001": {"name": "x"`,
		"bad balance":    `{"1001": {"balance": "lots"}}`,
		"bad date":       `{"1001": {"balance": 1, "last_withdraw_date": "15/01/2024"}}`,
		"bad tx time":    `{"1001": {"balance": 1, "transactions": [{"time": "yesterday", "amount": 1, "balance_after": 1}]}}`,
		"trailing data":  `{} {}`,
		"huge balance":   `{"1001": {"balance": 1e900000000}}`,
		"huge rate":      `{"1001": {"balance": 1, "interest_rate": 1e100000}}`,
		"wrong field ty": `{"1001": {"locked": "yes"}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	l := models.NewLedger()
	a := &models.Account{
		ID:               "2001",
		HolderName:       "Asha Rao",
		PIN:              "$2a$04$hash",
		Balance:          decimal.RequireFromString("2500.5"),
		Type:             models.Savings,
		DailyLimit:       decimal.NewFromInt(20000),
		WithdrawnToday:   decimal.Zero,
		LastWithdrawDate: models.Date{Year: 2024, Month: time.February, Day: 10},
		InterestRate:     decimal.RequireFromString("0.04"),
	}
	a.Record(models.Transaction{
		Time:         time.Date(2024, time.February, 10, 8, 0, 5, 0, time.Local),
		Kind:         models.KindDeposit,
		Amount:       decimal.RequireFromString("2500.5"),
		BalanceAfter: decimal.RequireFromString("2500.5"),
		Note:         "Opening deposit",
	})
	l.Put(a)
	l.Put(&models.Account{ID: "1001", Type: models.Current})

	doc, err := Encode(l)
	require.NoError(t, err)
	text := string(doc)

	assert.True(t, strings.HasSuffix(text, "}\n"))
	assert.Contains(t, text, "\n    \"2001\": {\n        \"name\": \"Asha Rao\",")
	assert.Contains(t, text, `"balance": 2500.50,`)
	assert.Contains(t, text, `"interest_rate": 0.04,`)
	assert.Contains(t, text, `"time": "2024-02-10 08:00:05"`)
	assert.Contains(t, text, `"last_interest_date": ""`)
	assert.Contains(t, text, `"transactions": []`, "an empty history is written as a list")
	assert.Less(t, strings.Index(text, `"2001"`), strings.Index(text, `"1001"`))

	back, err := Decode(doc)
	require.NoError(t, err)
	got, ok := back.Get("2001")
	require.True(t, ok)
	assert.Equal(t, a.Balance.StringFixed(2), got.Balance.StringFixed(2))
	assert.Equal(t, a.Transactions[0].Time, got.Transactions[0].Time)
	assert.Equal(t, a.PIN, got.PIN)
	assert.True(t, got.LastInterestDate.IsZero())
}
