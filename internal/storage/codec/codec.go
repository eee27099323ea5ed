// Package codec reads and writes the ledger document shared by the file,
// memory and redis backends: a JSON object keyed by account id, in ledger order.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/shopspring/decimal"
)

var ErrMalformed = errors.New("malformed ledger document")

type accountRecord struct {
	Name             string              `json:"name"`
	PIN              string              `json:"pin"`
	Balance          json.Number         `json:"balance"`
	Type             string              `json:"type"`
	Transactions     []transactionRecord `json:"transactions"`
	FailedAttempts   int                 `json:"failed_attempts"`
	Locked           bool                `json:"locked"`
	DailyLimit       json.Number         `json:"daily_limit"`
	WithdrawnToday   json.Number         `json:"withdrawn_today"`
	LastWithdrawDate string              `json:"last_withdraw_date"`
	InterestRate     json.Number         `json:"interest_rate"`
	LastInterestDate string              `json:"last_interest_date"`
}

type transactionRecord struct {
	Time         string      `json:"time"`
	Type         string      `json:"type"`
	Amount       json.Number `json:"amount"`
	BalanceAfter json.Number `json:"balance_after"`
	Note         string      `json:"note"`
}

// Encode renders the ledger as an indented JSON document.
func Encode(l *models.Ledger) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range l.Accounts() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.ID)
		if err != nil {
			return nil, err
		}
		rec, err := json.Marshal(toRecord(a))
		if err != nil {
			return nil, fmt.Errorf("encode account %s: %w", a.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(rec)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Decode parses a ledger document, keeping the order accounts appear in.
func Decode(data []byte) (*models.Ledger, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}

	l := models.NewLedger()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		id, _ := tok.(string)

		var rec accountRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: account %s: %w", ErrMalformed, id, err)
		}
		a, err := rec.toAccount(id)
		if err != nil {
			return nil, fmt.Errorf("%w: account %s: %w", ErrMalformed, id, err)
		}
		l.Put(a)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return l, nil
}

func toRecord(a *models.Account) accountRecord {
	txs := make([]transactionRecord, 0, len(a.Transactions))
	for _, tx := range a.Transactions {
		txs = append(txs, transactionRecord{
			Time:         tx.Time.Format(models.TimeLayout),
			Type:         string(tx.Kind),
			Amount:       money(tx.Amount),
			BalanceAfter: money(tx.BalanceAfter),
			Note:         tx.Note,
		})
	}
	return accountRecord{
		Name:             a.HolderName,
		PIN:              a.PIN,
		Balance:          money(a.Balance),
		Type:             string(a.Type),
		Transactions:     txs,
		FailedAttempts:   a.FailedAttempts,
		Locked:           a.Locked,
		DailyLimit:       money(a.DailyLimit),
		WithdrawnToday:   money(a.WithdrawnToday),
		LastWithdrawDate: date(a.LastWithdrawDate),
		InterestRate:     json.Number(a.InterestRate.String()),
		LastInterestDate: date(a.LastInterestDate),
	}
}

func (r accountRecord) toAccount(id string) (*models.Account, error) {
	a := &models.Account{
		ID:             id,
		HolderName:     r.Name,
		PIN:            r.PIN,
		Type:           models.AccountType(r.Type),
		FailedAttempts: r.FailedAttempts,
		Locked:         r.Locked,
	}
	if t, ok := models.ParseAccountType(r.Type); ok {
		a.Type = t
	}

	var err error
	if a.Balance, err = parseMoney(r.Balance, decimal.Zero); err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	if a.DailyLimit, err = parseMoney(r.DailyLimit, models.DefaultDailyLimit); err != nil {
		return nil, fmt.Errorf("daily_limit: %w", err)
	}
	if a.WithdrawnToday, err = parseMoney(r.WithdrawnToday, decimal.Zero); err != nil {
		return nil, fmt.Errorf("withdrawn_today: %w", err)
	}
	if a.InterestRate, err = parseNumber(r.InterestRate, decimal.Zero); err != nil {
		return nil, fmt.Errorf("interest_rate: %w", err)
	}
	if a.LastWithdrawDate, err = parseDate(r.LastWithdrawDate); err != nil {
		return nil, fmt.Errorf("last_withdraw_date: %w", err)
	}
	if a.LastInterestDate, err = parseDate(r.LastInterestDate); err != nil {
		return nil, fmt.Errorf("last_interest_date: %w", err)
	}

	for i, tr := range r.Transactions {
		tx := models.Transaction{Kind: models.TransactionKind(tr.Type), Note: tr.Note}
		if tx.Time, err = time.ParseInLocation(models.TimeLayout, tr.Time, time.Local); err != nil {
			return nil, fmt.Errorf("transaction %d time: %w", i, err)
		}
		if tx.Amount, err = parseMoney(tr.Amount, decimal.Zero); err != nil {
			return nil, fmt.Errorf("transaction %d amount: %w", i, err)
		}
		if tx.BalanceAfter, err = parseMoney(tr.BalanceAfter, decimal.Zero); err != nil {
			return nil, fmt.Errorf("transaction %d balance_after: %w", i, err)
		}
		a.Record(tx)
	}
	return a, nil
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func date(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// parseMoney accepts legacy float output such as 10100.000000000002 and
// rounds it to minor units.
func parseMoney(n json.Number, def decimal.Decimal) (decimal.Decimal, error) {
	d, err := parseNumber(n, def)
	if err != nil {
		return decimal.Zero, err
	}
	return models.RoundMoney(d), nil
}

func parseNumber(n json.Number, def decimal.Decimal) (decimal.Decimal, error) {
	if n == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero, err
	}
	if !models.InMoneyRange(d) {
		return decimal.Zero, fmt.Errorf("number %s out of range", n)
	}
	return d, nil
}

func parseDate(s string) (models.Date, error) {
	if s == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(s)
}
