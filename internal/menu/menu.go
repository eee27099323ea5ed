// Package menu is the terminal front end: the main menu, the customer ATM
// session and the admin dashboard, read line by line from an io.Reader.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	"github.com/sheikh-saqib/atm-ledger-system/internal/ledger"
)

const currency = "₹"

type Menu struct {
	engine *ledger.Engine
	gate   *auth.AdminGate
	in     *bufio.Scanner
	out    io.Writer
	log    logrus.FieldLogger
}

func New(engine *ledger.Engine, gate *auth.AdminGate, in io.Reader, out io.Writer, log logrus.FieldLogger) *Menu {
	return &Menu{
		engine: engine,
		gate:   gate,
		in:     bufio.NewScanner(in),
		out:    out,
		log:    log.WithField("component", "menu"),
	}
}

// Run shows the main menu until the user exits or the input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.println()
		m.println(strings.Repeat("=", 50))
		m.println("BANKING & ATM SIMULATION SYSTEM")
		m.println("1. Login to ATM")
		m.println("2. Admin Dashboard")
		m.println("3. Exit")

		choice, err := m.prompt("Enter choice (1-3): ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case "1":
			err = m.customer(ctx)
		case "2":
			err = m.admin(ctx)
		case "3":
			m.println("Thank you for using the Banking & ATM Simulation System!")
			return nil
		default:
			m.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return endOfInput(err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// prompt writes label and returns the next trimmed input line.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) promptAmount(label string) (decimal.Decimal, error) {
	line, err := m.prompt(label)
	if err != nil {
		return decimal.Zero, err
	}
	return parseAmount(line), nil
}

func (m *Menu) println(a ...any) {
	fmt.Fprintln(m.out, a...)
}

func (m *Menu) printf(format string, a ...any) {
	fmt.Fprintf(m.out, format, a...)
}

// report prints the user-facing text for err.
func (m *Menu) report(err error) {
	if errors.Is(err, ledger.ErrStorageFailure) {
		m.log.WithError(err).Error("operation not saved")
	}
	m.println(message(err))
}

// parseAmount returns an invalid (zero) amount for unparsable input, which
// the engine rejects with ErrInvalidAmount.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func money(d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}

func message(err error) string {
	var limitErr *ledger.DailyLimitError
	var pinErr *ledger.IncorrectPINError
	switch {
	case errors.As(err, &limitErr):
		return fmt.Sprintf("Daily limit exceeded! Limit: %s, Already used today: %s",
			money(limitErr.Limit), money(limitErr.UsedToday))
	case errors.As(err, &pinErr):
		return fmt.Sprintf("Incorrect PIN.\nAttempts remaining: %d", pinErr.Remaining)
	case errors.Is(err, ledger.ErrNotFound):
		return "Account not found."
	case errors.Is(err, ledger.ErrAccountLocked):
		return "This account is LOCKED due to too many failed attempts. Contact admin."
	case errors.Is(err, ledger.ErrAttemptsExhausted):
		return "Too many failed attempts."
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "Invalid amount. Enter a positive value with at most two decimals."
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "Insufficient funds."
	case errors.Is(err, ledger.ErrSameAccount):
		return "Cannot transfer to the same account."
	case errors.Is(err, ledger.ErrDuplicateID):
		return "Account number already exists."
	case errors.Is(err, ledger.ErrInvalidPIN):
		return "PIN must be a 4-digit number."
	case errors.Is(err, ledger.ErrInvalidType):
		return "Invalid account type."
	case errors.Is(err, ledger.ErrInvalidInput):
		return "Account number is required."
	case errors.Is(err, ledger.ErrNotConfirmed):
		return "Deletion cancelled."
	case errors.Is(err, ledger.ErrStorageFailure):
		return "Could not save your changes. Nothing was changed, please try again."
	default:
		return "Error: " + err.Error()
	}
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
