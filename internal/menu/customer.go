package menu

import (
	"context"
	"errors"
	"strings"

	"github.com/sheikh-saqib/atm-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
)

// customer runs the login sequence and, on success, the ATM menu.
func (m *Menu) customer(ctx context.Context) error {
	id, err := m.prompt("Enter Account Number: ")
	if err != nil {
		return err
	}
	attempt, err := m.engine.Login(ctx, id)
	if err != nil {
		m.report(err)
		return nil
	}

	for !attempt.Done() {
		pin, err := m.prompt("Enter 4-digit PIN: ")
		if err != nil {
			return err
		}
		session, err := attempt.Submit(ctx, pin)
		switch {
		case err == nil:
			if a, err := m.engine.Account(session.AccountID); err == nil {
				m.printf("\nWelcome, %s!\n", a.HolderName)
			}
			return m.atm(ctx, session)
		case errors.Is(err, ledger.ErrAccountLocked):
			m.println("Incorrect PIN.")
			m.println("Too many failed attempts. Your account has been LOCKED.")
		default:
			m.report(err)
		}
	}
	return nil
}

func (m *Menu) atm(ctx context.Context, s ledger.Session) error {
	for {
		m.println("\n=== ATM MENU ===")
		m.println("1. Balance Enquiry")
		m.println("2. Deposit")
		m.println("3. Withdraw")
		m.println("4. Fund Transfer")
		m.println("5. Mini Statement")
		m.println("6. Apply Interest (Savings)")
		m.println("7. Logout")

		choice, err := m.prompt("Enter choice (1-7): ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			m.balance(s)
		case "2":
			err = m.deposit(ctx, s)
		case "3":
			err = m.withdraw(ctx, s)
		case "4":
			err = m.transfer(ctx, s)
		case "5":
			m.statement(s)
		case "6":
			m.interest(ctx, s)
		case "7":
			m.println("Logging out from ATM...")
			return nil
		default:
			m.println("Invalid choice. Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) balance(s ledger.Session) {
	bal, err := m.engine.Balance(s.AccountID)
	if err != nil {
		m.report(err)
		return
	}
	m.printf("\nCurrent Balance: %s\n", money(bal))
}

func (m *Menu) deposit(ctx context.Context, s ledger.Session) error {
	amount, err := m.promptAmount("Enter amount to deposit: ")
	if err != nil {
		return err
	}
	bal, err := m.engine.Deposit(ctx, s.AccountID, amount)
	if err != nil {
		m.report(err)
		return nil
	}
	m.printf("Deposited %s successfully.\n", money(amount))
	m.printf("New Balance: %s\n", money(bal))
	return nil
}

func (m *Menu) withdraw(ctx context.Context, s ledger.Session) error {
	amount, err := m.promptAmount("Enter amount to withdraw: ")
	if err != nil {
		return err
	}
	bal, err := m.engine.Withdraw(ctx, s.AccountID, amount)
	if err != nil {
		m.report(err)
		return nil
	}
	m.printf("Withdrawn %s successfully.\n", money(amount))
	m.printf("New Balance: %s\n", money(bal))
	return nil
}

func (m *Menu) transfer(ctx context.Context, s ledger.Session) error {
	target, err := m.prompt("Enter target Account Number: ")
	if err != nil {
		return err
	}
	if _, err := m.engine.Account(target); errors.Is(err, ledger.ErrNotFound) {
		m.println("Target account not found.")
		return nil
	}
	if target == s.AccountID {
		m.report(ledger.ErrSameAccount)
		return nil
	}

	amount, err := m.promptAmount("Enter amount to transfer: ")
	if err != nil {
		return err
	}
	bal, err := m.engine.Transfer(ctx, s.AccountID, target, amount)
	if err != nil {
		m.report(err)
		return nil
	}
	m.printf("Transferred %s to Account %s successfully.\n", money(amount), target)
	m.printf("Your New Balance: %s\n", money(bal))
	return nil
}

func (m *Menu) statement(s ledger.Session) {
	txs, err := m.engine.MiniStatement(s.AccountID)
	if err != nil {
		m.report(err)
		return
	}
	m.printf("\n=== MINI STATEMENT (Last %d Transactions) ===\n", models.StatementSize)
	if len(txs) == 0 {
		m.println("No transactions found.")
		return
	}
	for _, tx := range txs {
		m.printf("%s | %-12s | %s%10s | Bal: %s%10s | %s\n",
			tx.Time.Format(models.TimeLayout),
			strings.ToUpper(string(tx.Kind)),
			currency, tx.Amount.StringFixed(2),
			currency, tx.BalanceAfter.StringFixed(2),
			tx.Note,
		)
	}
}

func (m *Menu) interest(ctx context.Context, s ledger.Session) {
	res, err := m.engine.AccrueInterest(ctx, s.AccountID)
	if err != nil {
		m.report(err)
		return
	}

	switch res.Outcome {
	case ledger.InterestApplied:
		m.printf("Interest of %s applied for %d month(s).\n", money(res.Interest), res.Months)
		m.printf("New Balance: %s\n", money(res.Balance))
	case ledger.InterestNotEligible:
		m.println("Interest applies only to savings accounts.")
	case ledger.InterestNoRate:
		m.println("No interest rate set for this account.")
	case ledger.InterestUpToDate:
		m.println("Interest is already up to date.")
	case ledger.InterestNothingToApply:
		m.println("No interest to apply.")
	}
}
