package menu

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	"github.com/sheikh-saqib/atm-ledger-system/internal/ledger"
)

func (m *Menu) admin(ctx context.Context) error {
	m.println("\n--- ADMIN LOGIN ---")
	username, err := m.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := m.prompt("Password: ")
	if err != nil {
		return err
	}
	if !m.gate.Check(username, password) {
		m.log.WithField("username", username).Warn("admin login rejected")
		m.println("Invalid admin credentials.")
		return nil
	}
	m.println("Admin login successful.")

	for {
		m.println("\n=== ADMIN DASHBOARD ===")
		m.println("1. Create Account")
		m.println("2. Delete Account")
		m.println("3. Unlock Account")
		m.println("4. View All Accounts")
		m.println("5. Back to Main Menu")

		choice, err := m.prompt("Enter choice (1-5): ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = m.createAccount(ctx)
		case "2":
			err = m.deleteAccount(ctx)
		case "3":
			err = m.unlockAccount(ctx)
		case "4":
			m.listAccounts()
		case "5":
			return nil
		default:
			m.println("Invalid choice. Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) createAccount(ctx context.Context) error {
	m.println("\n--- CREATE NEW ACCOUNT ---")
	id, err := m.prompt("Enter new Account Number: ")
	if err != nil {
		return err
	}
	if _, err := m.engine.Account(id); err == nil {
		m.report(ledger.ErrDuplicateID)
		return nil
	}

	name, err := m.prompt("Account Holder Name: ")
	if err != nil {
		return err
	}
	pin, err := m.prompt("Set 4-digit PIN: ")
	if err != nil {
		return err
	}
	if !auth.ValidPIN(pin) {
		m.report(ledger.ErrInvalidPIN)
		return nil
	}

	line, err := m.prompt("Opening Balance: ")
	if err != nil {
		return err
	}
	opening, parseErr := decimal.NewFromString(line)
	if parseErr != nil {
		m.report(ledger.ErrInvalidAmount)
		return nil
	}

	accountType, err := m.prompt("Account Type (savings/current): ")
	if err != nil {
		return err
	}

	_, err = m.engine.CreateAccount(ctx, ledger.NewAccount{
		ID:             id,
		Holder:         name,
		PIN:            pin,
		OpeningBalance: opening,
		Type:           strings.ToLower(accountType),
	})
	if err != nil {
		m.report(err)
		return nil
	}
	m.printf("Account %s created successfully for %s.\n", id, name)
	return nil
}

func (m *Menu) deleteAccount(ctx context.Context) error {
	m.println("\n--- DELETE ACCOUNT ---")
	id, err := m.prompt("Enter Account Number to delete: ")
	if err != nil {
		return err
	}
	if _, err := m.engine.Account(id); err != nil {
		m.report(err)
		return nil
	}

	answer, err := m.prompt("Are you sure you want to delete account " + id + "? (y/n): ")
	if err != nil {
		return err
	}
	err = m.engine.DeleteAccount(ctx, id, strings.EqualFold(answer, "y"))
	switch {
	case err == nil:
		m.println("Account deleted successfully.")
	case errors.Is(err, ledger.ErrNotConfirmed):
		m.println("Deletion cancelled.")
	default:
		m.report(err)
	}
	return nil
}

func (m *Menu) unlockAccount(ctx context.Context) error {
	m.println("\n--- UNLOCK ACCOUNT ---")
	id, err := m.prompt("Enter Account Number to unlock: ")
	if err != nil {
		return err
	}
	if err := m.engine.UnlockAccount(ctx, id); err != nil {
		m.report(err)
		return nil
	}
	m.printf("Account %s has been unlocked.\n", id)
	return nil
}

func (m *Menu) listAccounts() {
	m.println("\n--- ALL ACCOUNTS ---")
	accounts := m.engine.ListAccounts()
	if len(accounts) == 0 {
		m.println("No accounts available.")
		return
	}
	for _, a := range accounts {
		m.printf("Account: %s | Name: %s | Type: %s | Balance: %s | Locked: %t\n",
			a.ID, a.Holder, a.Type, money(a.Balance), a.Locked)
	}
}
