// Package storage holds what the ledger backends share: the default seed
// and the load-or-seed step.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	"github.com/sheikh-saqib/atm-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
)

// Seeder builds the ledger used on first run or after the stored one proved unusable.
type Seeder func() (*models.Ledger, error)

// DefaultSeed returns the two sample accounts of a fresh installation.
func DefaultSeed(now func() time.Time, hasher *auth.PINHasher) Seeder {
	return func() (*models.Ledger, error) {
		today := models.DateOf(now())
		samples := []struct {
			id, name, pin string
			balance       int64
			typ           models.AccountType
			limit         int64
		}{
			{"1001", "Rahul Sharma", "1234", 15000, models.Savings, 20000},
			{"1002", "Priya Verma", "4321", 8000, models.Current, 30000},
		}

		l := models.NewLedger()
		for _, s := range samples {
			pin, err := hasher.Hash(s.pin)
			if err != nil {
				return nil, err
			}
			l.Put(&models.Account{
				ID:               s.id,
				HolderName:       s.name,
				PIN:              pin,
				Balance:          decimal.NewFromInt(s.balance),
				Type:             s.typ,
				Transactions:     []models.Transaction{},
				DailyLimit:       decimal.NewFromInt(s.limit),
				WithdrawnToday:   decimal.Zero,
				LastWithdrawDate: today,
				InterestRate:     s.typ.Rule().InterestRate,
				LastInterestDate: today,
			})
		}
		return l, nil
	}
}

// SeedInto builds the seed and persists it through repo before returning it.
func SeedInto(ctx context.Context, repo interfaces.Repository, seed Seeder) (*models.Ledger, error) {
	l, err := seed()
	if err != nil {
		return nil, fmt.Errorf("build default accounts: %w", err)
	}
	if err := repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("save default accounts: %w", err)
	}
	return l, nil
}
