package interfaces

import (
	"context"

	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
)

// Repository loads and saves the whole ledger.
//
// Load returns the persisted ledger, or a freshly saved default seed when
// nothing usable is stored. Save replaces the stored state in one step.
type Repository interface {
	Load(ctx context.Context) (*models.Ledger, error)
	Save(ctx context.Context, ledger *models.Ledger) error
}
