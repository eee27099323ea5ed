package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/atm-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/codec"
)

// MemoryLedgerStore keeps the encoded ledger document in memory. Storing the
// encoding instead of the pointer means callers can never alias saved state.
type MemoryLedgerStore struct {
	mu      sync.Mutex
	doc     []byte
	seed    storage.Seeder
	saves   int
	failErr error // returned by Save while set
}

func NewMemoryLedgerStore(seed storage.Seeder) *MemoryLedgerStore {
	return &MemoryLedgerStore{seed: seed}
}

func (m *MemoryLedgerStore) Load(ctx context.Context) (*models.Ledger, error) {
	m.mu.Lock()
	doc := m.doc
	m.mu.Unlock()

	if doc != nil {
		if ledger, err := codec.Decode(doc); err == nil {
			return ledger, nil
		}
	}
	return storage.SeedInto(ctx, m, m.seed)
}

func (m *MemoryLedgerStore) Save(ctx context.Context, ledger *models.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}
	doc, err := codec.Encode(ledger)
	if err != nil {
		return err
	}
	m.doc = doc
	m.saves++
	return nil
}

// FailSaves makes every following Save return err; nil restores normal saving.
func (m *MemoryLedgerStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Saves reports how many saves have succeeded.
func (m *MemoryLedgerStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Document returns a copy of the last saved document.
func (m *MemoryLedgerStore) Document() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.doc...)
}

// SetDocument replaces the stored document, e.g. to simulate corruption.
func (m *MemoryLedgerStore) SetDocument(doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = append([]byte(nil), doc...)
}

// Compile-time check: ensure MemoryLedgerStore implements Repository
var _ interfaces.Repository = (*MemoryLedgerStore)(nil)
