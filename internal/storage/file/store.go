package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/atm-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/codec"
)

// Store keeps the ledger as one JSON document on disk.
type Store struct {
	path string
	seed storage.Seeder
	log  logrus.FieldLogger
}

func NewFileLedgerStore(path string, seed storage.Seeder, log logrus.FieldLogger) *Store {
	return &Store{path: path, seed: seed, log: log.WithField("path", path)}
}

// Load reads the document. A missing, unreadable or corrupt file is replaced
// with the default seed.
func (s *Store) Load(ctx context.Context) (*models.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("no ledger file found, creating default accounts")
		return storage.SeedInto(ctx, s, s.seed)
	}
	if err != nil {
		s.log.WithError(err).Warn("ledger file unreadable, recreating default accounts")
		return storage.SeedInto(ctx, s, s.seed)
	}

	ledger, err := codec.Decode(data)
	if err != nil {
		s.log.WithError(err).Warn("ledger file corrupt, recreating default accounts")
		return storage.SeedInto(ctx, s, s.seed)
	}
	return ledger, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers see either the old or the new document.
func (s *Store) Save(ctx context.Context, ledger *models.Ledger) error {
	data, err := codec.Encode(ledger)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

var _ interfaces.Repository = (*Store)(nil)
