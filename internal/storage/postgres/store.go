package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/atm-ledger-system/internal/interfaces" // interface Repository
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage"
)

const (
	createAccounts = `CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	pin TEXT NOT NULL,
	balance NUMERIC(24,2) NOT NULL,
	type TEXT NOT NULL,
	failed_attempts INTEGER NOT NULL DEFAULT 0,
	locked BOOLEAN NOT NULL DEFAULT FALSE,
	daily_limit NUMERIC(24,2) NOT NULL,
	withdrawn_today NUMERIC(24,2) NOT NULL DEFAULT 0,
	last_withdraw_date DATE,
	interest_rate NUMERIC(12,6) NOT NULL DEFAULT 0,
	last_interest_date DATE
)`
	createTransactions = `CREATE TABLE IF NOT EXISTS account_transactions (
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	occurred_at TIMESTAMP NOT NULL,
	kind TEXT NOT NULL,
	amount NUMERIC(24,2) NOT NULL,
	balance_after NUMERIC(24,2) NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (account_id, seq)
)`

	createMeta = `CREATE TABLE IF NOT EXISTS ledger_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

	selectInitialized = `SELECT EXISTS (SELECT 1 FROM ledger_meta WHERE key = 'initialized')`
	markInitialized   = `INSERT INTO ledger_meta (key, value) VALUES ('initialized', 'true') ON CONFLICT (key) DO NOTHING`

	selectAccounts = `SELECT id, name, pin, balance, type, failed_attempts, locked, daily_limit, withdrawn_today, last_withdraw_date, interest_rate, last_interest_date FROM accounts ORDER BY position`

	selectTransactions = `SELECT account_id, occurred_at, kind, amount, balance_after, note FROM account_transactions ORDER BY account_id, seq`

	deleteTransactions = `DELETE FROM account_transactions`
	deleteAccounts     = `DELETE FROM accounts`

	insertAccount = `INSERT INTO accounts (id, position, name, pin, balance, type, failed_attempts, locked, daily_limit, withdrawn_today, last_withdraw_date, interest_rate, last_interest_date)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	insertTransaction = `INSERT INTO account_transactions (account_id, seq, occurred_at, kind, amount, balance_after, note)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`
)

type PostgresLedgerStore struct {
	db   *sql.DB
	seed storage.Seeder
	log  logrus.FieldLogger
}

func NewPostgresLedgerStore(db *sql.DB, seed storage.Seeder, log logrus.FieldLogger) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db:   db,
		seed: seed,
		log:  log.WithField("storage", "postgres"),
	}
}

// Migrate creates the tables when they do not exist yet.
func (p *PostgresLedgerStore) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createAccounts, createTransactions, createMeta} {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Load reads every account with its history. A database that was never
// saved to is seeded; one emptied by the admin stays empty.
func (p *PostgresLedgerStore) Load(ctx context.Context) (*models.Ledger, error) {
	ledger, err := p.readLedger(ctx)
	if err != nil {
		return nil, err
	}
	if ledger.Len() > 0 {
		return ledger, nil
	}

	var initialized bool
	if err := p.db.QueryRowContext(ctx, selectInitialized).Scan(&initialized); err != nil {
		return nil, fmt.Errorf("read ledger state: %w", err)
	}
	if initialized {
		return ledger, nil
	}
	p.log.Info("no accounts stored, creating default accounts")
	return storage.SeedInto(ctx, p, p.seed)
}

func (p *PostgresLedgerStore) readLedger(ctx context.Context) (*models.Ledger, error) {
	rows, err := p.db.QueryContext(ctx, selectAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := models.NewLedger()
	for rows.Next() {
		var (
			a                          models.Account
			accountType                string
			lastWithdraw, lastInterest sql.NullTime
		)
		err := rows.Scan(
			&a.ID,
			&a.HolderName,
			&a.PIN,
			&a.Balance,
			&accountType,
			&a.FailedAttempts,
			&a.Locked,
			&a.DailyLimit,
			&a.WithdrawnToday,
			&lastWithdraw,
			&a.InterestRate,
			&lastInterest,
		)
		if err != nil {
			return nil, err
		}
		a.Type = models.AccountType(accountType)
		a.LastWithdrawDate = nullDate(lastWithdraw)
		a.LastInterestDate = nullDate(lastInterest)
		a.Transactions = []models.Transaction{}
		ledger.Put(&a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	txRows, err := p.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return nil, err
	}
	defer txRows.Close()

	for txRows.Next() {
		var (
			accountID, kind string
			tx              models.Transaction
		)
		if err := txRows.Scan(&accountID, &tx.Time, &kind, &tx.Amount, &tx.BalanceAfter, &tx.Note); err != nil {
			return nil, err
		}
		tx.Kind = models.TransactionKind(kind)
		if a, ok := ledger.Get(accountID); ok {
			a.Record(tx)
		}
	}
	if err := txRows.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Save replaces every stored row inside a single database transaction.
func (p *PostgresLedgerStore) Save(ctx context.Context, ledger *models.Ledger) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if _, err = dbTx.ExecContext(ctx, deleteTransactions); err != nil {
		return err
	}
	if _, err = dbTx.ExecContext(ctx, deleteAccounts); err != nil {
		return err
	}

	for pos, a := range ledger.Accounts() {
		_, err = dbTx.ExecContext(ctx, insertAccount,
			a.ID, pos, a.HolderName, a.PIN, a.Balance, string(a.Type),
			a.FailedAttempts, a.Locked, a.DailyLimit, a.WithdrawnToday,
			dateValue(a.LastWithdrawDate), a.InterestRate, dateValue(a.LastInterestDate),
		)
		if err != nil {
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
		for seq, tx := range a.Transactions {
			_, err = dbTx.ExecContext(ctx, insertTransaction,
				a.ID, seq, tx.Time, string(tx.Kind), tx.Amount, tx.BalanceAfter, tx.Note,
			)
			if err != nil {
				return fmt.Errorf("insert transaction %s/%d: %w", a.ID, seq, err)
			}
		}
	}
	if _, err = dbTx.ExecContext(ctx, markInitialized); err != nil {
		return fmt.Errorf("mark ledger initialized: %w", err)
	}
	return dbTx.Commit()
}

func nullDate(t sql.NullTime) models.Date {
	if !t.Valid {
		return models.Date{}
	}
	return models.DateOf(t.Time)
}

func dateValue(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

var _ interfaces.Repository = (*PostgresLedgerStore)(nil)
