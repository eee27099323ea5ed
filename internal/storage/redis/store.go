package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/atm-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger-system/internal/models"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/codec"
)

// RedisLedgerStore keeps the ledger document under a single key. A single
// SET replaces it, so readers never observe a partial ledger.
type RedisLedgerStore struct {
	client *redis.Client
	key    string
	seed   storage.Seeder
	log    logrus.FieldLogger
}

func NewRedisLedgerStore(client *redis.Client, key string, seed storage.Seeder, log logrus.FieldLogger) *RedisLedgerStore {
	return &RedisLedgerStore{
		client: client,
		key:    key,
		seed:   seed,
		log:    log.WithField("storage", "redis").WithField("key", key),
	}
}

func (r *RedisLedgerStore) Load(ctx context.Context) (*models.Ledger, error) {
	doc, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		r.log.Info("no ledger stored, creating default accounts")
		return storage.SeedInto(ctx, r, r.seed)
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}

	ledger, err := codec.Decode([]byte(doc))
	if err != nil {
		r.log.WithError(err).Warn("stored ledger corrupt, recreating default accounts")
		return storage.SeedInto(ctx, r, r.seed)
	}
	return ledger, nil
}

func (r *RedisLedgerStore) Save(ctx context.Context, ledger *models.Ledger) error {
	doc, err := codec.Encode(ledger)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, string(doc), 0).Err(); err != nil {
		return fmt.Errorf("set ledger: %w", err)
	}
	return nil
}

var _ interfaces.Repository = (*RedisLedgerStore)(nil)
