package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	"github.com/sheikh-saqib/atm-ledger-system/internal/config"
	"github.com/sheikh-saqib/atm-ledger-system/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/atm-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/atm-ledger-system/internal/menu"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/file"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/postgres"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := newLogger(cfg)

	if err := run(context.Background(), cfg, log, os.Stdin, os.Stdout); err != nil {
		log.WithError(err).Fatal("atm stopped")
	}
}

// run wires the ATM and blocks in the menu. Resources are closed on return.
func run(ctx context.Context, cfg config.Config, log *logrus.Logger, in io.Reader, out io.Writer) error {
	hasher := auth.NewPINHasher(cfg.PINHashCost)
	seed := storage.DefaultSeed(time.Now, hasher)

	repo, closeRepo, err := openRepository(ctx, cfg, seed, log)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer closeRepo()

	opts := []ledger.Option{ledger.WithLogger(log), ledger.WithPINHasher(hasher)}
	if cfg.PublishingEnabled() {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.WithError(err).Warn("close kafka publisher")
			}
		}()
		opts = append(opts, ledger.WithPublisher(publisher, cfg.KafkaTopic))
	}

	engine, err := ledger.Open(ctx, repo, opts...)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	gate, err := adminGate(cfg, hasher)
	if err != nil {
		return fmt.Errorf("prepare admin credentials: %w", err)
	}

	log.WithField("backend", cfg.StorageBackend).Info("atm ready")
	return menu.New(engine, gate, in, out, log).Run(ctx)
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func openRepository(ctx context.Context, cfg config.Config, seed storage.Seeder, log *logrus.Logger) (interfaces.Repository, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memory.NewMemoryLedgerStore(seed), func() {}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewPostgresLedgerStore(db, seed, log)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return redis.NewRedisLedgerStore(client, cfg.RedisKey, seed, log), func() { client.Close() }, nil

	default:
		return file.NewFileLedgerStore(cfg.DataFile, seed, log), func() {}, nil
	}
}

// adminGate prefers a configured bcrypt hash and otherwise hashes the
// plain password once at startup.
func adminGate(cfg config.Config, hasher *auth.PINHasher) (*auth.AdminGate, error) {
	if cfg.AdminPasswordHash != "" {
		return auth.NewAdminGate(cfg.AdminUsername, cfg.AdminPasswordHash), nil
	}
	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	return auth.NewAdminGate(cfg.AdminUsername, hash), nil
}
