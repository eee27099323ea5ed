// Package config reads runtime settings from the environment, with an
// optional .env file underneath.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	StorageBackend string
	DataFile       string
	DatabaseURL    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	KafkaBrokers []string
	KafkaTopic   string

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	PINHashCost       int

	LogLevel  string
	LogFormat string
}

var bindings = map[string]string{
	"storage.backend":     "STORAGE_BACKEND",
	"storage.data_file":   "DATA_FILE",
	"database.url":        "DATABASE_URL",
	"redis.addr":          "REDIS_ADDR",
	"redis.password":      "REDIS_PASSWORD",
	"redis.db":            "REDIS_DB",
	"redis.key":           "REDIS_KEY",
	"kafka.brokers":       "KAFKA_BROKERS",
	"kafka.topic":         "KAFKA_TOPIC",
	"admin.username":      "ADMIN_USERNAME",
	"admin.password":      "ADMIN_PASSWORD",
	"admin.password_hash": "ADMIN_PASSWORD_HASH",
	"auth.pin_hash_cost":  "PIN_HASH_COST",
	"log.level":           "LOG_LEVEL",
	"log.format":          "LOG_FORMAT",
}

// Load reads configuration from the environment and performs minimal validation.
// A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.data_file", "accounts_data.json")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "atm:accounts")
	v.SetDefault("kafka.topic", "atm.transactions")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin123")
	v.SetDefault("auth.pin_hash_cost", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	cfg := Config{
		StorageBackend:    strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
		DataFile:          v.GetString("storage.data_file"),
		DatabaseURL:       strings.TrimSpace(v.GetString("database.url")),
		RedisAddr:         v.GetString("redis.addr"),
		RedisPassword:     v.GetString("redis.password"),
		RedisDB:           v.GetInt("redis.db"),
		RedisKey:          v.GetString("redis.key"),
		KafkaBrokers:      parseCSV(v.GetString("kafka.brokers")),
		KafkaTopic:        v.GetString("kafka.topic"),
		AdminUsername:     v.GetString("admin.username"),
		AdminPassword:     v.GetString("admin.password"),
		AdminPasswordHash: strings.TrimSpace(v.GetString("admin.password_hash")),
		PINHashCost:       v.GetInt("auth.pin_hash_cost"),
		LogLevel:          v.GetString("log.level"),
		LogFormat:         strings.ToLower(v.GetString("log.format")),
	}

	switch cfg.StorageBackend {
	case BackendFile, BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == BackendFile && cfg.DataFile == "" {
		return Config{}, errors.New("DATA_FILE is required for the file backend")
	}

	return cfg, nil
}

// PublishingEnabled reports whether transaction events go to Kafka.
func (c Config) PublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
