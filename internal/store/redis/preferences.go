// Package redis stores dietary preference records as JSON values under
// per-user keys.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dishcraft/dishcraft/internal/domain"
	"github.com/dishcraft/dishcraft/internal/observability"
)

const preferencesKeyPrefix = "prefs:user:"

// Config contains Redis connection settings.
type Config struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// PreferencesStore implements domain.PreferencesStore on Redis.
type PreferencesStore struct {
	client *redis.Client
}

// NewPreferencesStore creates a new Redis-backed preferences store.
func NewPreferencesStore(client *redis.Client) *PreferencesStore {
	return &PreferencesStore{client: client}
}

// NewRedisClient creates a Redis client from configuration and verifies the
// connection.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// GetUserPreferences returns the stored record for userID, or nil when the
// user has none on file.
func (s *PreferencesStore) GetUserPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	raw, err := s.client.Get(ctx, preferencesKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs domain.Preferences
	if unmarshalErr := json.Unmarshal([]byte(raw), &prefs); unmarshalErr != nil {
		observability.FromContext(ctx).Error("corrupt preferences record",
			observability.String("user_id", userID),
			observability.Error(unmarshalErr),
		)
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", unmarshalErr)
	}

	return &prefs, nil
}

// SetUserPreferences stores or replaces the record for userID. Used by the
// preference management flow that feeds this service.
func (s *PreferencesStore) SetUserPreferences(ctx context.Context, userID string, prefs *domain.Preferences) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	if prefs == nil {
		return errors.New("preferences cannot be nil")
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if setErr := s.client.Set(ctx, preferencesKeyPrefix+userID, data, 0).Err(); setErr != nil {
		return fmt.Errorf("failed to write preferences: %w", setErr)
	}

	return nil
}
