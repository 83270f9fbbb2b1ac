package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketlens/marketlens/internal/domain"
)

// RedisStore persists analysis documents as JSON values with a TTL.
// Keys follow analysis:<SYMBOL>:<period>:<profile>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects a store to an existing client. A non-positive
// ttl falls back to one hour.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func analysisKey(symbol string, period domain.Period, profile string) string {
	return fmt.Sprintf("analysis:%s:%s:%s", strings.ToUpper(symbol), period, profile)
}

// SaveAnalysis writes the document, replacing any previous version.
func (s *RedisStore) SaveAnalysis(ctx context.Context, analysis domain.Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	key := analysisKey(analysis.Symbol, analysis.Period, analysis.ConfigApplied.Profile)
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store analysis %s: %w", key, err)
	}
	return nil
}

// LoadAnalysis returns the stored document, or nil when absent.
func (s *RedisStore) LoadAnalysis(ctx context.Context, symbol string, period domain.Period, profile string) (*domain.Analysis, error) {
	key := analysisKey(symbol, period, profile)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load analysis %s: %w", key, err)
	}
	var analysis domain.Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", key, err)
	}
	return &analysis, nil
}

// Ping tests connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
