package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/models/store"
)

const keyPrefix = "verdict:"

// Store shares classifier verdicts between sentinel instances. Entries are
// JSON-encoded and kept without expiry; a verdict for a (description, code)
// pair does not go stale.
type Store struct {
	client *redis.Client
}

// NewStore dials addr and verifies the connection before returning.
func NewStore(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an already-connected client.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	payload, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Verdict{}, false, nil
	}
	if err != nil {
		return domain.Verdict{}, false, fmt.Errorf("get verdict: %w", err)
	}

	var r store.VerdictRecord
	if err := json.Unmarshal(payload, &r); err != nil {
		return domain.Verdict{}, false, fmt.Errorf("decode verdict: %w", err)
	}
	return adapters.MapVerdictStoreToDomain(r), true, nil
}

func (s *Store) Put(ctx context.Context, key string, v domain.Verdict) error {
	payload, err := json.Marshal(adapters.MapVerdictDomainToStore(key, v))
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+key, payload, 0).Err(); err != nil {
		return fmt.Errorf("set verdict: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
