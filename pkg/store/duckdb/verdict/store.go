package verdict

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/models/store"
)

// Store keeps classifier verdicts in the verdicts table so the cache
// survives across detection runs.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	query := `
		SELECT cache_key, is_mismatch, reason, confidence, checked_at
		FROM verdicts
		WHERE cache_key = ?
	`
	var r store.VerdictRecord
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&r.CacheKey,
		&r.IsMismatch,
		&r.Reason,
		&r.Confidence,
		&r.CheckedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Verdict{}, false, nil
	}
	if err != nil {
		return domain.Verdict{}, false, fmt.Errorf("query verdict: %w", err)
	}
	return adapters.MapVerdictStoreToDomain(r), true, nil
}

func (s *Store) Put(ctx context.Context, key string, v domain.Verdict) error {
	r := adapters.MapVerdictDomainToStore(key, v)
	query := `
		INSERT OR REPLACE INTO verdicts (
			cache_key, is_mismatch, reason, confidence, checked_at
		) VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.CacheKey,
		r.IsMismatch,
		r.Reason,
		r.Confidence,
		r.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert verdict: %w", err)
	}
	return nil
}
