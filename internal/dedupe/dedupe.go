// Package dedupe guards the webhook pipeline against redelivered events.
// A Deduper hands out one claim per event key; the holder processes the
// event and releases the claim only when processing must be retried.
package dedupe

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/repo"
)

// Deduper claims event keys.
type Deduper interface {
	// Claim returns true when the caller is the first to see key within the
	// configured TTL.
	Claim(ctx context.Context, key string) (bool, error)
	// Release drops a claim so a redelivery is processed again.
	Release(ctx context.Context, key string) error
}

// StoreDeduper keeps claims in the processed_events table.
type StoreDeduper struct {
	db       *gorm.DB
	provider string
	ttl      time.Duration
}

// NewStoreDeduper returns a Deduper backed by the relational store.
func NewStoreDeduper(db *gorm.DB, provider string, ttl time.Duration) *StoreDeduper {
	return &StoreDeduper{db: db, provider: provider, ttl: ttl}
}

// Claim implements Deduper.
func (s *StoreDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return repo.ClaimEvent(ctx, s.db, s.provider, key, s.ttl)
}

// Release implements Deduper.
func (s *StoreDeduper) Release(ctx context.Context, key string) error {
	return repo.ReleaseEvent(ctx, s.db, s.provider, key)
}

// Nop claims every key. Used when deduplication is disabled.
type Nop struct{}

func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }
func (Nop) Release(context.Context, string) error       { return nil }
