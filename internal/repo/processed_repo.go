// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the processed-event ledger used to drop
// redelivered webhook events when no shared cache is configured.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// ClaimEvent records (provider, eventID) as processed. It returns false when
// an unexpired claim already exists. Expired claims are replaced.
func ClaimEvent(ctx context.Context, db *gorm.DB, provider, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	rec := &domain.ProcessedEvent{
		ID:        uuid.NewString(),
		Provider:  provider,
		EventID:   eventID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	claimed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("provider = ? AND event_id = ? AND expires_at <= ?", provider, eventID, now).
			Delete(&domain.ProcessedEvent{}).Error; err != nil {
			return err
		}
		// A live claim must not fail the statement: Postgres aborts the
		// whole transaction on a unique violation.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "event_id"}},
			DoNothing: true,
		}).Create(rec)
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected == 1
		return nil
	})
	return claimed, err
}

// ReleaseEvent removes a claim so the event can be retried.
func ReleaseEvent(ctx context.Context, db *gorm.DB, provider, eventID string) error {
	return db.WithContext(ctx).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Delete(&domain.ProcessedEvent{}).Error
}

// PurgeExpiredEvents deletes claims whose TTL has elapsed.
func PurgeExpiredEvents(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&domain.ProcessedEvent{})
	return res.RowsAffected, res.Error
}
