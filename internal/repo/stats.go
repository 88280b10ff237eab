// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// LeadsStats returns the number of leads matching f and the greatest
// UpdatedAt among them. maxUpdatedAt is nil when nothing matches.
//
// Every inbound message and status callback touches the owning lead's
// updated_at, so the pair changes whenever a listed lead changes.
func LeadsStats(ctx context.Context, db *gorm.DB, f LeadFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	base := db.WithContext(ctx)
	if err = applyLeadFilter(base.Model(&domain.Lead{}), base, f).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = applyLeadFilter(base.Model(&domain.Lead{}), base, f).
		Select("updated_at").
		Order("updated_at DESC").
		Limit(1).
		Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// LeadStats returns the history length and UpdatedAt of a single lead.
func LeadStats(ctx context.Context, db *gorm.DB, id string) (historySize int, updatedAt time.Time, err error) {
	var row struct {
		HistorySize int
		UpdatedAt   time.Time
	}
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Select("history_size", "updated_at").
		Where("id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, time.Time{}, gorm.ErrRecordNotFound
	}
	return row.HistorySize, row.UpdatedAt, nil
}
