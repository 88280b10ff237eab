// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for LeadMessage
// rows: the extraction context window and delivery status updates.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// RecentMessages returns up to limit messages of a lead that precede
// position beforeSeq, in arrival order (Seq ASC).
func RecentMessages(ctx context.Context, db *gorm.DB, leadID string, beforeSeq, limit int) ([]domain.LeadMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []domain.LeadMessage
	err := db.WithContext(ctx).
		Where("lead_id = ? AND seq < ?", leadID, beforeSeq).
		Order("seq DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ListMessages returns a lead's full history ordered by Seq.
func ListMessages(ctx context.Context, db *gorm.DB, leadID string) ([]domain.LeadMessage, error) {
	var out []domain.LeadMessage
	err := db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// UpdateMessageStatus sets the delivery status of every history entry with
// the given provider message id and touches the owning lead's updatedAt.
// It reports whether any entry matched. Reapplying the same status is a no-op
// on the history contents.
func UpdateMessageStatus(ctx context.Context, db *gorm.DB, messageID string, status domain.DeliveryStatus) (bool, error) {
	var matched bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.LeadMessage{}).
			Where("message_id = ?", messageID).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		matched = true
		owners := tx.Session(&gorm.Session{NewDB: true}).
			Model(&domain.LeadMessage{}).
			Select("lead_id").
			Where("message_id = ?", messageID)
		return tx.Model(&domain.Lead{}).
			Where("id IN (?)", owners).
			Update("updated_at", time.Now().UTC()).Error
	})
	return matched, err
}
