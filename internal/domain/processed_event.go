package domain

import "time"

// ProcessedEvent records a webhook item that was already claimed for
// processing, keyed by (provider, event_id). Rows past ExpiresAt may be
// reclaimed, which bounds the deduplication window.
type ProcessedEvent struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Provider  string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_provider_event,priority:1"`
	EventID   string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_provider_event,priority:2"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (ProcessedEvent) TableName() string { return "processed_events" }
