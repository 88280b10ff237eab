package repo

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

func TestClaimEvent_FirstWinsThenReleased(t *testing.T) {
	db := newLeadRepoDB(t)
	ctx := context.Background()

	ok, err := ClaimEvent(ctx, db, "whatsapp", "wamid.A", time.Hour)
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v", ok, err)
	}
	ok, err = ClaimEvent(ctx, db, "whatsapp", "wamid.A", time.Hour)
	if err != nil || ok {
		t.Fatalf("second claim = %v, %v; want false, nil", ok, err)
	}
	// Same id under another provider is independent.
	if ok, err := ClaimEvent(ctx, db, "other", "wamid.A", time.Hour); err != nil || !ok {
		t.Fatalf("other provider claim = %v, %v", ok, err)
	}

	if err := ReleaseEvent(ctx, db, "whatsapp", "wamid.A"); err != nil {
		t.Fatalf("ReleaseEvent: %v", err)
	}
	if ok, err := ClaimEvent(ctx, db, "whatsapp", "wamid.A", time.Hour); err != nil || !ok {
		t.Fatalf("claim after release = %v, %v", ok, err)
	}
}

func TestClaimEvent_ExpiredIsReclaimable(t *testing.T) {
	db := newLeadRepoDB(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-2 * time.Hour)
	stale := &domain.ProcessedEvent{ID: "e1", Provider: "whatsapp", EventID: "wamid.old", CreatedAt: past, ExpiresAt: past.Add(time.Hour)}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if ok, err := ClaimEvent(ctx, db, "whatsapp", "wamid.old", time.Hour); err != nil || !ok {
		t.Fatalf("expired claim should be replaced, got %v, %v", ok, err)
	}

	n, err := PurgeExpiredEvents(ctx, db, time.Now().Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredEvents = %d, %v; want 1", n, err)
	}
}

func TestClaimEvent_DuplicateIssuesNoFailingInsert(t *testing.T) {
	db := newLeadRepoDB(t)
	ctx := context.Background()

	var failed []error
	if err := db.Callback().Create().After("gorm:create").Register("test:record_create_errors", func(tx *gorm.DB) {
		if tx.Error != nil {
			failed = append(failed, tx.Error)
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if ok, err := ClaimEvent(ctx, db, "whatsapp", "wamid.B", time.Hour); err != nil || !ok {
		t.Fatalf("first claim = %v, %v", ok, err)
	}
	for i := 0; i < 3; i++ {
		if ok, err := ClaimEvent(ctx, db, "whatsapp", "wamid.B", time.Hour); err != nil || ok {
			t.Fatalf("redelivery %d claim = %v, %v; want false, nil", i, ok, err)
		}
	}
	// A failed INSERT would poison a Postgres transaction.
	if len(failed) != 0 {
		t.Fatalf("duplicate claims raised insert errors: %v", failed)
	}

	var n int64
	if err := db.Model(&domain.ProcessedEvent{}).Where("event_id = ?", "wamid.B").Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("claims stored = %d, %v; want 1", n, err)
	}
}
