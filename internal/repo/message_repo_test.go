package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

func TestRecentMessages_WindowBeforeCurrent(t *testing.T) {
	db := newLeadRepoDB(t)
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	var lead *domain.Lead
	for i := 1; i <= 6; i++ {
		l, _, err := UpsertInbound(ctx, db, inbound("919800000001", fmt.Sprintf("wamid.%d", i), fmt.Sprintf("m%d", i), ts.Add(time.Duration(i)*time.Minute)))
		if err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
		lead = l
	}

	// Current message is seq 6; window of 3 is seq 3..5 in order.
	got, err := RecentMessages(ctx, db, lead.ID, lead.HistorySize, 3)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(got) != 3 || got[0].Content != "m3" || got[2].Content != "m5" {
		t.Fatalf("unexpected window: %+v", got)
	}

	none, err := RecentMessages(ctx, db, lead.ID, lead.HistorySize, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("zero window = %v, %v", none, err)
	}
}

func TestUpdateMessageStatus_MatchedAndIdempotent(t *testing.T) {
	db := newLeadRepoDB(t)
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	lead, _, err := UpsertInbound(ctx, db, inbound("919800000001", "wamid.A", "Hi", ts))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := RecordWelcome(ctx, db, lead.ID, InboundMessage{MessageID: "wamid.T", Content: "[Welcome template sent]", Timestamp: ts}); err != nil {
		t.Fatalf("RecordWelcome: %v", err)
	}
	before, _ := GetLead(ctx, db, lead.ID)

	for i := 0; i < 2; i++ {
		ok, err := UpdateMessageStatus(ctx, db, "wamid.T", domain.DeliveryRead)
		if err != nil || !ok {
			t.Fatalf("UpdateMessageStatus #%d = %v, %v", i, ok, err)
		}
	}

	after, _ := GetLead(ctx, db, lead.ID)
	if len(after.ChatHistory) != len(before.ChatHistory) {
		t.Fatalf("status update changed history length")
	}
	st := after.ChatHistory[1].Status
	if st == nil || *st != domain.DeliveryRead {
		t.Fatalf("status = %v; want read", st)
	}
	if after.ChatHistory[0].Status != nil {
		t.Fatalf("other entries must be untouched")
	}
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatalf("updatedAt went backwards")
	}

	ok, err := UpdateMessageStatus(ctx, db, "wamid.unknown", domain.DeliveryDelivered)
	if err != nil || ok {
		t.Fatalf("unknown message = %v, %v; want false, nil", ok, err)
	}
}
