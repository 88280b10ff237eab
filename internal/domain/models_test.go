package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Single connection so the PRAGMA below applies to every statement.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Lead{}).TableName():           "leads",
		(LeadMessage{}).TableName():    "lead_messages",
		(LeadTag{}).TableName():        "lead_tags",
		(User{}).TableName():           "users",
		(ProcessedEvent{}).TableName(): "processed_events",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Lead{}, &LeadMessage{}, &LeadTag{}, &User{}, &ProcessedEvent{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, idx := range []struct {
		model any
		name  string
	}{
		{&Lead{}, "ux_leads_phone_pair"},
		{&LeadMessage{}, "ux_lead_msg_seq"},
		{&LeadMessage{}, "ux_lead_msg_id"},
		{&User{}, "ux_users_email"},
		{&ProcessedEvent{}, "ux_provider_event"},
	} {
		if !m.HasIndex(idx.model, idx.name) {
			t.Fatalf("expected index %s on %T", idx.name, idx.model)
		}
	}

	now := time.Now().UTC()
	lead := &Lead{ID: "l1", LeadPhoneNumber: "+1555", BusinessPhoneNumber: "+1999", Status: LeadActive, FirstInteraction: now, LastInteraction: now}
	if err := db.Omit("TagRows", "ChatHistory").Create(lead).Error; err != nil {
		t.Fatalf("insert lead: %v", err)
	}

	// Phone pair is unique.
	dup := &Lead{ID: "l2", LeadPhoneNumber: "+1555", BusinessPhoneNumber: "+1999", Status: LeadActive}
	if err := db.Omit("TagRows", "ChatHistory").Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate phone pair")
	}

	// Role check constraint.
	bad := &LeadMessage{ID: "m0", LeadID: "l1", Seq: 1, MessageID: "wamid.0", Content: "x", Role: "user", Timestamp: now}
	if err := db.Create(bad).Error; err == nil {
		t.Fatalf("expected check constraint violation for role=user")
	}

	msg := &LeadMessage{ID: "m1", LeadID: "l1", Seq: 1, MessageID: "wamid.1", Content: "Hi", Role: RoleLead, Timestamp: now}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("insert message: %v", err)
	}
	if err := db.Create(&LeadTag{LeadID: "l1", Tag: "hot"}).Error; err != nil {
		t.Fatalf("insert tag: %v", err)
	}

	// CASCADE: deleting the lead removes its history and tags.
	if err := db.Delete(&Lead{}, "id = ?", "l1").Error; err != nil {
		t.Fatalf("delete lead: %v", err)
	}
	var cnt int64
	if err := db.Model(&LeadMessage{}).Where("lead_id = ?", "l1").Count(&cnt).Error; err != nil || cnt != 0 {
		t.Fatalf("expected messages to cascade-delete, count=%d err=%v", cnt, err)
	}
	if err := db.Model(&LeadTag{}).Where("lead_id = ?", "l1").Count(&cnt).Error; err != nil || cnt != 0 {
		t.Fatalf("expected tags to cascade-delete, count=%d err=%v", cnt, err)
	}
}

func TestLead_MarshalJSON_AssignedToAndEmptySlices(t *testing.T) {
	id := "u-1"
	score := 620
	l := Lead{ID: "l1", LeadPhoneNumber: "+1555", AssignedToID: &id, AssignedToName: "Asha", NeetScore: &score, Status: LeadActive}

	b, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	at, ok := got["assignedTo"].(map[string]any)
	if !ok || at["id"] != "u-1" || at["name"] != "Asha" {
		t.Fatalf("assignedTo = %#v", got["assignedTo"])
	}
	if _, ok := got["AssignedToID"]; ok {
		t.Fatalf("raw assignee column leaked: %s", b)
	}
	if tags, ok := got["tags"].([]any); !ok || len(tags) != 0 {
		t.Fatalf("tags should render as empty array, got %#v", got["tags"])
	}
	if hist, ok := got["chatHistory"].([]any); !ok || len(hist) != 0 {
		t.Fatalf("chatHistory should render as empty array, got %#v", got["chatHistory"])
	}
	if strings.Contains(string(b), "historySize") || strings.Contains(string(b), "HistorySize") {
		t.Fatalf("internal cursor leaked: %s", b)
	}

	l.AssignedToID = nil
	b, _ = json.Marshal(l)
	if strings.Contains(string(b), "assignedTo") {
		t.Fatalf("unassigned lead should omit assignedTo: %s", b)
	}
}

func TestStatusEnums(t *testing.T) {
	for _, s := range []LeadStatus{LeadActive, LeadInactive, LeadArchived} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if LeadStatus("deleted").Valid() {
		t.Fatalf("unknown lead status accepted")
	}
	for _, s := range []DeliveryStatus{DeliverySent, DeliveryDelivered, DeliveryRead, DeliveryFailed} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if DeliveryStatus("deleted").Valid() {
		t.Fatalf("unknown delivery status accepted")
	}
}

func TestLead_IsQualified(t *testing.T) {
	low, high := 499, 500
	if (Lead{}).IsQualified() || (Lead{NeetScore: &low}).IsQualified() {
		t.Fatalf("lead without score or below threshold must not qualify")
	}
	if !(Lead{NeetScore: &high}).IsQualified() {
		t.Fatalf("score at threshold should qualify")
	}
}
