// Package domain defines the persistence models for leads, their chat
// history, tags and dashboard users. These types are mapped with GORM and
// form the core data layer of the lead backend.
package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// LeadStatus is the lifecycle state of a lead. Archival is a status value,
// leads are never deleted by the ingestion path.
type LeadStatus string

const (
	LeadActive   LeadStatus = "active"
	LeadInactive LeadStatus = "inactive"
	LeadArchived LeadStatus = "archived"
)

// Valid reports whether s is one of the known lead statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadActive, LeadInactive, LeadArchived:
		return true
	}
	return false
}

// Role tags the direction of a chat message.
type Role string

const (
	RoleLead      Role = "lead"
	RoleAssistant Role = "assistant"
)

// DeliveryStatus is the provider-reported delivery state of a message.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Valid reports whether s is one of the statuses the Cloud API reports.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliverySent, DeliveryDelivered, DeliveryRead, DeliveryFailed:
		return true
	}
	return false
}

// QualifyingNeetScore is the minimum NEET score for a lead to count as qualified.
const QualifyingNeetScore = 500

// Lead is a prospective contact tracked per (their phone, the business phone
// they messaged). Exactly one row exists per pair, enforced by the
// ux_leads_phone_pair unique index.
//
// Fields:
//   - LeadPhoneNumber / BusinessPhoneNumber / BusinessPhoneID: identity.
//   - Name, Email, PreferredCountry, City, State, NeetScore: enrichment,
//     populated incrementally by extraction or manual edits.
//   - NumberOfEnquiry, NumberOfChatsMessages, MessageCount: counters.
//   - FirstInteraction / LastInteraction: message timestamps, the latter
//     never moves backwards.
//   - AssignedToID / AssignedToName: denormalized assignee snapshot,
//     serialized as the assignedTo object.
//   - HistorySize: append cursor for ChatHistory positions (internal).
type Lead struct {
	ID                  string `json:"id"                  gorm:"type:char(36);primaryKey"`
	LeadPhoneNumber     string `json:"leadPhoneNumber"     gorm:"type:varchar(32);not null;uniqueIndex:ux_leads_phone_pair,priority:1;index"`
	BusinessPhoneNumber string `json:"businessPhoneNumber" gorm:"type:varchar(32);not null;uniqueIndex:ux_leads_phone_pair,priority:2"`
	BusinessPhoneID     string `json:"businessPhoneId"     gorm:"type:varchar(64)"`

	Name             string `json:"name,omitempty"             gorm:"type:varchar(255)"`
	Email            string `json:"email,omitempty"            gorm:"type:varchar(255)"`
	PreferredCountry string `json:"preferredCountry,omitempty" gorm:"type:varchar(128)"`
	City             string `json:"city,omitempty"             gorm:"type:varchar(128)"`
	State            string `json:"state,omitempty"            gorm:"type:varchar(128)"`
	NeetScore        *int   `json:"neetScore,omitempty"        gorm:"index"`

	NumberOfEnquiry       int `json:"numberOfEnquiry"       gorm:"not null;default:0"`
	NumberOfChatsMessages int `json:"numberOfChatsMessages" gorm:"not null;default:0"`
	MessageCount          int `json:"messageCount"          gorm:"not null;default:0"`

	FirstInteraction time.Time `json:"firstInteraction"`
	LastInteraction  time.Time `json:"lastInteraction" gorm:"index"`

	Status LeadStatus `json:"status" gorm:"type:varchar(16);not null;default:'active';index;check:status IN ('active','inactive','archived')"`
	Source string     `json:"source,omitempty" gorm:"type:varchar(64)"`
	Notes  string     `json:"notes,omitempty"  gorm:"type:text"`

	AssignedToID   *string `json:"-" gorm:"type:varchar(64);index"`
	AssignedToName string  `json:"-" gorm:"type:varchar(255)"`

	HistorySize int `json:"-" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Tags is hydrated from TagRows by the repository.
	Tags    []string  `json:"tags" gorm:"-"`
	TagRows []LeadTag `json:"-"    gorm:"foreignKey:LeadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// ChatHistory is ordered by arrival (Seq ascending).
	ChatHistory []LeadMessage `json:"chatHistory" gorm:"foreignKey:LeadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }

// Assignee is the {id, name} snapshot of the user a lead is assigned to.
type Assignee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assignee returns the denormalized assignee, or nil when unassigned.
func (l Lead) Assignee() *Assignee {
	if l.AssignedToID == nil || *l.AssignedToID == "" {
		return nil
	}
	return &Assignee{ID: *l.AssignedToID, Name: l.AssignedToName}
}

// IsQualified reports whether the lead has a NEET score of at least QualifyingNeetScore.
func (l Lead) IsQualified() bool {
	return l.NeetScore != nil && *l.NeetScore >= QualifyingNeetScore
}

// MarshalJSON renders the assignee columns as a nested assignedTo object.
func (l Lead) MarshalJSON() ([]byte, error) {
	type plain Lead
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	history := l.ChatHistory
	if history == nil {
		history = []LeadMessage{}
	}
	out := struct {
		plain
		Tags        []string      `json:"tags"`
		ChatHistory []LeadMessage `json:"chatHistory"`
		AssignedTo  *Assignee     `json:"assignedTo,omitempty"`
	}{plain: plain(l), Tags: tags, ChatHistory: history, AssignedTo: l.Assignee()}
	return json.Marshal(out)
}

// LeadMessage is one entry of a lead's chat history. Entries are append-only;
// only Status is mutated afterwards, matched by MessageID.
//
// Fields:
//   - LeadID: owning lead (cascade delete).
//   - Seq: 1-based arrival position within the lead's history.
//   - MessageID: provider message id (wamid), unique within a lead.
//   - Content: text body or a placeholder for non-text payloads.
//   - Role: "lead" or "assistant" (enforced by DB constraint).
//   - Timestamp: provider timestamp of the message.
//   - Status: delivery status, unset until a status callback arrives.
//   - Payload: raw provider message for media references.
type LeadMessage struct {
	ID        string          `json:"id"                gorm:"type:char(36);primaryKey"`
	LeadID    string          `json:"-"                 gorm:"type:char(36);not null;uniqueIndex:ux_lead_msg_seq,priority:1;uniqueIndex:ux_lead_msg_id,priority:1"`
	Seq       int             `json:"-"                 gorm:"not null;uniqueIndex:ux_lead_msg_seq,priority:2"`
	MessageID string          `json:"messageId"         gorm:"type:varchar(255);not null;uniqueIndex:ux_lead_msg_id,priority:2;index"`
	Content   string          `json:"content"           gorm:"type:text;not null"`
	Role      Role            `json:"role"              gorm:"type:varchar(16);not null;check:role IN ('lead','assistant')"`
	Timestamp time.Time       `json:"timestamp"         gorm:"column:sent_at;not null"`
	Status    *DeliveryStatus `json:"status,omitempty"  gorm:"type:varchar(16)"`
	Payload   datatypes.JSON  `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// TableName returns the database table name for LeadMessage.
func (LeadMessage) TableName() string { return "lead_messages" }

// LeadTag is a single label attached to a lead. A lead's tags form a set.
type LeadTag struct {
	LeadID string `gorm:"type:char(36);primaryKey"`
	Tag    string `gorm:"type:varchar(64);primaryKey;index"`
}

// TableName returns the database table name for LeadTag.
func (LeadTag) TableName() string { return "lead_tags" }
