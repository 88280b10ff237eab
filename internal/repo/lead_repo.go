// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lead
// aggregate: the atomic inbound upsert used by the webhook pipeline, the
// welcome-template append, and the manual create/update paths.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside a caller's transaction. They follow the "thin repository"
// approach: no business rules beyond what keeps the aggregate consistent
// (counters, history positions, the phone-pair uniqueness).
//
// Error semantics:
//   - Missing rows return gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - Unique violations on create return ErrDuplicate.
//   - A redelivered inbound message returns ErrDuplicateMessage.
package repo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate")

	// ErrDuplicateMessage indicates the inbound message id is already part
	// of the lead's chat history.
	ErrDuplicateMessage = errors.New("message already recorded")
)

// isDuplicate reports whether err is a unique constraint violation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}

// InboundMessage is a normalized chat message ready to be stored.
type InboundMessage struct {
	MessageID string
	Content   string
	Timestamp time.Time
	Payload   []byte // raw provider JSON, optional
}

// UpsertInput identifies the phone pair and carries the message that
// triggered the upsert.
type UpsertInput struct {
	LeadPhoneNumber     string
	BusinessPhoneNumber string
	BusinessPhoneID     string
	Message             InboundMessage
}

// UpsertInbound atomically finds or creates the lead for the phone pair and
// appends the inbound message to its history.
//
// A new lead starts with every counter at 1, status active and
// first/last interaction at the message timestamp. For an existing lead the
// message and chat counters are incremented, status is forced back to active
// and lastInteraction only moves forward. A writer that loses the insert race
// falls through to the existing-lead branch.
//
// The returned bool reports whether the lead was created by this call.
func UpsertInbound(ctx context.Context, db *gorm.DB, in UpsertInput) (*domain.Lead, bool, error) {
	var (
		lead  *domain.Lead
		isNew bool
	)
	ts := in.Message.Timestamp.UTC()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &domain.Lead{
			ID:                    uuid.NewString(),
			LeadPhoneNumber:       in.LeadPhoneNumber,
			BusinessPhoneNumber:   in.BusinessPhoneNumber,
			BusinessPhoneID:       in.BusinessPhoneID,
			NumberOfEnquiry:       1,
			NumberOfChatsMessages: 1,
			MessageCount:          1,
			FirstInteraction:      ts,
			LastInteraction:       ts,
			Status:                domain.LeadActive,
			HistorySize:           1,
		}
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "lead_phone_number"}, {Name: "business_phone_number"}},
				DoNothing: true,
			}).
			Create(seed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			lead, isNew = seed, true
			return insertMessage(tx, seed.ID, 1, domain.RoleLead, in.Message, nil)
		}

		var existing domain.Lead
		if err := tx.
			Where("lead_phone_number = ? AND business_phone_number = ?", in.LeadPhoneNumber, in.BusinessPhoneNumber).
			First(&existing).Error; err != nil {
			return err
		}

		if in.Message.MessageID != "" {
			var n int64
			if err := tx.Model(&domain.LeadMessage{}).
				Where("lead_id = ? AND message_id = ?", existing.ID, in.Message.MessageID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrDuplicateMessage
			}
		}

		if err := tx.Model(&domain.Lead{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"message_count":            gorm.Expr("message_count + 1"),
				"number_of_chats_messages": gorm.Expr("number_of_chats_messages + 1"),
				"history_size":             gorm.Expr("history_size + 1"),
				"status":                   domain.LeadActive,
				"last_interaction":         gorm.Expr("CASE WHEN last_interaction < ? THEN ? ELSE last_interaction END", ts, ts),
			}).Error; err != nil {
			return err
		}

		var updated domain.Lead
		if err := tx.Where("id = ?", existing.ID).First(&updated).Error; err != nil {
			return err
		}
		lead = &updated
		return insertMessage(tx, updated.ID, updated.HistorySize, domain.RoleLead, in.Message, nil)
	})
	if err != nil {
		return nil, false, err
	}
	return lead, isNew, nil
}

// RecordWelcome appends the assistant message for a delivered welcome
// template and sets the lead's messageCount to 2 (inbound + template). When
// another inbound message for the same lead landed after the upsert, the
// count already exceeds 1 and is incremented instead so that message is not
// lost.
func RecordWelcome(ctx context.Context, db *gorm.DB, leadID string, msg InboundMessage) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Lead{}).
			Where("id = ?", leadID).
			Updates(map[string]any{
				"message_count": gorm.Expr("CASE WHEN message_count < 2 THEN 2 ELSE message_count + 1 END"),
				"history_size":  gorm.Expr("history_size + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var size int
		if err := tx.Model(&domain.Lead{}).Where("id = ?", leadID).Select("history_size").Scan(&size).Error; err != nil {
			return err
		}
		sent := domain.DeliverySent
		return insertMessage(tx, leadID, size, domain.RoleAssistant, msg, &sent)
	})
}

// insertMessage writes one history row at position seq.
func insertMessage(tx *gorm.DB, leadID string, seq int, role domain.Role, msg InboundMessage, status *domain.DeliveryStatus) error {
	row := &domain.LeadMessage{
		ID:        uuid.NewString(),
		LeadID:    leadID,
		Seq:       seq,
		MessageID: msg.MessageID,
		Content:   msg.Content,
		Role:      role,
		Timestamp: msg.Timestamp.UTC(),
		Status:    status,
		Payload:   msg.Payload,
	}
	if row.MessageID == "" {
		row.MessageID = "local." + row.ID
	}
	if err := tx.Create(row).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicateMessage
		}
		return err
	}
	return nil
}

// GetLead fetches a lead by ID with its ordered chat history and tags.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	var l domain.Lead
	err := withHistory(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	hydrateTags(&l)
	return &l, nil
}

// LeadExistsByPhone reports whether any lead uses the given lead phone
// number, regardless of the business number.
func LeadExistsByPhone(ctx context.Context, db *gorm.DB, phone string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("lead_phone_number = ?", phone).
		Count(&n).Error
	return n > 0, err
}

// CreateLead inserts a lead and its tags. It returns ErrDuplicate when the
// phone pair already exists.
func CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			if isDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
		return insertTags(tx, l.ID, l.Tags)
	})
}

// UpdateLead applies column updates and, when tags is non-nil, replaces the
// lead's tag set, in one transaction. It returns ErrNotFound when the lead
// does not exist.
func UpdateLead(ctx context.Context, db *gorm.DB, id string, fields map[string]any, tags []string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		if len(fields) > 0 {
			res = tx.Model(&domain.Lead{}).Where("id = ?", id).Updates(fields)
		} else {
			res = tx.Model(&domain.Lead{}).Where("id = ?", id).Update("updated_at", time.Now().UTC())
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if tags == nil {
			return nil
		}
		if err := tx.Where("lead_id = ?", id).Delete(&domain.LeadTag{}).Error; err != nil {
			return err
		}
		return insertTags(tx, id, tags)
	})
}

// UpdateLeadFields applies a single column update to a lead. It returns
// ErrNotFound when no row matched.
func UpdateLeadFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func insertTags(tx *gorm.DB, leadID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]domain.LeadTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, domain.LeadTag{LeadID: leadID, Tag: t})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// withHistory preloads the ordered chat history and tag rows.
func withHistory(q *gorm.DB) *gorm.DB {
	return q.
		Preload("ChatHistory", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("TagRows")
}

// hydrateTags copies TagRows into the serialized Tags slice, sorted.
func hydrateTags(l *domain.Lead) {
	tags := make([]string, 0, len(l.TagRows))
	for _, r := range l.TagRows {
		tags = append(tags, r.Tag)
	}
	sort.Strings(tags)
	l.Tags = tags
}
