// Package services – LeadService
//
// This file implements LeadService, which backs the dashboard endpoints:
// filtered listing, detail, partial update and manual creation of leads.
// It normalizes tags, validates statuses, resolves assignees to the
// denormalized {id, name} snapshot, and maps repository errors to
// service-level errors.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/repo"
)

// LeadRepo defines the repository contract required by LeadService.
type LeadRepo interface {
	ListLeadsPage(ctx context.Context, db *gorm.DB, f repo.LeadFilter, offset, limit int) ([]domain.Lead, error)
	CountLeads(ctx context.Context, db *gorm.DB, f repo.LeadFilter) (int64, error)
	LeadsStats(ctx context.Context, db *gorm.DB, f repo.LeadFilter) (int64, *time.Time, error)
	GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error)
	UpdateLead(ctx context.Context, db *gorm.DB, id string, fields map[string]any, tags []string) error
	CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) error
	LeadExistsByPhone(ctx context.Context, db *gorm.DB, phone string) (bool, error)
	GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)
}

// LeadService provides lead queries and edits for dashboard users.
type LeadService struct {
	DB   *gorm.DB
	Repo LeadRepo

	// DefaultSource is stored on manually created leads without a source.
	DefaultSource string
	// DefaultBusinessPhone is used when a manual lead names no business number.
	DefaultBusinessPhone string
	// MaxTagLen caps the rune length of a single tag.
	MaxTagLen int
}

// NewLeadService constructs a LeadService.
func NewLeadService(db *gorm.DB, r LeadRepo, defaultSource, defaultBusinessPhone string) *LeadService {
	return &LeadService{
		DB:                   db,
		Repo:                 r,
		DefaultSource:        defaultSource,
		DefaultBusinessPhone: defaultBusinessPhone,
		MaxTagLen:            64,
	}
}

// ListPage returns a page of leads matching f and the total match count.
func (s *LeadService) ListPage(ctx context.Context, f repo.LeadFilter, page, limit int) ([]domain.Lead, int64, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", limit),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	f.Tags = s.normalizeTags(f.Tags)

	total, err := s.Repo.CountLeads(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Lead{}, 0, nil
	}
	items, err := s.Repo.ListLeadsPage(ctx, s.DB, f, (page-1)*limit, limit)
	return items, total, err
}

// Stats returns the count and latest update time of leads matching f, for
// conditional GETs.
func (s *LeadService) Stats(ctx context.Context, f repo.LeadFilter) (int64, *time.Time, error) {
	f.Tags = s.normalizeTags(f.Tags)
	return s.Repo.LeadsStats(ctx, s.DB, f)
}

// Get returns a lead with its chat history.
func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	l, err := s.Repo.GetLead(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	return l, err
}

// LeadUpdate is a partial update. Nil pointers leave a field untouched.
type LeadUpdate struct {
	Name             *string
	Email            *string
	PreferredCountry *string
	City             *string
	State            *string
	Source           *string
	Notes            *string
	Status           *domain.LeadStatus

	// NeetScoreSet marks NeetScore as supplied; a nil NeetScore clears it.
	NeetScoreSet bool
	NeetScore    *int

	// AssignedToSet marks AssignedToID as supplied; "" unassigns.
	AssignedToSet bool
	AssignedToID  string

	// Tags replaces the whole tag set when non-nil.
	Tags []string
}

// Update applies u to the lead and returns the updated record.
func (s *LeadService) Update(ctx context.Context, id string, u LeadUpdate) (*domain.Lead, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.String("lead.id", id)))
	defer span.End()

	fields := map[string]any{}
	setStr := func(col string, v *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	setStr("name", u.Name)
	setStr("email", u.Email)
	setStr("preferred_country", u.PreferredCountry)
	setStr("city", u.City)
	setStr("state", u.State)
	setStr("source", u.Source)
	setStr("notes", u.Notes)

	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = *u.Status
	}
	if u.NeetScoreSet {
		if u.NeetScore == nil {
			fields["neet_score"] = nil
		} else {
			fields["neet_score"] = *u.NeetScore
		}
	}
	if u.AssignedToSet {
		if err := s.resolveAssignee(ctx, u.AssignedToID, fields); err != nil {
			return nil, err
		}
	}

	var tags []string
	if u.Tags != nil {
		tags = s.normalizeTags(u.Tags)
	}

	if err := s.Repo.UpdateLead(ctx, s.DB, id, fields, tags); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// resolveAssignee adds the assignee snapshot columns. Unknown user ids are
// dropped from the update.
func (s *LeadService) resolveAssignee(ctx context.Context, userID string, fields map[string]any) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		fields["assigned_to_id"] = nil
		fields["assigned_to_name"] = ""
		return nil
	}
	u, err := s.Repo.GetUserByID(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fields["assigned_to_id"] = u.ID
	fields["assigned_to_name"] = u.Name
	return nil
}

// LeadCreate holds the fields accepted when a lead is created manually.
type LeadCreate struct {
	LeadPhoneNumber     string
	BusinessPhoneNumber string
	Name                string
	Email               string
	PreferredCountry    string
	City                string
	State               string
	NeetScore           *int
	Source              string
	Notes               string
	Status              domain.LeadStatus
	Tags                []string
}

// Create inserts a lead that did not arrive through WhatsApp. The phone
// number must not belong to an existing lead.
func (s *LeadService) Create(ctx context.Context, in LeadCreate) (*domain.Lead, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	phone := strings.TrimSpace(in.LeadPhoneNumber)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	status := in.Status
	if status == "" {
		status = domain.LeadActive
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	exists, err := s.Repo.LeadExistsByPhone(ctx, s.DB, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrLeadExists
	}

	business := strings.TrimSpace(in.BusinessPhoneNumber)
	if business == "" {
		business = s.DefaultBusinessPhone
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = s.DefaultSource
	}

	now := time.Now().UTC()
	l := &domain.Lead{
		LeadPhoneNumber:     phone,
		BusinessPhoneNumber: business,
		Name:                strings.TrimSpace(in.Name),
		Email:               strings.TrimSpace(in.Email),
		PreferredCountry:    strings.TrimSpace(in.PreferredCountry),
		City:                strings.TrimSpace(in.City),
		State:               strings.TrimSpace(in.State),
		NeetScore:           in.NeetScore,
		Source:              source,
		Notes:               in.Notes,
		Status:              status,
		FirstInteraction:    now,
		LastInteraction:     now,
		Tags:                s.normalizeTags(in.Tags),
	}
	if err := s.Repo.CreateLead(ctx, s.DB, l); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrLeadExists
		}
		return nil, err
	}
	return l, nil
}

// normalizeTags trims, drops empties and duplicates, and clips long tags,
// preserving first-seen order.
func (s *LeadService) normalizeTags(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if s.MaxTagLen > 0 && len([]rune(t)) > s.MaxTagLen {
			t = string([]rune(t)[:s.MaxTagLen])
		}
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseNeetScore decodes a NEET score supplied as a JSON number or string.
// null, "" and "N/A" mean "no score" and yield (nil, nil).
func ParseNeetScore(raw json.RawMessage) (*int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, ErrInvalidScore
		}
		s = strings.TrimSpace(str)
		if s == "" || strings.EqualFold(s, "N/A") {
			return nil, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, ErrInvalidScore
	}
	v := int(math.Round(f))
	return &v, nil
}

// ParseAssignee accepts either a bare user id string or an object with an
// "id" (or "_id") field. null yields "".
func ParseAssignee(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return strings.TrimSpace(id), nil
	}
	var obj struct {
		ID    string `json:"id"`
		OID   string `json:"_id"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	for _, v := range []string{obj.ID, obj.OID, obj.Value} {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", nil
}
