// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the filtered, paginated lead listing
// used by the dashboard.
//
// Filters combine with AND. Within the free-text search the phone, name and
// email columns combine with OR, and the location filter matches city OR
// state. Tag filters require every listed tag (match-all).
//
// Functions:
//
//   - ListLeadsPage(ctx, db, f, offset, limit) -> []domain.Lead, error
//     Returns leads ordered by lastInteraction descending, with chat history
//     (Seq ASC) and tags hydrated.
//
//   - CountLeads(ctx, db, f) -> (int64, error)
//     Returns the total number of leads matching f.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// NeetStatus filters on the presence of a NEET score.
type NeetStatus string

const (
	NeetAny          NeetStatus = ""
	NeetWithScore    NeetStatus = "withScore"
	NeetWithoutScore NeetStatus = "withoutScore"
)

// LeadFilter is the set of optional list filters. Zero values mean "no
// filter".
type LeadFilter struct {
	Search     string
	NeetStatus NeetStatus
	MinScore   *int
	MaxScore   *int
	Country    string
	Location   string
	AssignedTo string
	Unassigned bool
	Tags       []string
	Qualified  bool
	Status     domain.LeadStatus

	// StartDate and EndDate bound createdAt. EndDate is inclusive of its
	// whole day.
	StartDate *time.Time
	EndDate   *time.Time
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// applyLeadFilter adds the WHERE clauses for f to q. base must be a fresh
// handle used to build subqueries.
func applyLeadFilter(q, base *gorm.DB, f LeadFilter) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		p := containsPattern(s)
		q = q.Where(
			`(LOWER(lead_phone_number) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`,
			p, p, p,
		)
	}

	switch f.NeetStatus {
	case NeetWithScore:
		q = q.Where("neet_score IS NOT NULL")
	case NeetWithoutScore:
		q = q.Where("neet_score IS NULL")
	}
	if f.MinScore != nil {
		q = q.Where("neet_score >= ?", *f.MinScore)
	}
	if f.MaxScore != nil {
		q = q.Where("neet_score <= ?", *f.MaxScore)
	}
	if f.Qualified {
		q = q.Where("neet_score >= ?", domain.QualifyingNeetScore)
	}

	if c := strings.TrimSpace(f.Country); c != "" {
		q = q.Where("LOWER(preferred_country) LIKE ? ESCAPE '\\'", containsPattern(c))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		p := containsPattern(loc)
		q = q.Where("(LOWER(city) LIKE ? ESCAPE '\\' OR LOWER(state) LIKE ? ESCAPE '\\')", p, p)
	}

	if f.Unassigned {
		q = q.Where("(assigned_to_id IS NULL OR assigned_to_id = '')")
	} else if a := strings.TrimSpace(f.AssignedTo); a != "" {
		q = q.Where("assigned_to_id = ?", a)
	}

	if len(f.Tags) > 0 {
		sub := base.Session(&gorm.Session{NewDB: true}).
			Model(&domain.LeadTag{}).
			Select("lead_id").
			Where("tag IN ?", f.Tags).
			Group("lead_id").
			Having("COUNT(DISTINCT tag) = ?", len(f.Tags))
		q = q.Where("id IN (?)", sub)
	}

	if f.StartDate != nil {
		q = q.Where("created_at >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		q = q.Where("created_at < ?", f.EndDate.UTC().AddDate(0, 0, 1))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// ListLeadsPage returns a page of leads matching f, most recently active first.
func ListLeadsPage(ctx context.Context, db *gorm.DB, f LeadFilter, offset, limit int) ([]domain.Lead, error) {
	base := db.WithContext(ctx)
	var out []domain.Lead
	err := withHistory(applyLeadFilter(base.Model(&domain.Lead{}), base, f)).
		Order("last_interaction DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		hydrateTags(&out[i])
	}
	return out, nil
}

// CountLeads returns the number of leads matching f.
func CountLeads(ctx context.Context, db *gorm.DB, f LeadFilter) (int64, error) {
	base := db.WithContext(ctx)
	var total int64
	err := applyLeadFilter(base.Model(&domain.Lead{}), base, f).Count(&total).Error
	return total, err
}
