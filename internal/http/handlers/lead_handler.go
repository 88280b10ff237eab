// Lead HTTP handlers.
//
//   - GET  /leads        (list, filtered and paginated, weak ETag)
//   - GET  /leads/{id}   (detail with chat history)
//   - PUT  /leads/{id}   (partial update)
//   - POST /leads        (manual creation)
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/services"
	"github.com/tbourn/go-lead-backend/internal/utils"
)

const (
	defaultLeadLimit = 20
	maxLeadLimit     = 100
)

//
// DTOs
//

// ListLeadsResponse is one page of leads plus pagination metadata.
type ListLeadsResponse struct {
	Success    bool          `json:"success" example:"true"`
	Leads      []domain.Lead `json:"leads"`
	Page       int           `json:"page" example:"1"`
	Limit      int           `json:"limit" example:"20"`
	TotalPages int           `json:"totalPages" example:"3"`
	TotalLeads int64         `json:"totalLeads" example:"42"`
}

// LeadResponse wraps a single lead.
type LeadResponse struct {
	Success bool         `json:"success" example:"true"`
	Lead    *domain.Lead `json:"lead"`
}

// UpdateLeadRequest is a partial update: absent fields are left untouched.
// neetScore accepts a number, a numeric string, "N/A" or null (clears it).
// assignedTo accepts a user id, an object with "id", or null (unassigns).
type UpdateLeadRequest struct {
	Name             *string         `json:"name" example:"Priya Sharma"`
	Email            *string         `json:"email" example:"priya@example.com"`
	PreferredCountry *string         `json:"preferredCountry" example:"Russia"`
	City             *string         `json:"city" example:"Austin"`
	State            *string         `json:"state" example:"Texas"`
	Source           *string         `json:"source" example:"WhatsApp"`
	Notes            *string         `json:"notes"`
	Status           *string         `json:"status" enums:"active,inactive,archived"`
	NeetScore        json.RawMessage `json:"neetScore" swaggertype:"string" example:"650"`
	AssignedTo       json.RawMessage `json:"assignedTo" swaggertype:"string" example:"2b1c6f4e-8d7a-4c1e-9f3a-0a1b2c3d4e5f"`
	Tags             *[]string       `json:"tags"`
}

// CreateLeadRequest is the body of POST /leads.
type CreateLeadRequest struct {
	LeadPhoneNumber     string          `json:"leadPhoneNumber" binding:"required" example:"15551234567"`
	BusinessPhoneNumber string          `json:"businessPhoneNumber" example:"15550001111"`
	Name                string          `json:"name" example:"Priya Sharma"`
	Email               string          `json:"email" example:"priya@example.com"`
	PreferredCountry    string          `json:"preferredCountry" example:"Russia"`
	City                string          `json:"city" example:"Austin"`
	State               string          `json:"state" example:"Texas"`
	NeetScore           json.RawMessage `json:"neetScore" swaggertype:"string" example:"612"`
	Source              string          `json:"source" example:"Website"`
	Notes               string          `json:"notes"`
	Status              string          `json:"status" enums:"active,inactive,archived"`
	Tags                []string        `json:"tags"`
}

//
// Helpers
//

// parseLeadFilter reads the list filters from the query string. Malformed
// dates or statuses are rejected; malformed scores are ignored.
func parseLeadFilter(c *gin.Context) (repo.LeadFilter, error) {
	f := repo.LeadFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Country:    strings.TrimSpace(c.Query("country")),
		Location:   strings.TrimSpace(c.Query("location")),
		AssignedTo: strings.TrimSpace(c.Query("assignedTo")),
		Unassigned: c.Query("unassigned") == "true",
		Qualified:  c.Query("isQualified") == "true",
	}

	switch ns := repo.NeetStatus(c.Query("neetStatus")); ns {
	case repo.NeetWithScore, repo.NeetWithoutScore:
		f.NeetStatus = ns
	}
	f.MinScore = optInt(c.Query("minScore"))
	f.MaxScore = optInt(c.Query("maxScore"))

	for _, raw := range c.QueryArray("tags") {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}

	if s := strings.TrimSpace(c.Query("status")); s != "" {
		st := domain.LeadStatus(strings.ToLower(s))
		if !st.Valid() {
			return f, fmt.Errorf("invalid status %q", s)
		}
		f.Status = st
	}

	var err error
	if f.StartDate, err = optDate(c.Query("startDate")); err != nil {
		return f, fmt.Errorf("invalid startDate: %w", err)
	}
	if f.EndDate, err = optDate(c.Query("endDate")); err != nil {
		return f, fmt.Errorf("invalid endDate: %w", err)
	}
	return f, nil
}

func optInt(s string) *int {
	const sentinel = -1 << 31
	if v := utils.AtoiDefault(strings.TrimSpace(s), sentinel); v != sentinel {
		return &v
	}
	return nil
}

// optDate accepts YYYY-MM-DD or RFC 3339.
func optDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unsupported date %q", s)
}

// listETag fingerprints the normalized query together with the match count
// and the newest updatedAt, so any write to a matching lead changes it.
func listETag(c *gin.Context, count int64, maxTS *time.Time) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(c.Request.URL.Query().Encode()))
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	return fmt.Sprintf(`W/"leads:%x:%d:%d"`, h.Sum64(), count, ts)
}

// etagMatches reports whether If-None-Match names etag (or is "*").
func etagMatches(inm, etag string) bool {
	for _, cand := range strings.Split(inm, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || cand == etag {
			return true
		}
	}
	return false
}

//
// Handlers
//

// ListLeads godoc
// @ID          listLeads
// @Summary     List leads
// @Description Returns a page of leads (with chat history) ordered by lastInteraction, newest first. All filters combine with AND; repeated or comma-separated tags must all be present. Supports a weak ETag via If-None-Match.
// @Tags        Leads
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       search         query   string  false  "Substring of phone, name or email"
// @Param       neetStatus     query   string  false  "Score presence"  Enums(withScore, withoutScore)
// @Param       minScore       query   int     false  "Minimum NEET score"
// @Param       maxScore       query   int     false  "Maximum NEET score"
// @Param       country        query   string  false  "Substring of preferred country"
// @Param       location       query   string  false  "Substring of city or state"
// @Param       assignedTo     query   string  false  "Assignee user id"
// @Param       unassigned     query   bool    false  "Only unassigned leads"
// @Param       tags           query   []string false "Required tags"  collectionFormat(multi)
// @Param       isQualified    query   bool    false  "neetScore >= 500"
// @Param       status         query   string  false  "Lead status"  Enums(active, inactive, archived)
// @Param       startDate      query   string  false  "Created on or after (YYYY-MM-DD)"
// @Param       endDate        query   string  false  "Created on or before (YYYY-MM-DD, inclusive)"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       limit          query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListLeadsResponse
// @Header      200  {string}  ETag  "Weak ETag for the result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads [get]
func (h *Handlers) ListLeads(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := parseLeadFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	page, limit, _ := utils.Page(c.Query("page"), c.Query("limit"), defaultLeadLimit, maxLeadLimit)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.leads.Stats(ctx, f); err == nil {
		etag := listETag(c, count, maxTS)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && etagMatches(inm, etag) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.leads.ListPage(ctx, f, page, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Error fetching leads: "+err.Error())
		return
	}
	if items == nil {
		items = []domain.Lead{}
	}
	ok(c, http.StatusOK, ListLeadsResponse{
		Success:    true,
		Leads:      items,
		Page:       page,
		Limit:      limit,
		TotalPages: utils.TotalPages(total, limit),
		TotalLeads: total,
	})
}

// GetLead godoc
// @ID          getLead
// @Summary     Get a lead
// @Description Returns the lead with its full chat history.
// @Tags        Leads
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Lead ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.LeadResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id} [get]
func (h *Handlers) GetLead(c *gin.Context) {
	l, err := h.leads.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrLeadNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Lead not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeFetchFailed, "Error fetching lead details: "+err.Error())
	default:
		ok(c, http.StatusOK, LeadResponse{Success: true, Lead: l})
	}
}

// UpdateLead godoc
// @ID          updateLead
// @Summary     Update a lead
// @Description Applies the supplied fields. Tags replace the whole set; an unknown assignee id is ignored.
// @Tags        Leads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                      true  "Lead ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateLeadRequest  true  "Fields to change"
//
// @Success     200  {object}  handlers.LeadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id} [put]
func (h *Handlers) UpdateLead(c *gin.Context) {
	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u := services.LeadUpdate{
		Name:             req.Name,
		Email:            req.Email,
		PreferredCountry: req.PreferredCountry,
		City:             req.City,
		State:            req.State,
		Source:           req.Source,
		Notes:            req.Notes,
	}
	if req.Status != nil {
		st := domain.LeadStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		u.Status = &st
	}
	if req.NeetScore != nil {
		score, err := services.ParseNeetScore(req.NeetScore)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeInvalidScore, "neetScore must be a non-negative number")
			return
		}
		u.NeetScoreSet, u.NeetScore = true, score
	}
	if req.AssignedTo != nil {
		id, err := services.ParseAssignee(req.AssignedTo)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "assignedTo must be a user id or {id, name}")
			return
		}
		u.AssignedToSet, u.AssignedToID = true, id
	}
	if req.Tags != nil {
		u.Tags = *req.Tags
		if u.Tags == nil {
			u.Tags = []string{}
		}
	}

	l, err := h.leads.Update(c.Request.Context(), c.Param("id"), u)
	switch {
	case errors.Is(err, services.ErrLeadNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Lead not found")
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "Error updating lead: "+err.Error())
	default:
		ok(c, http.StatusOK, LeadResponse{Success: true, Lead: l})
	}
}

// CreateLead godoc
// @ID          createLead
// @Summary     Create a lead
// @Description Creates a lead that did not arrive through WhatsApp. Fails with 409 when the phone number already belongs to a lead.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateLeadRequest  true  "Lead"
//
// @Success     201  {object}  handlers.LeadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Lead exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads [post]
func (h *Handlers) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "leadPhoneNumber is required")
		return
	}
	score, err := services.ParseNeetScore(req.NeetScore)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidScore, "neetScore must be a non-negative number")
		return
	}

	l, err := h.leads.Create(c.Request.Context(), services.LeadCreate{
		LeadPhoneNumber:     req.LeadPhoneNumber,
		BusinessPhoneNumber: req.BusinessPhoneNumber,
		Name:                req.Name,
		Email:               req.Email,
		PreferredCountry:    req.PreferredCountry,
		City:                req.City,
		State:               req.State,
		NeetScore:           score,
		Source:              req.Source,
		Notes:               req.Notes,
		Status:              domain.LeadStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Tags:                req.Tags,
	})
	switch {
	case errors.Is(err, services.ErrPhoneRequired), errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrLeadExists):
		fail(c, http.StatusConflict, ErrCodeConflict, "Lead with this phone number already exists")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "Error creating lead: "+err.Error())
	default:
		ok(c, http.StatusCreated, LeadResponse{Success: true, Lead: l})
	}
}
