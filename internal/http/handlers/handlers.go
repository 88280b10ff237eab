package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/services"
	"github.com/tbourn/go-lead-backend/internal/whatsapp"
)

// WebhookProcessor runs the ingestion pipeline for one webhook payload.
type WebhookProcessor interface {
	Process(ctx context.Context, p *whatsapp.Payload) error
}

// LeadService is the dashboard's view of the lead store.
//
// Implementations must be safe for concurrent use and honor ctx.
type LeadService interface {
	ListPage(ctx context.Context, f repo.LeadFilter, page, limit int) ([]domain.Lead, int64, error)
	// Stats returns the match count and newest updatedAt, for ETags.
	Stats(ctx context.Context, f repo.LeadFilter) (int64, *time.Time, error)
	Get(ctx context.Context, id string) (*domain.Lead, error)
	Update(ctx context.Context, id string, u services.LeadUpdate) (*domain.Lead, error)
	Create(ctx context.Context, in services.LeadCreate) (*domain.Lead, error)
}

// AuthService registers and authenticates dashboard users.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// Handlers groups every endpoint. Any service may be nil when the matching
// routes are not mounted.
type Handlers struct {
	webhook     WebhookProcessor
	leads       LeadService
	auth        AuthService
	verifyToken string
}

// New binds handlers to their services. verifyToken is the shared secret
// WhatsApp echoes during webhook verification.
func New(webhook WebhookProcessor, leads LeadService, auth AuthService, verifyToken string) *Handlers {
	return &Handlers{webhook: webhook, leads: leads, auth: auth, verifyToken: verifyToken}
}
