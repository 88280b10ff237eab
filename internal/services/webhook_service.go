// Package services – WebhookService
//
// This file implements the WhatsApp ingestion pipeline. For every inbound
// message it claims the message id, upserts the lead and appends the message,
// then either sends the welcome template (new lead) or runs extraction over
// the recent conversation and merges the result (existing lead). Delivery
// status callbacks update the matching history entry.
//
// Items are processed sequentially in payload order. Extraction and template
// failures are logged and swallowed; store failures are collected while
// sibling items continue and surface as a single joined error.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/dedupe"
	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/extraction"
	"github.com/tbourn/go-lead-backend/internal/observability"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/utils"
	"github.com/tbourn/go-lead-backend/internal/whatsapp"
)

// WelcomeContent is the history text recorded for a sent welcome template.
const WelcomeContent = "[Welcome template sent]"

// TemplateSender sends approved WhatsApp templates.
type TemplateSender interface {
	SendTemplate(ctx context.Context, phoneNumberID, to string, tmpl whatsapp.Template) (string, error)
}

// WebhookService processes WhatsApp webhook payloads.
type WebhookService struct {
	DB        *gorm.DB
	Extractor extraction.Extractor
	Sender    TemplateSender
	Dedupe    dedupe.Deduper
	Metrics   *observability.WebhookMetrics

	Welcome        whatsapp.Template
	SendTimeout    time.Duration
	ExtractTimeout time.Duration
	// Window is the number of prior messages given to the extractor.
	Window int
}

// NewWebhookService wires a WebhookService from configuration. A nil
// extractor or deduper is replaced by its no-op variant.
func NewWebhookService(db *gorm.DB, cfg *config.Config, ex extraction.Extractor, sender TemplateSender, dd dedupe.Deduper, m *observability.WebhookMetrics) *WebhookService {
	if ex == nil {
		ex = extraction.Noop{}
	}
	if dd == nil {
		dd = dedupe.Nop{}
	}
	return &WebhookService{
		DB:        db,
		Extractor: ex,
		Sender:    sender,
		Dedupe:    dd,
		Metrics:   m,
		Welcome: whatsapp.Template{
			Name:     cfg.WhatsApp.TemplateName,
			Language: cfg.WhatsApp.TemplateLang,
		},
		SendTimeout:    cfg.WhatsApp.Timeout,
		ExtractTimeout: cfg.Extraction.Timeout,
		Window:         cfg.Extraction.Window,
	}
}

// Process handles one webhook payload. It returns ErrNotWhatsApp for
// payloads from other products and a joined error when any store write
// failed.
func (s *WebhookService) Process(ctx context.Context, p *whatsapp.Payload) error {
	start := time.Now()
	defer func() { s.Metrics.ObservePayload(time.Since(start).Seconds()) }()

	if p == nil || p.Object != whatsapp.ObjectBusinessAccount {
		return ErrNotWhatsApp
	}

	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(attribute.Int("webhook.entries", len(p.Entry))),
	)
	defer span.End()

	var errs []error
	for _, entry := range p.Entry {
		for _, ch := range entry.Changes {
			if ch.Field != whatsapp.FieldMessages {
				continue
			}
			meta := ch.Value.Metadata
			for _, msg := range ch.Value.Messages {
				if err := s.handleMessage(ctx, meta, msg); err != nil {
					errs = append(errs, err)
				}
			}
			for _, st := range ch.Value.Statuses {
				if err := s.reconcileStatus(ctx, st); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return err
	}
	return nil
}

func dedupeKey(messageID string) string { return "wa:msg:" + messageID }

func (s *WebhookService) handleMessage(ctx context.Context, meta whatsapp.Metadata, msg whatsapp.Message) error {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "HandleMessage",
		trace.WithAttributes(
			attribute.String("whatsapp.message_id", msg.ID),
			attribute.String("whatsapp.message_type", msg.Type),
		),
	)
	defer span.End()

	log := zerolog.Ctx(ctx).With().
		Str("message_id", msg.ID).
		Str("lead_phone", utils.MaskPhone(msg.From)).
		Logger()

	claimed := false
	if msg.ID != "" {
		ok, err := s.Dedupe.Claim(ctx, dedupeKey(msg.ID))
		switch {
		case err != nil:
			// Fall through; the (lead, message id) unique index still guards the history.
			log.Warn().Err(err).Msg("dedupe claim failed")
		case !ok:
			log.Debug().Msg("duplicate delivery skipped")
			s.Metrics.ObserveMessage("duplicate")
			return nil
		default:
			claimed = true
		}
	}

	content := whatsapp.Render(msg.Content)
	lead, isNew, err := repo.UpsertInbound(ctx, s.DB, repo.UpsertInput{
		LeadPhoneNumber:     msg.From,
		BusinessPhoneNumber: meta.DisplayPhoneNumber,
		BusinessPhoneID:     meta.PhoneNumberID,
		Message: repo.InboundMessage{
			MessageID: msg.ID,
			Content:   content,
			Timestamp: msg.Time(),
			Payload:   msg.Raw,
		},
	})
	if errors.Is(err, repo.ErrDuplicateMessage) {
		log.Debug().Msg("message already recorded")
		s.Metrics.ObserveMessage("duplicate")
		return nil
	}
	if err != nil {
		s.Metrics.ObserveMessage("error")
		if claimed {
			if rerr := s.Dedupe.Release(ctx, dedupeKey(msg.ID)); rerr != nil {
				log.Warn().Err(rerr).Msg("dedupe release failed")
			}
		}
		span.RecordError(err)
		log.Error().Err(err).Msg("lead upsert failed")
		return fmt.Errorf("upsert lead %s: %w", utils.MaskPhone(msg.From), err)
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID), attribute.Bool("lead.new", isNew))

	if isNew {
		s.Metrics.ObserveMessage("created")
		log.Info().Str("lead_id", lead.ID).Msg("new lead created")
		return s.sendWelcome(ctx, log, lead, meta)
	}

	s.Metrics.ObserveMessage("appended")
	return s.enrich(ctx, log, lead, content)
}

// sendWelcome sends the welcome template to a new lead and records it in the
// history. A failed send is logged and otherwise ignored.
func (s *WebhookService) sendWelcome(ctx context.Context, log zerolog.Logger, lead *domain.Lead, meta whatsapp.Metadata) error {
	if s.Sender == nil {
		s.Metrics.ObserveTemplate("skipped")
		return nil
	}

	sctx, cancel := withTimeout(ctx, s.SendTimeout)
	msgID, err := s.Sender.SendTemplate(sctx, meta.PhoneNumberID, lead.LeadPhoneNumber, s.Welcome)
	cancel()
	if err != nil {
		s.Metrics.ObserveTemplate("error")
		log.Warn().Err(err).Str("template", s.Welcome.Name).Msg("welcome template not sent")
		return nil
	}
	s.Metrics.ObserveTemplate("ok")

	err = repo.RecordWelcome(ctx, s.DB, lead.ID, repo.InboundMessage{
		MessageID: msgID,
		Content:   WelcomeContent,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Msg("record welcome failed")
		return fmt.Errorf("record welcome for lead %s: %w", lead.ID, err)
	}
	return nil
}

// enrich runs extraction over the recent conversation and merges the result.
func (s *WebhookService) enrich(ctx context.Context, log zerolog.Logger, lead *domain.Lead, current string) error {
	history, err := repo.RecentMessages(ctx, s.DB, lead.ID, lead.HistorySize, s.Window)
	if err != nil {
		return fmt.Errorf("load history for lead %s: %w", lead.ID, err)
	}

	xctx, cancel := withTimeout(ctx, s.ExtractTimeout)
	res, err := s.Extractor.Extract(xctx, buildWindow(history, current))
	cancel()
	if err != nil {
		s.Metrics.ObserveExtraction("error")
		log.Warn().Err(err).Msg("extraction failed")
		return nil
	}

	fields := mergeExtraction(lead, res)
	if len(fields) == 0 {
		s.Metrics.ObserveExtraction("empty")
		return nil
	}
	if err := repo.UpdateLeadFields(ctx, s.DB, lead.ID, fields); err != nil {
		log.Error().Err(err).Msg("apply extraction failed")
		return fmt.Errorf("update lead %s: %w", lead.ID, err)
	}
	s.Metrics.ObserveExtraction("updated")
	log.Debug().Int("fields", len(fields)).Msg("lead enriched")
	return nil
}

// buildWindow renders prior messages and the current one as `role: "content"`
// lines, oldest first.
func buildWindow(history []domain.LeadMessage, current string) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %q\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "%s: %q", domain.RoleLead, current)
	return b.String()
}

// mergeExtraction returns the column updates for res. Place and score
// fields overwrite; name is only filled when empty; an enquiry signal
// increments numberOfEnquiry.
func mergeExtraction(lead *domain.Lead, res *extraction.Result) map[string]any {
	if res.Empty() {
		return nil
	}
	fields := map[string]any{}
	if res.PreferredCountry != "" {
		fields["preferred_country"] = res.PreferredCountry
	}
	if res.City != "" {
		fields["city"] = res.City
	}
	if res.State != "" {
		fields["state"] = res.State
	}
	if res.NeetScore != nil {
		fields["neet_score"] = *res.NeetScore
	}
	if res.Name != "" && strings.TrimSpace(lead.Name) == "" {
		fields["name"] = gorm.Expr("CASE WHEN name IS NULL OR name = '' THEN ? ELSE name END", res.Name)
	}
	if res.Enquiry {
		fields["number_of_enquiry"] = gorm.Expr("number_of_enquiry + 1")
	}
	return fields
}

func (s *WebhookService) reconcileStatus(ctx context.Context, st whatsapp.Status) error {
	status := domain.DeliveryStatus(strings.ToLower(strings.TrimSpace(st.Status)))
	if !status.Valid() || st.ID == "" {
		zerolog.Ctx(ctx).Debug().Str("status", st.Status).Msg("ignoring status callback")
		return nil
	}
	matched, err := repo.UpdateMessageStatus(ctx, s.DB, st.ID, status)
	if err != nil {
		return fmt.Errorf("update status of %s: %w", st.ID, err)
	}
	s.Metrics.ObserveStatus(string(status), matched)
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
