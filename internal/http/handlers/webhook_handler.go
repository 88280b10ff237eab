// WhatsApp webhook handlers.
//
//   - GET  /webhook   subscription handshake
//   - POST /webhook   event delivery
//
// Both answer in text/plain, which is what the Cloud API expects.
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/services"
	"github.com/tbourn/go-lead-backend/internal/whatsapp"
)

const (
	// maxWebhookBody bounds a single delivery.
	maxWebhookBody = 1 << 20

	webhookAck    = "EVENT_RECEIVED"
	webhookFailed = "ERROR_PROCESSING"
)

// VerifyWebhook godoc
// @ID          verifyWebhook
// @Summary     Webhook verification handshake
// @Description Echoes hub.challenge when hub.mode is "subscribe" and hub.verify_token matches the configured token.
// @Tags        Webhook
// @Produce     plain
//
// @Param       hub.mode          query  string  true  "Subscription mode"  example(subscribe)
// @Param       hub.verify_token  query  string  true  "Shared verify token"
// @Param       hub.challenge     query  string  false "Challenge to echo"   example(1158201444)
//
// @Success     200  {string}  string  "challenge"
// @Failure     400  {string}  string  "Bad Request"
// @Failure     403  {string}  string  "Forbidden"
// @Router      /webhook [get]
func (h *Handlers) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	if mode == "" || token == "" {
		c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}
	if mode != "subscribe" || h.verifyToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		middleware.LoggerFrom(c).Warn().Str("mode", mode).Msg("webhook verification rejected")
		c.String(http.StatusForbidden, http.StatusText(http.StatusForbidden))
		return
	}
	middleware.LoggerFrom(c).Info().Msg("webhook verified")
	c.String(http.StatusOK, c.Query("hub.challenge"))
}

// ReceiveWebhook godoc
// @ID          receiveWebhook
// @Summary     Receive WhatsApp events
// @Description Processes inbound messages and delivery statuses. Non-WhatsApp or undecodable payloads get 404; a storage failure gets 500 so the provider redelivers.
// @Tags        Webhook
// @Accept      json
// @Produce     plain
//
// @Param       body  body  whatsapp.Payload  true  "Webhook payload"
//
// @Success     200  {string}  string  "EVENT_RECEIVED"
// @Failure     404  {string}  string  "Not Found"
// @Failure     500  {string}  string  "ERROR_PROCESSING"
// @Router      /webhook [post]
func (h *Handlers) ReceiveWebhook(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		lg.Warn().Err(err).Msg("webhook body unreadable")
		c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}

	var p whatsapp.Payload
	if err := json.Unmarshal(body, &p); err != nil {
		lg.Warn().Err(err).Msg("webhook body is not valid JSON")
		c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}

	err = h.webhook.Process(c.Request.Context(), &p)
	switch {
	case err == nil:
		c.String(http.StatusOK, webhookAck)
	case errors.Is(err, services.ErrNotWhatsApp):
		lg.Debug().Str("object", p.Object).Msg("ignoring non-whatsapp webhook")
		c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		lg.Error().Err(err).Msg("webhook processing failed")
		c.String(http.StatusInternalServerError, webhookFailed)
	}
}
