package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/clustertemplates/internal/api/response"
	"github.com/edvin/clustertemplates/internal/metrics"
	"github.com/edvin/clustertemplates/internal/platform"
	"github.com/edvin/clustertemplates/internal/webhook"
)

// maxWebhookBodySize matches the largest payload GitHub delivers.
const maxWebhookBodySize = 25 << 20

const (
	webhookOK          = "OK"
	webhookWrongSecret = "Wrong secret"
	webhookFailed      = "Update failed"
	webhookTooLarge    = "Payload too large"
)

// Updater runs the dependency update and returns its output lines.
type Updater interface {
	Update(ctx context.Context) ([]string, error)
}

type Webhook struct {
	secret  string
	updater Updater
	maxBody int64
	// output receives the update command output, one record per line.
	output zerolog.Logger
}

func NewWebhook(secret string, updater Updater, output zerolog.Logger) *Webhook {
	return &Webhook{secret: secret, updater: updater, output: output, maxBody: maxWebhookBodySize}
}

// Handle verifies the callback signature and, when it matches, runs the
// dependency update synchronously.
func (h *Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = platform.NewID()
	}
	logger := zerolog.Ctx(r.Context()).With().Str("delivery_id", deliveryID).Logger()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("webhook: payload too large")
			metrics.WebhookRequests.WithLabelValues("rejected").Inc()
			response.WriteText(w, http.StatusRequestEntityTooLarge, webhookTooLarge)
			return
		}
		logger.Error().Err(err).Msg("webhook: failed to read body")
		response.WriteText(w, http.StatusBadRequest, "")
		return
	}

	if err := webhook.VerifySignature(h.secret, body, r.Header); err != nil {
		if errors.Is(err, webhook.ErrSignatureMismatch) {
			logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("webhook: signature verification failed")
		} else {
			logger.Error().Err(err).Msg("webhook: cannot verify signature")
		}
		metrics.WebhookRequests.WithLabelValues("rejected").Inc()
		response.WriteText(w, http.StatusOK, webhookWrongSecret)
		return
	}

	lines, err := h.updater.Update(r.Context())
	defer h.emit(deliveryID, lines)

	if err != nil {
		logger.Error().Err(err).Msg("webhook: update failed")
		metrics.WebhookRequests.WithLabelValues("failed").Inc()
		response.WriteText(w, http.StatusInternalServerError, webhookFailed)
		return
	}

	metrics.WebhookRequests.WithLabelValues("updated").Inc()
	response.WriteText(w, http.StatusOK, webhookOK)
}

func (h *Webhook) emit(deliveryID string, lines []string) {
	for _, line := range lines {
		h.output.Debug().Str("delivery_id", deliveryID).Msg(line)
	}
}
