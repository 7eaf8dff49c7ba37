package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jeniistore/jenii-admin/internal/cache"
	"github.com/jeniistore/jenii-admin/internal/shiprocket"
)

// CarrierWebhook receives Shiprocket shipment events. Only a bad signature
// is rejected; every authenticated delivery is acknowledged with 200 so the
// carrier does not retry events we chose to drop.
func (h *Handlers) CarrierWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	event, err := shiprocket.ReadWebhookEvent(r, h.config.ShiprocketWebhookSecret)
	if errors.Is(err, shiprocket.ErrInvalidSignature) {
		logger.Error("rejected shiprocket webhook", "error", err)
		http.Error(w, "Invalid webhook", http.StatusUnauthorized)
		return
	}
	if err != nil {
		// Authenticated but undecodable. Acknowledge so the carrier stops
		// retrying a payload we can never parse.
		logger.Error("failed to read shiprocket webhook", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	cacheKey := ""
	if event.DeliveryID != "" {
		cacheKey = cache.WebhookKey("shiprocket", event.DeliveryID)
		if _, err := h.cacheProvider.Get(ctx, cacheKey); err == nil {
			logger.Info("webhook already processed", "delivery_id", event.DeliveryID)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	processErr := h.lifecycle.HandleCarrierEvent(ctx, event)

	if processErr == nil && cacheKey != "" {
		if err := h.cacheProvider.Set(ctx, cacheKey, "processed", 24*time.Hour); err != nil {
			logger.Error("failed to mark webhook as processed in cache", "error", err)
		}
	}

	if processErr != nil {
		// The carrier retries on non-2xx. Transition failures are logged and
		// acknowledged anyway; a replayed delivery hits the same status guard.
		logger.Error("failed to process carrier event", "error", processErr, "event", event.Event)
	}

	w.WriteHeader(http.StatusOK)
}
