// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/reclaimarr/internal/services/reclaim"
)

// maxWebhookBody caps webhook payload size; catalog webhooks are small.
const maxWebhookBody = 1 << 20

type WebhooksHandler struct {
	reclaimer *reclaim.Service
}

func NewWebhooksHandler(reclaimer *reclaim.Service) *WebhooksHandler {
	return &WebhooksHandler{reclaimer: reclaimer}
}

func (h *WebhooksHandler) Routes(r chi.Router) {
	r.Post("/sonarr", h.HandleSonarr)
	r.Post("/radarr", h.HandleRadarr)
}

// HandleSonarr accepts Sonarr import webhooks. Events are buffered and
// processed as a batch once the arrival burst settles; the webhook is
// acknowledged immediately.
func (h *WebhooksHandler) HandleSonarr(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	events, err := reclaim.ParseSonarrWebhook(body)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting malformed sonarr webhook")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if len(events) == 0 {
		log.Debug().Msg("sonarr webhook acknowledged without events")
		w.WriteHeader(http.StatusOK)
		return
	}

	h.reclaimer.SubmitSeries(events)
	w.WriteHeader(http.StatusAccepted)
}

// HandleRadarr accepts Radarr import webhooks. Movie imports run through a
// reclamation pass immediately, so the response waits for the pass.
func (h *WebhooksHandler) HandleRadarr(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	events, err := reclaim.ParseRadarrWebhook(body)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting malformed radarr webhook")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if len(events) == 0 {
		log.Debug().Msg("radarr webhook acknowledged without events")
		w.WriteHeader(http.StatusOK)
		return
	}

	// The pass must run to completion even if the request times out or the
	// caller disconnects; only the acknowledgement is tied to the request.
	h.reclaimer.SubmitMovies(context.WithoutCancel(r.Context()), events)
	w.WriteHeader(http.StatusOK)
}
