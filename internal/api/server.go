// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api exposes the webhook and observability endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/reclaimarr/internal/api/handlers"
	"github.com/autobrr/reclaimarr/internal/buildinfo"
	"github.com/autobrr/reclaimarr/internal/domain"
	"github.com/autobrr/reclaimarr/internal/services/reclaim"
)

// Server hosts the HTTP surface: webhooks, health, and optionally metrics.
type Server struct {
	cfg       *domain.Config
	reclaimer *reclaim.Service
	registry  *prometheus.Registry

	httpServer *http.Server
}

// NewServer builds the server; registry may be nil when metrics are
// disabled.
func NewServer(cfg *domain.Config, reclaimer *reclaim.Service, registry *prometheus.Registry) *Server {
	return &Server{
		cfg:       cfg,
		reclaimer: reclaimer,
		registry:  registry,
	}
}

// Handler assembles the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/webhooks", handlers.NewWebhooksHandler(s.reclaimer).Routes)
	})

	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
