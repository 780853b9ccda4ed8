// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package notifications delivers pass reports to shoutrrr URLs.
package notifications

import (
	"sync"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/reclaimarr/internal/services/reclaim"
)

const (
	queueSize   = 64
	workerCount = 2
)

// Service queues pass reports and delivers them in the background. Delivery
// is fire-and-forget: failures are logged and dropped, never retried.
type Service struct {
	sender *router.ServiceRouter
	queue  chan reclaim.PassReport
	wg     sync.WaitGroup
	once   sync.Once
}

// NewService creates a notification service for the given shoutrrr URLs. An
// empty URL list yields a disabled service that discards every report.
func NewService(urls []string) (*Service, error) {
	s := &Service{}
	if len(urls) == 0 {
		return s, nil
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, err
	}
	s.sender = sender
	s.queue = make(chan reclaim.PassReport, queueSize)

	for i := 0; i < workerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s, nil
}

// ReportPass enqueues a report without blocking; when the queue is full the
// report is dropped with a warning.
func (s *Service) ReportPass(report reclaim.PassReport) {
	if s.sender == nil {
		return
	}
	select {
	case s.queue <- report:
	default:
		log.Warn().Str("catalog", report.Catalog).Msg("notification queue full, dropping report")
	}
}

func (s *Service) worker() {
	defer s.wg.Done()
	for report := range s.queue {
		s.deliver(report)
	}
}

func (s *Service) deliver(report reclaim.PassReport) {
	message := FormatReport(report)
	if message == "" {
		return
	}
	for _, err := range s.sender.Send(message, &types.Params{}) {
		if err != nil {
			log.Error().Err(err).Str("catalog", report.Catalog).
				Msg("notification delivery failed")
		}
	}
}

// Close drains the queue and stops the workers.
func (s *Service) Close() {
	if s.sender == nil {
		return
	}
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}
