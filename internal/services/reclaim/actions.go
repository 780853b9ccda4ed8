// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package reclaim implements the storage reclamation pass: eviction
// selection, torrent correlation, seed-time guarding and deletion.
package reclaim

import "fmt"

// Outcome states whether an artifact was actually removed.
const (
	OutcomeDeleted    = "deleted"
	OutcomeNotDeleted = "not-deleted"
)

// Strategy states how an artifact was correlated with its library item.
const (
	StrategyHistory = "history"
	StrategyMatch   = "match"
)

// Reasons recorded on action ledger entries.
const (
	ReasonSeedTimeIncomplete = "seed-time-incomplete"
	ReasonNoMatch            = "no-match"
	ReasonNotFound           = "not-found"
	ReasonDryRun             = "dry-run"
)

// ReasonError wraps an upstream failure into a ledger reason.
func ReasonError(err error) string {
	return fmt.Sprintf("error:%v", err)
}

// ActionRecord is one entry of the pass's action ledger: what happened to one
// correlated artifact (or to an item no artifact could be found for).
type ActionRecord struct {
	Name     string `json:"name"`
	Hash     string `json:"hash,omitempty"`
	Store    string `json:"store,omitempty"`
	Outcome  string `json:"outcome"`
	Strategy string `json:"strategy,omitempty"`
	Reason   string `json:"reason"`
}
