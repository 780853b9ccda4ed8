// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package notifications

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/autobrr/reclaimarr/internal/services/reclaim"
)

// FormatReport renders a pass report as a human-readable notification.
// Passes with nothing to say (no additions, no evictions, no error) render
// to the empty string and are not sent.
func FormatReport(report reclaim.PassReport) string {
	if report.Err != nil {
		return fmt.Sprintf("%s: reclamation pass failed: %v", report.Catalog, report.Err)
	}
	if len(report.Added) == 0 && len(report.Updated) == 0 && len(report.EvictedTitles) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s import processed", report.Catalog)
	if report.DryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteString("\n")

	for _, title := range report.Added {
		fmt.Fprintf(&b, "added: %s\n", title)
	}
	for _, title := range report.Updated {
		fmt.Fprintf(&b, "updated: %s\n", title)
	}

	if len(report.EvictedTitles) > 0 {
		fmt.Fprintf(&b, "freed %s by evicting %d item(s):\n",
			humanize.IBytes(uint64(report.FreedBytes)), len(report.EvictedTitles))
		for _, title := range report.EvictedTitles {
			fmt.Fprintf(&b, "evicted: %s\n", title)
		}
	}
	if report.Partial {
		fmt.Fprintf(&b, "warning: could not cover the full deficit of %s\n",
			humanize.IBytes(uint64(report.Deficit)))
	}

	for _, action := range report.Actions {
		switch {
		case action.Outcome == reclaim.OutcomeDeleted && action.Reason == "":
			fmt.Fprintf(&b, "torrent deleted: %s (%s)\n", action.Name, action.Store)
		case action.Reason == reclaim.ReasonDryRun:
			fmt.Fprintf(&b, "torrent would be deleted: %s (%s)\n", action.Name, action.Store)
		case action.Reason == reclaim.ReasonSeedTimeIncomplete:
			fmt.Fprintf(&b, "torrent kept, still seeding: %s (%s)\n", action.Name, action.Store)
		default:
			fmt.Fprintf(&b, "torrent not deleted: %s (%s)\n", action.Name, action.Reason)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
