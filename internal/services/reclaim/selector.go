// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"github.com/autobrr/reclaimarr/internal/arr"
)

// Selection is the result of walking the eviction queue against a deficit.
type Selection struct {
	Items      []arr.LibraryItem
	FreedBytes int64
	Deficit    int64

	// Partial is set when the queue ran out before the deficit was covered.
	Partial bool
}

// Deficit returns how many bytes must be freed so that, after the incoming
// batch lands, free space stays at or above the threshold. A non-positive
// result means no eviction is needed.
func Deficit(freeBytes, incomingBytes, thresholdBytes int64) int64 {
	return incomingBytes + thresholdBytes - freeBytes
}

// SelectForEviction walks items in order, accumulating until the summed size
// covers the deficit. Items must already be sorted oldest first; zero-size
// items are skipped since evicting them frees nothing.
func SelectForEviction(items []arr.LibraryItem, deficit int64) Selection {
	sel := Selection{Deficit: deficit}
	if deficit <= 0 {
		return sel
	}

	for _, item := range items {
		if item.SizeBytes <= 0 {
			continue
		}
		sel.Items = append(sel.Items, item)
		sel.FreedBytes += item.SizeBytes
		if sel.FreedBytes >= deficit {
			return sel
		}
	}

	sel.Partial = true
	return sel
}
