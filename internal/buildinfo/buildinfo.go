// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo holds version metadata injected at build time.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// UserAgent returns the value sent in the User-Agent header of outbound
// requests to catalog and torrent APIs.
func UserAgent() string {
	return fmt.Sprintf("reclaimarr/%s", Version)
}
