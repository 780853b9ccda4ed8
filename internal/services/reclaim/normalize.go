// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"path"
	"regexp"
	"strings"
)

var mediaExtRe = regexp.MustCompile(`(?i)\.(mkv|mp4|avi|mov|wmv|m4a|flac)$`)

// NormalizeTitle reduces a release or file name to a comparable form: the
// path basename with any media extension stripped, dots and underscores
// turned into spaces, lowercased and trimmed.
func NormalizeTitle(s string) string {
	s = path.Base(strings.ReplaceAll(s, `\`, "/"))
	s = mediaExtRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.TrimSpace(strings.ToLower(s))
}
