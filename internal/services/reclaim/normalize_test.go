// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "release name with dots",
			in:   "Some.Show.S01E02.1080p.WEB-DL.x264-GROUP",
			want: "some show s01e02 1080p web-dl x264-group",
		},
		{
			name: "file path with extension",
			in:   "/downloads/complete/Some.Show.S01E02.mkv",
			want: "some show s01e02",
		},
		{
			name: "windows path",
			in:   `C:\downloads\Some_Show_S01E02.MP4`,
			want: "some show s01e02",
		},
		{
			name: "extension only stripped at end",
			in:   "some.mkv.release.mkv",
			want: "some mkv release",
		},
		{
			name: "non media extension kept",
			in:   "Some.Show.S01E02.nfo",
			want: "some show s01e02 nfo",
		},
		{
			name: "whitespace trimmed",
			in:   "  Plain Title  ",
			want: "plain title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeTitle(tt.in))
		})
	}
}
