// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package arr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/autobrr/reclaimarr/internal/buildinfo"
	"github.com/autobrr/reclaimarr/internal/domain"
)

// client is the shared HTTP core for the v3 catalog APIs.
type client struct {
	name       string
	host       string
	apiKey     string
	diskPath   string
	httpClient *http.Client
}

func newClient(cfg *domain.CatalogConfig) *client {
	return &client{
		name:       cfg.Name,
		host:       strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		diskPath:   cfg.DiskPath,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	endpoint, err := url.JoinPath(c.host, "api", "v3", path)
	if err != nil {
		return fmt.Errorf("failed to build %s endpoint: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", c.name, err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s returned %d (check api key)", c.name, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %s not found (404)", c.name, path)
	default:
		return fmt.Errorf("%s returned unexpected status %d for %s", c.name, resp.StatusCode, path)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}

func (c *client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, out)
}

type diskSpace struct {
	Path      string `json:"path"`
	FreeSpace int64  `json:"freeSpace"`
}

// freeSpace resolves the configured disk path against the catalog's diskspace
// listing. Paths are compared with trailing separators trimmed.
func (c *client) freeSpace(ctx context.Context) (int64, error) {
	var disks []diskSpace
	if err := c.getJSON(ctx, "diskspace", nil, &disks); err != nil {
		return 0, err
	}

	want := strings.TrimRight(c.diskPath, "/")
	for _, d := range disks {
		if strings.TrimRight(d.Path, "/") == want {
			return d.FreeSpace, nil
		}
	}
	return 0, fmt.Errorf("%s: path %q: %w", c.name, c.diskPath, ErrPathNotFound)
}

type tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// tagID resolves a tag label to its ID, case-insensitively.
func (c *client) tagID(ctx context.Context, label string) (int64, error) {
	var tags []tag
	if err := c.getJSON(ctx, "tag", nil, &tags); err != nil {
		return 0, err
	}
	for _, t := range tags {
		if strings.EqualFold(t.Label, label) {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("%s: tag %q: %w", c.name, label, ErrProtectedTagMissing)
}

type historyRecord struct {
	EventType   string    `json:"eventType"`
	DownloadID  string    `json:"downloadId"`
	SourceTitle string    `json:"sourceTitle"`
	Date        time.Time `json:"date"`
}

type historyPage struct {
	TotalRecords int             `json:"totalRecords"`
	Records      []historyRecord `json:"records"`
}

func hasTag(tags []int64, id int64) bool {
	for _, t := range tags {
		if t == id {
			return true
		}
	}
	return false
}
