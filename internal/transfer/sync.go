// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"policyportal/internal/models"
)

// Status is the live sync connection state.
type Status string

const (
	StatusNotConnected Status = "not-connected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusFailed       Status = "failed"
)

// maxSyncBody caps the size of a remote export.
const maxSyncBody = 10 << 20

var (
	// ErrSyncInProgress is returned when a sync is requested while another runs.
	ErrSyncInProgress = errors.New("a sync is already in progress")
	// ErrInvalidURL is returned for sync URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("sync URL must be an absolute http or https URL")
)

// PolicySyncStore is the subset of the policy store used by live sync.
type PolicySyncStore interface {
	PolicyCreator
	List(ctx context.Context) ([]models.Policy, error)
	Update(ctx context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error)
}

// SyncState is a point-in-time copy of the syncer state.
type SyncState struct {
	Status   Status    `json:"status"`
	URL      string    `json:"url,omitempty"`
	Error    string    `json:"error,omitempty"`
	LastSync time.Time `json:"last_sync,omitzero"`
	Result   Result    `json:"result"`
}

// Syncer pulls a remote JSON export and merges it into the store. Records
// are matched to existing policies by name: matching policies get their
// content replaced, unmatched records become new policies in General.
// At most one sync runs at a time.
type Syncer struct {
	client   *http.Client
	policies PolicySyncStore

	mu      sync.Mutex
	running bool
	state   SyncState
}

// NewSyncer creates a Syncer. A nil client uses a client with a 30s timeout.
func NewSyncer(policies PolicySyncStore, client *http.Client) *Syncer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Syncer{
		client:   client,
		policies: policies,
		state:    SyncState{Status: StatusNotConnected},
	}
}

// State returns the current sync state.
func (s *Syncer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Disconnect forgets the remote URL and resets the status. It fails with
// ErrSyncInProgress while a sync is running.
func (s *Syncer) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSyncInProgress
	}
	s.state = SyncState{Status: StatusNotConnected}
	return nil
}

// Sync fetches rawURL and merges its records.
func (s *Syncer) Sync(ctx context.Context, rawURL string) (Result, error) {
	target, err := RawURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Result{}, ErrSyncInProgress
	}
	s.running = true
	s.state.Status = StatusConnecting
	s.state.URL = target
	s.state.Error = ""
	s.mu.Unlock()

	res, err := s.run(ctx, target)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if err != nil {
		s.state.Status = StatusFailed
		s.state.Error = err.Error()
		slog.Error("policy sync failed", "url", target, "error", err)
		return res, err
	}
	s.state.Status = StatusConnected
	s.state.LastSync = time.Now()
	s.state.Result = res
	slog.Info("policy sync complete", "url", target,
		"added", res.Added, "updated", res.Updated, "unchanged", res.Unchanged, "skipped", res.Skipped)
	return res, nil
}

func (s *Syncer) run(ctx context.Context, target string) (Result, error) {
	data, err := s.fetch(ctx, target)
	if err != nil {
		return Result{}, err
	}
	records, err := Decode(data)
	if err != nil {
		return Result{}, err
	}
	return s.merge(ctx, records)
}

func (s *Syncer) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", target, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSyncBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if len(data) > maxSyncBody {
		return nil, fmt.Errorf("fetch %s: response exceeds %d bytes", target, maxSyncBody)
	}
	return data, nil
}

func (s *Syncer) merge(ctx context.Context, records []Record) (Result, error) {
	existing, err := s.policies.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list policies: %w", err)
	}
	byName := make(map[string]models.Policy, len(existing))
	for _, p := range existing {
		if _, seen := byName[p.Name]; !seen {
			byName[p.Name] = p
		}
	}

	var res Result
	general := models.GeneralCategoryID
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			res.Skipped++
			continue
		}
		current, ok := byName[rec.Name]
		switch {
		case !ok:
			created, err := s.policies.Create(ctx, rec.Name, rec.Content, &general)
			if err != nil {
				return res, fmt.Errorf("sync record %d (%q): %w", i, rec.Name, err)
			}
			byName[rec.Name] = *created
			res.Added++
		case current.Content == rec.Content:
			res.Unchanged++
		default:
			content := rec.Content
			updated, err := s.policies.Update(ctx, current.ID, models.PolicyPatch{Content: &content})
			if err != nil {
				return res, fmt.Errorf("sync record %d (%q): %w", i, rec.Name, err)
			}
			byName[rec.Name] = *updated
			res.Updated++
		}
	}
	return res, nil
}

// RawURL validates a sync URL and rewrites GitHub "blob" page links to
// their raw.githubusercontent.com equivalent.
func RawURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	if u.Host == "github.com" {
		// /{owner}/{repo}/blob/{ref}/{path...}
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 4)
		if len(parts) == 4 && parts[2] == "blob" {
			u.Host = "raw.githubusercontent.com"
			u.Path = "/" + parts[0] + "/" + parts[1] + "/" + parts[3]
			u.RawQuery = ""
		}
	}
	return u.String(), nil
}
