// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package transfer

import (
	"context"
	"fmt"
	"time"

	"policyportal/internal/models"
	"policyportal/internal/storage"
)

// ArchivePrefix is the object key prefix of archived exports.
const ArchivePrefix = "exports/"

// ObjectStore is the object storage used for export archives.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Archiver writes full exports to object storage.
type Archiver struct {
	store ObjectStore
	now   func() time.Time
}

// NewArchiver creates an Archiver writing to store.
func NewArchiver(store ObjectStore) *Archiver {
	return &Archiver{store: store, now: time.Now}
}

// ArchiveKey returns the object key for an export taken at t.
func ArchiveKey(t time.Time) string {
	return ArchivePrefix + t.UTC().Format("20060102T150405Z") + "_" + ExportAllFileName
}

// Archive uploads an export of policies and returns its object key.
func (a *Archiver) Archive(ctx context.Context, policies []models.Policy) (string, error) {
	data, err := Export(policies)
	if err != nil {
		return "", err
	}
	key := ArchiveKey(a.now())
	if err := a.store.Upload(ctx, key, "application/json", data); err != nil {
		return "", fmt.Errorf("archive export: %w", err)
	}
	return key, nil
}

// Archives lists archived exports, newest first.
func (a *Archiver) Archives(ctx context.Context) ([]storage.Object, error) {
	objs, err := a.store.List(ctx, ArchivePrefix)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return objs, nil
}

// DownloadURL returns a short-lived link to an archived export.
func (a *Archiver) DownloadURL(ctx context.Context, key string) (string, error) {
	return a.store.PresignedURL(ctx, key, 15*time.Minute)
}
