// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"policyportal/internal/portal"
	"policyportal/internal/store"
	"policyportal/internal/transfer"
)

// maxImportSize caps uploaded import files.
const maxImportSize = 10 << 20

// Transfer groups the export, import, sync and archive handlers.
type Transfer struct {
	sessions Sessions
	service  *portal.Service
	importer *transfer.Importer
	syncer   SyncRunner
	archiver ArchiveStore
}

// NewTransfer creates the transfer handler group. archiver may be nil when
// object storage is not configured.
func NewTransfer(sessions Sessions, service *portal.Service, importer *transfer.Importer, syncer SyncRunner, archiver ArchiveStore) *Transfer {
	return &Transfer{
		sessions: sessions,
		service:  service,
		importer: importer,
		syncer:   syncer,
		archiver: archiver,
	}
}

func (t *Transfer) flash(r *http.Request, kind, msg string) {
	setFlash(r.Context(), t.sessions, r, kind, msg)
}

// ExportAll downloads every policy as a JSON array.
func (t *Transfer) ExportAll(w http.ResponseWriter, r *http.Request) {
	policies, err := t.service.Policies(r.Context())
	if err != nil {
		slog.Error("list policies for export failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data, err := transfer.Export(policies)
	if err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	attachment(w, transfer.ExportAllFileName, data)
}

// ExportPolicy downloads one policy as a JSON object.
func (t *Transfer) ExportPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	policy, err := t.service.Policy(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("load policy for export failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data, err := transfer.ExportOne(*policy)
	if err != nil {
		slog.Error("export failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	attachment(w, transfer.FileName(policy.Name), data)
}

// Import handles a multipart upload of a JSON export or a Markdown file.
// Every valid record becomes a new policy in General.
func (t *Transfer) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		t.flash(r, flashError, "Please choose a file to import.")
		redirect(w, r, "/")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize+1))
	if err != nil || len(data) > maxImportSize {
		t.flash(r, flashError, "Import failed. The file is too large.")
		redirect(w, r, "/")
		return
	}

	res, err := t.importer.ImportFile(r.Context(), header.Filename, data)
	if err != nil {
		slog.Error("import failed", "file", header.Filename, "error", err)
		msg := "Import failed."
		if transfer.IsInputError(err) {
			msg = "Import failed. The file is not a valid policy export."
		}
		t.flash(r, flashError, msg)
		redirect(w, r, "/")
		return
	}

	slog.Info("import complete", "file", header.Filename, "added", res.Added, "skipped", res.Skipped)
	t.flash(r, flashSuccess, res.Message())
	redirect(w, r, "/")
}

// Sync connects to a remote export and merges it, or disconnects.
func (t *Transfer) Sync(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("action") == "disconnect" {
		if err := t.syncer.Disconnect(); err != nil {
			t.flash(r, flashError, "A sync is running. Disconnect once it has finished.")
		} else {
			t.flash(r, flashSuccess, "Live sync disconnected.")
		}
		redirect(w, r, "/")
		return
	}

	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		url = t.syncer.State().URL
	}

	res, err := t.syncer.Sync(r.Context(), url)
	switch {
	case errors.Is(err, transfer.ErrSyncInProgress):
		t.flash(r, flashError, "A sync is already running. Please wait for it to finish.")
	case errors.Is(err, transfer.ErrInvalidURL):
		t.flash(r, flashError, "Please enter a valid http(s) URL.")
	case err != nil:
		t.flash(r, flashError, "Sync failed: "+err.Error())
	default:
		t.flash(r, flashSuccess, syncMessage(res))
	}
	redirect(w, r, "/")
}

func syncMessage(res transfer.Result) string {
	return fmt.Sprintf("Sync complete: %d added, %d updated, %d unchanged.", res.Added, res.Updated, res.Unchanged)
}

// Archive uploads the current export to object storage.
func (t *Transfer) Archive(w http.ResponseWriter, r *http.Request) {
	if t.archiver == nil {
		http.NotFound(w, r)
		return
	}

	policies, err := t.service.Policies(r.Context())
	if err != nil {
		slog.Error("list policies for archive failed", "error", err)
		t.flash(r, flashError, "Archive failed.")
		redirect(w, r, "/")
		return
	}

	key, err := t.archiver.Archive(r.Context(), policies)
	if err != nil {
		slog.Error("archive failed", "error", err)
		t.flash(r, flashError, "Archive failed.")
		redirect(w, r, "/")
		return
	}

	t.flash(r, flashSuccess, "Export archived as "+key+".")
	redirect(w, r, "/")
}

// ArchiveDownload redirects to a short-lived download URL for an archive.
func (t *Transfer) ArchiveDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if t.archiver == nil || !strings.HasPrefix(key, transfer.ArchivePrefix) || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}

	url, err := t.archiver.DownloadURL(r.Context(), key)
	if err != nil {
		slog.Error("presign archive failed", "key", key, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}
