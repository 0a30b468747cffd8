// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// in-memory repositories, a recording session store and fakes for the AI,
// sync and archive collaborators.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"policyportal/internal/markdown"
	"policyportal/internal/middleware"
	"policyportal/internal/models"
	"policyportal/internal/policydoc"
	"policyportal/internal/portal"
	"policyportal/internal/render"
	"policyportal/internal/session"
	"policyportal/internal/slug"
	"policyportal/internal/storage"
	"policyportal/internal/store"
	"policyportal/internal/transfer"
)

// memPolicies is an in-memory policy repository.
type memPolicies struct {
	mu   sync.Mutex
	next int64
	rows []models.Policy
}

func (m *memPolicies) List(context.Context) ([]models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Policy, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memPolicies) ListByCategory(_ context.Context, id string) ([]models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Policy
	for _, p := range m.rows {
		if p.InCategory(id) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPolicies) FindByID(_ context.Context, id int64) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPolicies) Create(_ context.Context, name, content string, categoryID *string) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p := models.Policy{ID: m.next, Name: name, Content: content, CategoryID: categoryID}
	m.rows = append(m.rows, p)
	return &p, nil
}

func (m *memPolicies) Update(_ context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID != id {
			continue
		}
		if patch.Name != nil {
			m.rows[i].Name = *patch.Name
		}
		if patch.Content != nil {
			m.rows[i].Content = *patch.Content
		}
		if patch.CategoryID != nil {
			m.rows[i].CategoryID = patch.CategoryID
		}
		p := m.rows[i]
		return &p, nil
	}
	return nil, store.ErrNotFound
}

func (m *memPolicies) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memPolicies) get(id int64) *models.Policy {
	p, _ := m.FindByID(context.Background(), id)
	return p
}

// memCategories is an in-memory category repository.
type memCategories struct {
	rows     []models.Category
	policies *memPolicies
}

func (m *memCategories) List(context.Context) ([]models.Category, error) {
	return append([]models.Category(nil), m.rows...), nil
}

func (m *memCategories) FindByID(_ context.Context, id string) (*models.Category, error) {
	for _, c := range m.rows {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memCategories) Create(_ context.Context, name, icon string) (*models.Category, error) {
	c := models.Category{ID: slug.CategoryID(name), Name: name, Icon: icon}
	for _, existing := range m.rows {
		if existing.ID == c.ID {
			return nil, store.ErrDuplicate
		}
	}
	m.rows = append(m.rows, c)
	return &c, nil
}

func (m *memCategories) Delete(ctx context.Context, id string) error {
	if id == models.GeneralCategoryID {
		return store.ErrProtectedCategory
	}
	if inUse, _ := m.policies.ListByCategory(ctx, id); len(inUse) > 0 {
		return &store.CategoryInUseError{ID: id, Policies: len(inUse)}
	}
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeSessions records flashes and created sessions.
type fakeSessions struct {
	flash     string
	created   *session.Data
	destroyed bool
	createErr error
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	data.LoginID = uuid.New()
	data.CreatedAt = time.Now()
	f.created = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session"})
	return "test-session", nil
}

func (f *fakeSessions) SetFlash(_ context.Context, _ *http.Request, msg string) error {
	f.flash = msg
	return nil
}

func (f *fakeSessions) PopFlash(context.Context, *http.Request) string {
	msg := f.flash
	f.flash = ""
	return msg
}

func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed = true
	return nil
}

// fakeCredentials accepts a single username and password.
type fakeCredentials struct{ username, password string }

func (f fakeCredentials) Check(username, password string) bool {
	return username == f.username && password == f.password
}

// fakeDrafter returns a canned draft or error.
type fakeDrafter struct {
	text  string
	err   error
	names []string
}

func (f *fakeDrafter) Draft(_ context.Context, name string) (string, error) {
	f.names = append(f.names, name)
	return f.text, f.err
}

// fakeSyncer records sync calls.
type fakeSyncer struct {
	state        transfer.SyncState
	result       transfer.Result
	err          error
	urls         []string
	disconnected bool
	busy         bool
}

func (f *fakeSyncer) State() transfer.SyncState { return f.state }

func (f *fakeSyncer) Sync(_ context.Context, rawURL string) (transfer.Result, error) {
	f.urls = append(f.urls, rawURL)
	return f.result, f.err
}

func (f *fakeSyncer) Disconnect() error {
	if f.busy {
		return transfer.ErrSyncInProgress
	}
	f.disconnected = true
	return nil
}

// fakeArchiver keeps archives in memory.
type fakeArchiver struct {
	objects []storage.Object
	err     error
}

func (f *fakeArchiver) Archive(_ context.Context, policies []models.Policy) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := transfer.ArchiveKey(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	f.objects = append(f.objects, storage.Object{Key: key, Size: int64(len(policies))})
	return key, nil
}

func (f *fakeArchiver) Archives(context.Context) ([]storage.Object, error) {
	return f.objects, f.err
}

func (f *fakeArchiver) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://storage.test/" + key + "?sig=1", nil
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Policies   *memPolicies
	Categories *memCategories
	Sessions   *fakeSessions
	Drafter    *fakeDrafter
	Syncer     *fakeSyncer
	Archiver   *fakeArchiver
	Service    *portal.Service
	Auth       *Auth
	Pages      *Pages
	Transfer   *Transfer
	API        *API
	Router     chi.Router
}

type envOption func(*envConfig)

type envConfig struct {
	noAI      bool
	noStorage bool
}

func withoutAI() envOption      { return func(c *envConfig) { c.noAI = true } }
func withoutStorage() envOption { return func(c *envConfig) { c.noStorage = true } }

// newTestEnv creates a handler environment over in-memory repositories with
// General and Security categories.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	policies := &memPolicies{}
	categories := &memCategories{
		policies: policies,
		rows: []models.Category{
			{ID: models.GeneralCategoryID, Name: "General", Icon: "Folder"},
			{ID: "security", Name: "Security", Icon: "Shield"},
		},
	}
	annotator := policydoc.NewAnnotator(markdown.ToHTML)
	service := portal.NewService(policies, categories, portal.NewRenderer(annotator, nil))

	env := &testEnv{
		Policies:   policies,
		Categories: categories,
		Sessions:   &fakeSessions{},
		Drafter:    &fakeDrafter{text: "## Purpose\n\nKeep systems safe."},
		Syncer:     &fakeSyncer{state: transfer.SyncState{Status: transfer.StatusNotConnected}},
		Archiver:   &fakeArchiver{},
		Service:    service,
	}

	var archiver ArchiveStore
	if !cfg.noStorage {
		archiver = env.Archiver
	}
	var writer Drafter
	if !cfg.noAI {
		writer = env.Drafter
	}

	env.Auth = NewAuth(renderer, env.Sessions, fakeCredentials{username: "admin", password: "password"})
	env.Transfer = NewTransfer(env.Sessions, service, transfer.NewImporter(policies), env.Syncer, archiver)
	env.Pages = NewPages(renderer, env.Sessions, service, writer, env.Transfer)
	env.API = NewAPI(service)
	env.Router = env.routes()
	return env
}

// routes mounts the handlers the way the router does, without the session
// and CSRF middleware.
func (env *testEnv) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", env.Auth.LoginPage)
	r.Post("/login", env.Auth.LoginSubmit)
	r.Post("/logout", env.Auth.Logout)

	r.Get("/", env.Pages.Index)
	r.Post("/policies", env.Pages.NewPolicy)
	r.Post("/policies/preview", env.Pages.Preview)
	r.Post("/policies/generate", env.Pages.GeneratePolicy)
	r.Get("/policies/{id}", env.Pages.ViewPolicy)
	r.Post("/policies/{id}", env.Pages.SavePolicy)
	r.Get("/policies/{id}/edit", env.Pages.EditPolicy)
	r.Post("/policies/{id}/delete", env.Pages.DeletePolicy)
	r.Get("/policies/{id}/export", env.Transfer.ExportPolicy)
	r.Post("/categories", env.Pages.AddCategory)
	r.Post("/categories/{id}/delete", env.Pages.DeleteCategory)
	r.Get("/export", env.Transfer.ExportAll)
	r.Post("/export/archive", env.Transfer.Archive)
	r.Get("/export/archive/download", env.Transfer.ArchiveDownload)
	r.Post("/import", env.Transfer.Import)
	r.Post("/sync", env.Transfer.Sync)

	r.Route("/api", func(r chi.Router) {
		r.Get("/policies", env.API.ListPolicies)
		r.Post("/policies", env.API.CreatePolicy)
		r.Get("/policies/{id}", env.API.GetPolicy)
		r.Patch("/policies/{id}", env.API.PatchPolicy)
		r.Delete("/policies/{id}", env.API.DeletePolicy)
		r.Get("/policies/{id}/toc", env.API.TableOfContents)
		r.Post("/render", env.API.Render)
		r.Get("/categories", env.API.ListCategories)
		r.Post("/categories", env.API.CreateCategory)
		r.Delete("/categories/{id}", env.API.DeleteCategory)
	})
	return r
}

// seedPolicy stores a policy directly in the repository.
func (env *testEnv) seedPolicy(t *testing.T, name, content, category string) *models.Policy {
	t.Helper()
	p, err := env.Policies.Create(context.Background(), name, content, &category)
	if err != nil {
		t.Fatalf("seed policy: %v", err)
	}
	return p
}

// do sends a request through the test router.
func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// postForm builds a form POST request.
func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ctxWithSession returns a context carrying the given session data.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location: got %q, want %q", loc, want)
	}
}

func assertFlash(t *testing.T, env *testEnv, want string) {
	t.Helper()
	if env.Sessions.flash != want {
		t.Errorf("flash: got %q, want %q", env.Sessions.flash, want)
	}
}
