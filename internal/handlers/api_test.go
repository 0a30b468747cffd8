package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"policyportal/internal/models"
	"policyportal/internal/policydoc"
)

// documentResponse mirrors the JSON shape of a rendered policy.
type documentResponse struct {
	Policy   models.Policy       `json:"policy"`
	HTML     string              `json:"html"`
	Headings []policydoc.Heading `json:"headings"`
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status: got %d, want %d", rec.Code, status)
	}
	body := decodeJSON[map[string]string](t, rec)
	if body["error"] != msg {
		t.Errorf("error: got %q, want %q", body["error"], msg)
	}
}

func TestAPIListPolicies(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/policies", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list: got %q, want []", got)
	}

	env.seedPolicy(t, "A", "a", "general")
	env.seedPolicy(t, "B", "b", "security")

	all := decodeJSON[[]models.Policy](t, env.do(httptest.NewRequest(http.MethodGet, "/api/policies", nil)))
	if len(all) != 2 || all[0].Name != "B" {
		t.Errorf("all policies: %+v", all)
	}

	filtered := decodeJSON[[]models.Policy](t, env.do(httptest.NewRequest(http.MethodGet, "/api/policies?category=security", nil)))
	if len(filtered) != 1 || filtered[0].Name != "B" {
		t.Errorf("security policies: %+v", filtered)
	}
}

func TestAPICreatePolicy(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(http.MethodPost, "/api/policies", `{"name":" VPN ","content":"## Access","category_id":"security"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	p := decodeJSON[models.Policy](t, rec)
	if p.ID != 1 || p.Name != "VPN" || !p.InCategory("security") {
		t.Errorf("created: %+v", p)
	}
}

func TestAPICreatePolicyErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"malformed", `{"name":`, http.StatusBadRequest, "Invalid JSON body."},
		{"unknown field", `{"title":"x"}`, http.StatusBadRequest, "Invalid JSON body."},
		{"missing name", `{"content":"x"}`, http.StatusUnprocessableEntity, "Policy name is required."},
		{"unknown category", `{"name":"x","category_id":"ghost"}`, http.StatusUnprocessableEntity, "The selected category does not exist."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(jsonRequest(http.MethodPost, "/api/policies", tt.body))
			assertJSONError(t, rec, tt.status, tt.msg)
		})
	}
}

func TestAPIGetPolicy(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPolicy(t, "Access", "## Scope\n\n### Who\n\n## Scope", "general")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/policies/1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	doc := decodeJSON[documentResponse](t, rec)
	if doc.Policy.ID != p.ID {
		t.Errorf("policy id: got %d", doc.Policy.ID)
	}
	wantIDs := []string{"scope", "who", "scope"}
	if len(doc.Headings) != len(wantIDs) {
		t.Fatalf("headings: %+v", doc.Headings)
	}
	for i, h := range doc.Headings {
		if h.ID != wantIDs[i] {
			t.Errorf("heading %d: got %q, want %q", i, h.ID, wantIDs[i])
		}
	}
	if strings.Count(doc.HTML, `id="scope"`) != 2 {
		t.Errorf("duplicate headings should share an id: %s", doc.HTML)
	}

	assertJSONError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/policies/9", nil)), http.StatusNotFound, "The requested item no longer exists.")
	assertJSONError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/policies/x", nil)), http.StatusNotFound, "Policy not found.")
}

func TestAPIPatchPolicy(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, "Access", "old", "general")

	rec := env.do(jsonRequest(http.MethodPatch, "/api/policies/1", `{"content":"## New"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	p := decodeJSON[models.Policy](t, rec)
	if p.Name != "Access" || p.Content != "## New" {
		t.Errorf("patched: %+v", p)
	}

	rec = env.do(jsonRequest(http.MethodPatch, "/api/policies/1", `{}`))
	if rec.Code != http.StatusOK {
		t.Errorf("empty patch: status got %d, want 200", rec.Code)
	}

	assertJSONError(t, env.do(jsonRequest(http.MethodPatch, "/api/policies/1", `{"name":"  "}`)), http.StatusUnprocessableEntity, "Please enter a name.")
	assertJSONError(t, env.do(jsonRequest(http.MethodPatch, "/api/policies/1", `{"category_id":"ghost"}`)), http.StatusUnprocessableEntity, "The selected category does not exist.")
	assertJSONError(t, env.do(jsonRequest(http.MethodPatch, "/api/policies/5", `{"name":"x"}`)), http.StatusNotFound, "The requested item no longer exists.")
}

func TestAPIDeletePolicy(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, "Access", "x", "general")

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/policies/1", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/policies/1", nil))
	assertJSONError(t, rec, http.StatusNotFound, "The requested item no longer exists.")
}

func TestAPITableOfContents(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, "Access", "# Title\n## Scope & Purpose\n```\n## not a heading\n```\n### Roles", "general")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/policies/1/toc", nil))

	body := decodeJSON[struct {
		Headings []policydoc.Heading `json:"headings"`
	}](t, rec)
	want := []policydoc.Heading{
		{ID: "scope-purpose", Text: "Scope & Purpose", Level: 2},
		{ID: "roles", Text: "Roles", Level: 3},
	}
	if len(body.Headings) != len(want) {
		t.Fatalf("headings: %+v", body.Headings)
	}
	for i := range want {
		if body.Headings[i] != want[i] {
			t.Errorf("heading %d: got %+v, want %+v", i, body.Headings[i], want[i])
		}
	}
}

func TestAPIRender(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(http.MethodPost, "/api/render", `{"content":"**Simple:** do X"}`))

	body := decodeJSON[struct {
		HTML     string              `json:"html"`
		Headings []policydoc.Heading `json:"headings"`
	}](t, rec)
	if !strings.Contains(body.HTML, "Simple:</span>") || !strings.Contains(body.HTML, "do X") {
		t.Errorf("html: %s", body.HTML)
	}
	if len(body.Headings) != 0 {
		t.Errorf("headings: %+v", body.Headings)
	}

	rec = env.do(jsonRequest(http.MethodPost, "/api/render", `{"content":""}`))
	empty := decodeJSON[map[string]any](t, rec)
	if empty["html"] != "" {
		t.Errorf("empty input html: %v", empty["html"])
	}
}

func TestAPICategories(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(http.MethodPost, "/api/categories", `{"name":"Network Ops"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status got %d (%s)", rec.Code, rec.Body.String())
	}
	c := decodeJSON[models.Category](t, rec)
	if c.ID != "network-ops" || c.Icon != models.DefaultCategoryIcon {
		t.Errorf("created: %+v", c)
	}

	list := decodeJSON[[]models.Category](t, env.do(httptest.NewRequest(http.MethodGet, "/api/categories", nil)))
	if len(list) != 3 {
		t.Errorf("categories: %+v", list)
	}

	assertJSONError(t, env.do(jsonRequest(http.MethodPost, "/api/categories", `{"name":"Network Ops"}`)), http.StatusConflict, "A category with that name already exists.")
	assertJSONError(t, env.do(jsonRequest(http.MethodPost, "/api/categories", `{"name":""}`)), http.StatusUnprocessableEntity, "Category name is required.")

	env.seedPolicy(t, "Firewall", "x", "network-ops")
	assertJSONError(t, env.do(httptest.NewRequest(http.MethodDelete, "/api/categories/network-ops", nil)), http.StatusConflict,
		"Cannot delete category. It contains 1 policies. Please move or delete them first.")
	assertJSONError(t, env.do(httptest.NewRequest(http.MethodDelete, "/api/categories/general", nil)), http.StatusConflict,
		"The General category cannot be deleted.")

	if rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/categories/security", nil)); rec.Code != http.StatusNoContent {
		t.Errorf("delete empty: status got %d, want 204", rec.Code)
	}
}
