package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyportal/internal/models"
)

// memLibrary is an in-memory Library.
type memLibrary struct {
	mu       sync.Mutex
	policies []models.Policy
	nextID   int64
	closed   bool
}

func newMemLibrary(seed ...models.Policy) *memLibrary {
	lib := &memLibrary{nextID: 1}
	for _, p := range seed {
		p.ID = lib.nextID
		lib.nextID++
		lib.policies = append(lib.policies, p)
	}
	return lib
}

func (m *memLibrary) List(_ context.Context) ([]models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Policy(nil), m.policies...), nil
}

func (m *memLibrary) Create(_ context.Context, name, content string, categoryID *string) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Policy{ID: m.nextID, Name: name, Content: content, CategoryID: categoryID, CreatedAt: time.Now()}
	m.nextID++
	m.policies = append(m.policies, p)
	return &p, nil
}

func (m *memLibrary) Update(_ context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.policies {
		if m.policies[i].ID != id {
			continue
		}
		if patch.Name != nil {
			m.policies[i].Name = *patch.Name
		}
		if patch.Content != nil {
			m.policies[i].Content = *patch.Content
		}
		if patch.CategoryID != nil {
			m.policies[i].CategoryID = patch.CategoryID
		}
		p := m.policies[i]
		return &p, nil
	}
	return nil, errors.New("not found")
}

func (m *memLibrary) opener() Opener {
	return func(context.Context) (Library, func() error, error) {
		return m, func() error {
			m.mu.Lock()
			m.closed = true
			m.mu.Unlock()
			return nil
		}, nil
	}
}

// execute runs policyctl with args and returns stdout and stderr.
func execute(t *testing.T, open Opener, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := New(open)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

// writeFile creates name under a temp dir with content and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := New(nil)
	assert.Equal(t, "policyctl", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"render", "toc", "export", "import", "sync"} {
		assert.Contains(t, names, want)
	}
}

func TestDatabaseCommandsWithoutOpener(t *testing.T) {
	for _, args := range [][]string{
		{"export"},
		{"import", "policies.json"},
		{"sync", "https://example.com/export.json"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, _, err := execute(t, nil, args...)
			assert.ErrorIs(t, err, errNoLibrary)
		})
	}
}

func TestOpenerErrorIsReturned(t *testing.T) {
	failing := func(context.Context) (Library, func() error, error) {
		return nil, nil, errors.New("connection refused")
	}
	_, _, err := execute(t, failing, "export")
	assert.EqualError(t, err, "connection refused")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := execute(t, nil, "publish")
	assert.Error(t, err)
}
