package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `# Acceptable Use

## Scope

Applies to all staff.

### Devices & Laptops

<script>alert(1)</script>
`

func TestRenderCmd_Stdout(t *testing.T) {
	path := writeFile(t, "policy.md", samplePolicy)

	out, _, err := execute(t, nil, "render", path)

	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="scope"`)
	assert.Contains(t, out, `<h3 id="devices-laptops"`)
	assert.Contains(t, out, "<script>alert(1)</script>")
}

func TestRenderCmd_Sanitize(t *testing.T) {
	path := writeFile(t, "policy.md", samplePolicy)

	out, _, err := execute(t, nil, "render", "--sanitize", path)

	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="scope"`)
	assert.NotContains(t, out, "<script>")
}

func TestRenderCmd_OutFile(t *testing.T) {
	path := writeFile(t, "policy.md", samplePolicy)
	dest := filepath.Join(t.TempDir(), "policy.html")

	out, _, err := execute(t, nil, "render", "--out", dest, path)

	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<h2 id="scope"`)
}

func TestRenderCmd_Stdin(t *testing.T) {
	cmd := New(nil)
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("## From Stdin\n"))
	cmd.SetArgs([]string{"render", "-"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `<h2 id="from-stdin"`)
}

func TestRenderCmd_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.md", "   \n")

	out, _, err := execute(t, nil, "render", path)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, nil, "render", filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderCmd_WatchNeedsFile(t *testing.T) {
	_, _, err := execute(t, nil, "render", "--watch", "-")
	assert.ErrorContains(t, err, "--watch")
}

func TestRenderCmd_RequiresOneArg(t *testing.T) {
	_, _, err := execute(t, nil, "render")
	assert.Error(t, err)
}

func TestRenderCmd_WatchRerenders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.md")
	dest := filepath.Join(dir, "policy.html")
	require.NoError(t, os.WriteFile(path, []byte("## First\n"), 0o644))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		cmd := New(nil)
		cmd.SetOut(new(strings.Builder))
		cmd.SetErr(new(strings.Builder))
		cmd.SetArgs([]string{"render", "--watch", "--out", dest, path})
		done <- cmd.ExecuteContext(ctx)
	}()

	require.Eventually(t, func() bool {
		data, _ := os.ReadFile(dest)
		return strings.Contains(string(data), `id="first"`)
	}, 5*time.Second, 20*time.Millisecond)

	// The watcher may not be registered yet; keep rewriting until it is seen.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("## Second\n"), 0o644)
		data, _ := os.ReadFile(dest)
		return strings.Contains(string(data), `id="second"`)
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestChanged(t *testing.T) {
	target := filepath.Join(t.TempDir(), "policy.md")
	other := filepath.Join(filepath.Dir(target), "other.md")

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write to target", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create of target", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"write and chmod", fsnotify.Event{Name: target, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove of target", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"rename of target", fsnotify.Event{Name: target, Op: fsnotify.Rename}, false},
		{"write to sibling", fsnotify.Event{Name: other, Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, changed(tt.ev, target))
		})
	}
}
