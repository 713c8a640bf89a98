package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jonwraymond/docscache/observe"
)

type recordingMetrics struct {
	mu       sync.Mutex
	lookups  []observe.Outcome
	writes   []error
	removed  int
	failed   int
	executed int
}

func (m *recordingMetrics) RecordLookup(_ context.Context, _ string, outcome observe.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, outcome)
}

func (m *recordingMetrics) RecordWrite(_ context.Context, _ string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, err)
}

func (m *recordingMetrics) RecordClear(_ context.Context, removed, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed += removed
	m.failed += failed
}

func (m *recordingMetrics) RecordExecution(context.Context, observe.ToolMeta, time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed++
}

func (m *recordingMetrics) lastLookup() observe.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lookups) == 0 {
		return ""
	}
	return m.lookups[len(m.lookups)-1]
}

func nextJSDocs() QueryDocsArgs {
	return QueryDocsArgs{LibraryID: "/vercel/next.js", Query: "middleware"}
}

func entryPath(t *testing.T, root, tool string, args any) string {
	t.Helper()
	key, err := NewDefaultKeyer().Key(tool, args)
	if err != nil {
		t.Fatal(err)
	}
	return key.Path(root)
}

func TestDiskCache_PutThenGet(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()
	want := mcp.NewToolResultText("Next.js middleware docs")

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), want)

	got, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs())
	if !ok {
		t.Fatal("Get() missed right after Put")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %#v, want %#v", got, want)
	}

	if _, err := os.Stat(entryPath(t, c.Root(), ToolQueryDocs, nextJSDocs())); err != nil {
		t.Errorf("entry file missing: %v", err)
	}
}

func TestDiskCache_ToolNamesDoNotCollide(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))

	if _, ok := c.Get(ctx, ToolResolveLibraryID, nextJSDocs()); ok {
		t.Error("Get() under a different tool name returned an entry")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := New(t.TempDir(), WithPolicy(Policy{TTL: 50 * time.Millisecond}))
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); !ok {
		t.Fatal("Get() missed before TTL elapsed")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit after TTL elapsed")
	}
	if _, err := os.Stat(entryPath(t, c.Root(), ToolQueryDocs, nextJSDocs())); err != nil {
		t.Errorf("stale entry should stay on disk until overwritten: %v", err)
	}
}

func TestDiskCache_ExpiryWithClock(t *testing.T) {
	now := time.Now()
	metrics := &recordingMetrics{}
	c := New(t.TempDir(),
		WithPolicy(Policy{TTL: time.Hour}),
		WithMetrics(metrics),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))

	now = now.Add(59 * time.Minute)
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); !ok {
		t.Fatal("Get() missed inside the TTL")
	}
	if got := metrics.lastLookup(); got != observe.OutcomeHit {
		t.Errorf("lookup outcome = %q, want hit", got)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit outside the TTL")
	}
	if got := metrics.lastLookup(); got != observe.OutcomeStale {
		t.Errorf("lookup outcome = %q, want stale", got)
	}
}

func TestDiskCache_FutureModTimeIsStale(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()
	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(entryPath(t, c.Root(), ToolQueryDocs, nextJSDocs()), future, future); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit for an entry written in the future")
	}
}

func TestDiskCache_ZeroTTLNeverHits(t *testing.T) {
	c := New(t.TempDir(), WithPolicy(Policy{TTL: 0}))
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))

	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit with a zero TTL")
	}
	if _, err := os.Stat(entryPath(t, c.Root(), ToolQueryDocs, nextJSDocs())); err != nil {
		t.Errorf("Put() should still write with a zero TTL: %v", err)
	}
}

type fixedKeyer struct{ hash string }

func (k fixedKeyer) Key(tool string, _ any) (Key, error) {
	return Key{Tool: tool, Hash: k.hash}, nil
}

func TestDiskCache_PathUsesConfiguredKeyer(t *testing.T) {
	root := t.TempDir()
	c := New(root, WithKeyer(fixedKeyer{hash: "00000000deadbeef"}))

	path, err := c.Path(ToolQueryDocs, nextJSDocs())
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "query_docs_00000000deadbeef.json")
	if path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}

	c.Put(context.Background(), ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
	if _, err := os.Stat(want); err != nil {
		t.Errorf("Put() did not write %s: %v", want, err)
	}
}

func TestDiskCache_PathRejectsInvalidTool(t *testing.T) {
	if _, err := New(t.TempDir()).Path("../escape", nextJSDocs()); err == nil {
		t.Error("Path() accepted an invalid tool name")
	}
}

func TestDiskCache_LastWriteWins(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("first"))
	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("second"))

	got, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs())
	if !ok {
		t.Fatal("Get() missed")
	}
	if text := got.Content[0].(mcp.TextContent).Text; text != "second" {
		t.Errorf("Get() text = %q, want second", text)
	}
}

func TestDiskCache_CorruptEntriesAreMisses(t *testing.T) {
	for _, body := range []string{
		"",
		"not json",
		`{"results":[]}`,
		`{"content":[{"text":"x"}]}`,
		`{"content":[{"type":"text","text":"x"}],"isError":"yes"}`,
		`{"content":[{"type":"text"}]}`,
		`{"content":[{"type":"text","text":"x"}],"structuredContent":7}`,
	} {
		t.Run(body, func(t *testing.T) {
			metrics := &recordingMetrics{}
			c := New(t.TempDir(), WithMetrics(metrics))
			writeFile(t, entryPath(t, c.Root(), ToolQueryDocs, nextJSDocs()), body)

			if got, ok := c.Get(context.Background(), ToolQueryDocs, nextJSDocs()); ok {
				t.Errorf("Get() = %#v, want miss", got)
			}
			if got := metrics.lastLookup(); got != observe.OutcomeCorrupt {
				t.Errorf("lookup outcome = %q, want corrupt", got)
			}
		})
	}
}

func TestDiskCache_InvalidToolNameIsMiss(t *testing.T) {
	var buf bytes.Buffer
	c := New(t.TempDir(), WithLogger(observe.NewLoggerWithWriter("warn", &buf)))
	ctx := context.Background()

	c.Put(ctx, "../escape", nextJSDocs(), mcp.NewToolResultText("docs"))
	if _, ok := c.Get(ctx, "../escape", nextJSDocs()); ok {
		t.Error("Get() hit for an invalid tool name")
	}
	if !strings.Contains(buf.String(), "failed to derive cache key") {
		t.Errorf("expected key warning, got:\n%s", buf.String())
	}

	dirents, _ := os.ReadDir(c.Root())
	if len(dirents) != 0 {
		t.Errorf("nothing should be written, found %d files", len(dirents))
	}
}

func TestDiskCache_DisabledIsSilent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	metrics := &recordingMetrics{}
	c := New(root, WithMetrics(metrics))
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit on a disabled cache")
	}
	if got := metrics.lastLookup(); got != observe.OutcomeDisabled {
		t.Errorf("lookup outcome = %q, want disabled", got)
	}

	// created after the probe ran: the cache stays disabled for this process
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))

	dirents, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirents) != 0 {
		t.Errorf("disabled cache wrote %d files", len(dirents))
	}
	if len(metrics.writes) != 0 {
		t.Errorf("disabled cache recorded %d writes", len(metrics.writes))
	}
}

func TestDiskCache_WriteFailureWarns(t *testing.T) {
	var buf bytes.Buffer
	metrics := &recordingMetrics{}
	root := filepath.Join(t.TempDir(), "cache")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	c := New(root,
		WithLogger(observe.NewLoggerWithWriter("warn", &buf)),
		WithMetrics(metrics),
	)
	ctx := context.Background()
	if !c.Enabled(ctx) {
		t.Fatal("Enabled() = false")
	}

	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))

	if !strings.Contains(buf.String(), "failed to write cache file") {
		t.Errorf("expected write warning, got:\n%s", buf.String())
	}
	if len(metrics.writes) != 1 || metrics.writes[0] == nil {
		t.Errorf("writes = %v, want one failed write", metrics.writes)
	}
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit after a failed write")
	}
}

func TestDiskCache_PutNilResultWarns(t *testing.T) {
	var buf bytes.Buffer
	c := New(t.TempDir(), WithLogger(observe.NewLoggerWithWriter("warn", &buf)))

	c.Put(context.Background(), ToolQueryDocs, nextJSDocs(), nil)

	if !strings.Contains(buf.String(), "failed to serialize cache entry") {
		t.Errorf("expected serialize warning, got:\n%s", buf.String())
	}
}

func TestDiskCache_Clear(t *testing.T) {
	metrics := &recordingMetrics{}
	c := New(t.TempDir(), WithMetrics(metrics))
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
	c.Put(ctx, ToolResolveLibraryID, ResolveLibraryIDArgs{LibraryName: "next.js", Query: "routing"}, mcp.NewToolResultText("ids"))
	writeFile(t, filepath.Join(c.Root(), "keep.txt"), "not an entry")

	result := c.Clear(ctx)

	if result.IsError {
		t.Fatalf("Clear() returned an error result: %#v", result)
	}
	if text := result.Content[0].(mcp.TextContent).Text; text != "Cache cleared successfully (2 entries removed)" {
		t.Errorf("Clear() text = %q", text)
	}
	if _, err := os.Stat(filepath.Join(c.Root(), "keep.txt")); err != nil {
		t.Errorf("non-entry file removed: %v", err)
	}
	if _, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
		t.Error("Get() hit after Clear")
	}
	if metrics.removed != 2 || metrics.failed != 0 {
		t.Errorf("clear metrics = (%d, %d), want (2, 0)", metrics.removed, metrics.failed)
	}
}

func TestDiskCache_ClearEmpty(t *testing.T) {
	result := New(t.TempDir()).Clear(context.Background())
	if text := result.Content[0].(mcp.TextContent).Text; text != "Cache cleared successfully (0 entries removed)" {
		t.Errorf("Clear() text = %q", text)
	}
}

func TestDiskCache_ClearDisabled(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"))

	result := c.Clear(context.Background())

	if result.IsError {
		t.Error("Clear() on a disabled cache should not be an error")
	}
	if text := result.Content[0].(mcp.TextContent).Text; text != "Cache is not enabled (directory not mounted)" {
		t.Errorf("Clear() text = %q", text)
	}
}

func TestDiskCache_ClearPartialFailure(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()
	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
	stuck := filepath.Join(c.Root(), "query_docs_ffffffffffffffff.json")
	if err := os.Mkdir(stuck, 0o755); err != nil {
		t.Fatal(err)
	}

	result := c.Clear(ctx)

	if !result.IsError {
		t.Fatal("Clear() with a failed removal should be an error result")
	}
	text := result.Content[0].(mcp.TextContent).Text
	if !strings.HasPrefix(text, "Failed to remove 1 cache entries: ") || !strings.Contains(text, stuck) {
		t.Errorf("Clear() text = %q", text)
	}
	if _, err := os.Stat(entryPath(t, c.Root(), ToolQueryDocs, nextJSDocs())); !os.IsNotExist(err) {
		t.Error("removable entry should be gone despite the failure")
	}
}

func TestDiskCache_ClearUnreadableRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	c := New(root)
	ctx := context.Background()
	if !c.Enabled(ctx) {
		t.Fatal("Enabled() = false")
	}
	if err := os.Remove(root); err != nil {
		t.Fatal(err)
	}

	result := c.Clear(ctx)

	if !result.IsError {
		t.Fatal("Clear() should fail when the root cannot be listed")
	}
	if text := result.Content[0].(mcp.TextContent).Text; !strings.HasPrefix(text, "Failed to read cache directory: ") {
		t.Errorf("Clear() text = %q", text)
	}
}

func TestDiskCache_Entries(t *testing.T) {
	now := time.Now().Add(time.Minute)
	c := New(t.TempDir(),
		WithPolicy(Policy{TTL: time.Hour}),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
	stale := ResolveLibraryIDArgs{LibraryName: "react", Query: "hooks"}
	c.Put(ctx, ToolResolveLibraryID, stale, mcp.NewToolResultText("ids"))
	old := now.Add(-2 * time.Hour)
	if err := os.Chtimes(entryPath(t, c.Root(), ToolResolveLibraryID, stale), old, old); err != nil {
		t.Fatal(err)
	}

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries() = %d entries, want 2", len(entries))
	}
	fresh := map[string]bool{}
	for _, e := range entries {
		fresh[e.Tool] = e.Fresh
	}
	if !fresh[ToolQueryDocs] || fresh[ToolResolveLibraryID] {
		t.Errorf("freshness = %v, want query_docs fresh and resolve_library_id stale", fresh)
	}
}

func TestDiskCache_EntriesDisabled(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"))
	if _, err := c.Entries(context.Background()); err != ErrCacheDisabled {
		t.Errorf("Entries() error = %v, want ErrCacheDisabled", err)
	}
}

func TestDiskCache_ConcurrentPutGet(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Put(ctx, ToolQueryDocs, nextJSDocs(), mcp.NewToolResultText("docs"))
		}()
		go func() {
			defer wg.Done()
			if got, ok := c.Get(ctx, ToolQueryDocs, nextJSDocs()); ok {
				if text := got.Content[0].(mcp.TextContent).Text; text != "docs" {
					t.Errorf("torn read: %q", text)
				}
			}
		}()
	}
	wg.Wait()

	dirents, err := os.ReadDir(c.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(dirents) != 1 {
		t.Errorf("expected one entry file after concurrent writes, found %d", len(dirents))
	}
}
