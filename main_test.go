package shard

import (
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// setupTestStore returns a store over a fresh in-memory filesystem that
// logs through the test.
func setupTestStore(t *testing.T, options ...Option) (*Store, afero.Fs) {
	t.Helper()

	memFs := afero.NewMemMapFs()
	opts := append([]Option{WithFs(memFs), WithLogger(zaptest.NewLogger(t))}, options...)
	store, err := New(opts...)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store, memFs
}

func createTestFile(t *testing.T, fs afero.Fs, path string, content []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, content, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// createLeaf creates a JSON file shard at /shards/<name>.json with its
// payload at /payloads/<name>.json.
func createLeaf(t *testing.T, store *Store, name string, data any) *FileShard {
	t.Helper()
	f, err := store.CreateFile(data, "file:///shards/"+name+".json", "/payloads/"+name+".json", false)
	if err != nil {
		t.Fatalf("Failed to create shard %s: %v", name, err)
	}
	return f
}

func assertErrorIs(t *testing.T, err, target error, context string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error wrapping %v, got nil", context, target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("%s: expected error wrapping %v, got %v", context, target, err)
	}
}

func assertEqualShards(t *testing.T, a, b Shard, equalNaN bool, context string) {
	t.Helper()
	eq, err := Equal(a, b, equalNaN)
	if err != nil {
		t.Fatalf("%s: Equal failed: %v", context, err)
	}
	if !eq {
		t.Fatalf("%s: shards differ:\n%s\n%s", context, dump(a), dump(b))
	}
}

var dumpConfig = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

// dump renders a shard graph for failure messages without the filesystem
// internals a raw spew of the handles would include.
func dump(root Shard) string {
	if root == nil {
		return "<nil>"
	}
	view := make(map[string]any)
	_ = Walk(root, func(ids []string, s Shard) error {
		entry := map[string]any{"kind": s.Kind().String(), "uri": s.URI()}
		if s.Kind() == KindFile {
			data, err := s.Data(false)
			if err != nil {
				entry["error"] = err.Error()
			} else {
				entry["data"] = data
			}
		}
		view["/"+strings.Join(ids, "/")] = entry
		return nil
	})
	return dumpConfig.Sdump(view)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
