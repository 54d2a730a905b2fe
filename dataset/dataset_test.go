package dataset

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gophersatwork/shard"
)

func newStore(t *testing.T) (*shard.Store, afero.Fs) {
	t.Helper()
	memFs := afero.NewMemMapFs()
	store, err := shard.New(shard.WithFs(memFs), shard.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return store, memFs
}

func leaf(t *testing.T, store *shard.Store, name string, data any) shard.Shard {
	t.Helper()
	f, err := store.CreateFile(data, fmt.Sprintf("file:///data/shards/%s.json", name), name+".cbor", false)
	require.NoError(t, err)
	return f
}

func TestEndToEnd(t *testing.T) {
	store, _ := newStore(t)

	splits := map[string][]shard.Shard{
		"train": {
			leaf(t, store, "train-0", []any{uint64(1), uint64(2), uint64(3)}),
			leaf(t, store, "train-1", []any{uint64(4), uint64(5), uint64(6)}),
		},
		"val": {},
	}
	assets := map[string]shard.Shard{
		"labels": leaf(t, store, "labels", map[string]any{"0": "cat", "1": "dog"}),
	}

	ds, err := Create(store, "/data", splits, assets, false)
	require.NoError(t, err)
	assert.Equal(t, "file:///data/dataset.json", ds.URI())
	assert.Equal(t, []string{"train", "val"}, ds.Splits())

	n, err := ds.NumShards("train")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = ds.NumShards("val")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	loaded, err := Open(store, ds.URI())
	require.NoError(t, err)
	assert.False(t, loaded.IsCached())

	eq, err := ds.Equal(loaded, false)
	require.NoError(t, err)
	assert.True(t, eq, "reloaded dataset should equal the original")

	train, err := loaded.Shards("train")
	require.NoError(t, err)
	require.Len(t, train, 2)
	data, err := train[1].Data(true)
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(4), uint64(5), uint64(6)}, data)
	assert.Equal(t, []string{"labels"}, loaded.AssetNames())

	loaded.Clear()
	assert.False(t, train[1].IsCached())
}

func TestMissingLookups(t *testing.T) {
	store, _ := newStore(t)
	ds, err := Create(store, "/data", map[string][]shard.Shard{"train": nil}, nil, false)
	require.NoError(t, err)

	_, err = ds.Asset("missing")
	require.ErrorIs(t, err, shard.ErrNotFound)
	assert.Contains(t, err.Error(), "missing")

	_, err = ds.Shards("missing_split")
	require.ErrorIs(t, err, shard.ErrNotFound)
	assert.Contains(t, err.Error(), "missing")

	_, err = ds.NumShards("missing_split")
	require.ErrorIs(t, err, shard.ErrNotFound)
}

func TestCreateConflict(t *testing.T) {
	store, _ := newStore(t)
	a := leaf(t, store, "a", "x")

	_, err := Create(store, "/data", map[string][]shard.Shard{"train": {a}}, nil, false)
	require.NoError(t, err)

	_, err = Create(store, "/data", map[string][]shard.Shard{"train": {a}}, nil, false)
	require.ErrorIs(t, err, shard.ErrConflict)

	ds, err := Create(store, "/data", map[string][]shard.Shard{"train": {a, a}}, nil, true)
	require.NoError(t, err)
	n, _ := ds.NumShards("train")
	assert.Equal(t, 2, n)
}

func TestCreateRejectsBadSplitNames(t *testing.T) {
	store, _ := newStore(t)
	for _, name := range []string{"", "a/b", ".."} {
		_, err := Create(store, "/data", map[string][]shard.Shard{name: nil}, nil, false)
		require.ErrorIs(t, err, shard.ErrMalformed, "split name %q", name)
	}
}

func TestExtend(t *testing.T) {
	store, _ := newStore(t)
	ds, err := Create(store, "/data", map[string][]shard.Shard{"train": nil}, nil, false)
	require.NoError(t, err)

	require.NoError(t, ds.Extend(store, "train", leaf(t, store, "late", "x")))
	require.ErrorIs(t, ds.Extend(store, "test", leaf(t, store, "other", "y")), shard.ErrNotFound)

	loaded, err := Open(store, ds.URI())
	require.NoError(t, err)
	n, err := loaded.NumShards("train")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenRejectsOtherLayouts(t *testing.T) {
	store, memFs := newStore(t)
	a := leaf(t, store, "a", "x")

	_, err := Open(store, a.URI())
	require.ErrorIs(t, err, shard.ErrMalformed)

	_, err = store.CreateDict(map[string]shard.Shard{"splits": a}, "file:///data/odd.json", false)
	require.NoError(t, err)
	_, err = Open(store, "file:///data/odd.json")
	require.ErrorIs(t, err, shard.ErrMalformed)

	require.NoError(t, afero.WriteFile(memFs, "/data/bad.json",
		[]byte(`{"shards": {"splits": "file:///data/splits-bad.json", "assets": "file:///data/assets-bad.json"}, "loader": {"target": "shard.Dict"}}`), 0o644))
	require.NoError(t, afero.WriteFile(memFs, "/data/splits-bad.json",
		[]byte(`{"shards": {"train": "file:///data/shards/a.json"}, "loader": {"target": "shard.Dict"}}`), 0o644))
	require.NoError(t, afero.WriteFile(memFs, "/data/assets-bad.json",
		[]byte(`{"shards": {}, "loader": {"target": "shard.Dict"}}`), 0o644))
	_, err = Open(store, "file:///data/bad.json")
	require.ErrorIs(t, err, shard.ErrMalformed)
	assert.Contains(t, err.Error(), "train")

	_, err = Open(store, "file:///data/none.json")
	require.ErrorIs(t, err, shard.ErrNotFound)
}

func TestSplitOfWrongKind(t *testing.T) {
	store, _ := newStore(t)
	ds, err := Create(store, "/data", map[string][]shard.Shard{"train": nil}, nil, false)
	require.NoError(t, err)

	splits, err := ds.Root().GetShard("splits")
	require.NoError(t, err)
	require.NoError(t, splits.(*shard.Dict).AddShard("extra", shard.FromValue(1.0), false))

	_, err = ds.NumShards("extra")
	require.ErrorIs(t, err, shard.ErrMalformed)
	assert.Contains(t, err.Error(), "extra")

	_, err = ds.Shards("extra")
	require.ErrorIs(t, err, shard.ErrMalformed)
}
