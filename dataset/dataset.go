// Package dataset groups shards into named splits plus named assets.
//
// A dataset is persisted as ordinary shards under one directory:
//
//	<dir>/dataset.json        dict {"splits": ..., "assets": ...}
//	<dir>/splits.json         dict of split name to tuple
//	<dir>/splits/<name>.json  tuple of the split's shards
//	<dir>/assets.json         dict of asset name to shard
//
// Split and asset shards must already be persisted; the dataset only
// writes the descriptors that tie them together. Create is not atomic: if
// it fails part way, split descriptors written before the failure stay
// behind without a root. Store.Orphans does not report them, since they
// are valid descriptors; remove the dataset directory or call Create again
// with overwrite.
package dataset

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gophersatwork/shard"
)

const (
	rootName   = "dataset.json"
	splitsName = "splits.json"
	splitsDir  = "splits"
	assetsName = "assets.json"

	splitsID = "splits"
	assetsID = "assets"
)

// Dataset is a view over a root Dict holding a Dict of split Tuples and a
// Dict of assets.
type Dataset struct {
	root   *shard.Dict
	splits *shard.Dict
	assets *shard.Dict
}

// Create writes a dataset under dir and returns it. Every split becomes a
// Tuple holding its shards in order; an empty split is allowed.
func Create(store *shard.Store, dir string, splits map[string][]shard.Shard, assets map[string]shard.Shard, overwrite bool) (*Dataset, error) {
	uri := func(parts ...string) (string, error) {
		return shard.URIFromPath(filepath.Join(append([]string{dir}, parts...)...))
	}

	splitURIs := make(map[string]shard.Shard, len(splits))
	for name, shards := range splits {
		if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
			return nil, fmt.Errorf("%w: invalid split name %q", shard.ErrMalformed, name)
		}
		u, err := uri(splitsDir, name+".json")
		if err != nil {
			return nil, err
		}
		t, err := store.CreateTuple(shards, u, overwrite)
		if err != nil {
			return nil, fmt.Errorf("split %q: %w", name, err)
		}
		splitURIs[name] = t
	}

	u, err := uri(splitsName)
	if err != nil {
		return nil, err
	}
	splitDict, err := store.CreateDict(splitURIs, u, overwrite)
	if err != nil {
		return nil, err
	}

	if u, err = uri(assetsName); err != nil {
		return nil, err
	}
	assetDict, err := store.CreateDict(assets, u, overwrite)
	if err != nil {
		return nil, err
	}

	if u, err = uri(rootName); err != nil {
		return nil, err
	}
	root, err := store.CreateDict(map[string]shard.Shard{splitsID: splitDict, assetsID: assetDict}, u, overwrite)
	if err != nil {
		return nil, err
	}

	store.Logger().Info("created dataset",
		zap.String("uri", u),
		zap.Int("splits", len(splits)),
		zap.Int("assets", len(assets)))
	return &Dataset{root: root, splits: splitDict, assets: assetDict}, nil
}

// Open loads the dataset whose root descriptor is at uri.
func Open(store *shard.Store, uri string) (*Dataset, error) {
	s, err := store.LoadFromURI(uri)
	if err != nil {
		return nil, err
	}
	return fromShard(s)
}

// fromShard checks that s has the dataset layout.
func fromShard(s shard.Shard) (*Dataset, error) {
	root, ok := s.(*shard.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: dataset %s is a %s, not a dict", shard.ErrMalformed, s.URI(), s.Kind())
	}
	splits, err := childDict(root, splitsID)
	if err != nil {
		return nil, err
	}
	assets, err := childDict(root, assetsID)
	if err != nil {
		return nil, err
	}
	for _, name := range splits.ShardIDs() {
		child, _ := splits.GetShard(name)
		if child.Kind() != shard.KindTuple {
			return nil, fmt.Errorf("%w: split %q of dataset %s is a %s, not a tuple",
				shard.ErrMalformed, name, root.URI(), child.Kind())
		}
	}
	return &Dataset{root: root, splits: splits, assets: assets}, nil
}

func childDict(root *shard.Dict, id string) (*shard.Dict, error) {
	child, err := root.GetShard(id)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s has no %s", shard.ErrMalformed, root.URI(), id)
	}
	d, ok := child.(*shard.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: %s of dataset %s is a %s, not a dict",
			shard.ErrMalformed, id, root.URI(), child.Kind())
	}
	return d, nil
}

// URI returns the URI of the root descriptor.
func (d *Dataset) URI() string {
	return d.root.URI()
}

// Root returns the root Dict.
func (d *Dataset) Root() *shard.Dict {
	return d.root
}

// Splits returns the split names, sorted.
func (d *Dataset) Splits() []string {
	return d.splits.ShardIDs()
}

// NumShards returns the number of shards in a split.
func (d *Dataset) NumShards(split string) (int, error) {
	t, err := d.split(split)
	if err != nil {
		return 0, err
	}
	return t.Len(), nil
}

// Shards returns the shards of a split in order.
func (d *Dataset) Shards(split string) ([]shard.Shard, error) {
	t, err := d.split(split)
	if err != nil {
		return nil, err
	}
	return t.Shards(), nil
}

// Extend appends shards to a split and rewrites its descriptor.
func (d *Dataset) Extend(store *shard.Store, split string, shards ...shard.Shard) error {
	t, err := d.split(split)
	if err != nil {
		return err
	}
	return store.Extend(t, shards...)
}

func (d *Dataset) split(name string) (*shard.Tuple, error) {
	s, err := d.splits.GetShard(name)
	if err != nil {
		return nil, fmt.Errorf("%w: split %q in dataset %s", shard.ErrNotFound, name, d.URI())
	}
	t, ok := s.(*shard.Tuple)
	if !ok {
		return nil, fmt.Errorf("%w: split %q of dataset %s is a %s, not a tuple",
			shard.ErrMalformed, name, d.URI(), s.Kind())
	}
	return t, nil
}

// AssetNames returns the asset names, sorted.
func (d *Dataset) AssetNames() []string {
	return d.assets.ShardIDs()
}

// Asset returns the named asset shard.
func (d *Dataset) Asset(name string) (shard.Shard, error) {
	s, err := d.assets.GetShard(name)
	if err != nil {
		return nil, fmt.Errorf("%w: asset %q in dataset %s", shard.ErrNotFound, name, d.URI())
	}
	return s, nil
}

// IsCached reports whether every payload in the dataset is cached.
func (d *Dataset) IsCached() bool {
	return d.root.IsCached()
}

// Clear drops every cached payload in the dataset.
func (d *Dataset) Clear() {
	d.root.Clear()
}

// Equal reports whether d and other are structurally equal, payloads
// included.
func (d *Dataset) Equal(other *Dataset, equalNaN bool) (bool, error) {
	return shard.Equal(d.root, other.root, equalNaN)
}
