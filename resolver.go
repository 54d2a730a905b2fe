package shard

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ShardLoader rebuilds a shard from its descriptor.
type ShardLoader interface {
	LoadShard(r *Resolution, uri string, d *Descriptor) (Shard, error)
}

// LoaderFunc adapts a function to the ShardLoader interface.
type LoaderFunc func(r *Resolution, uri string, d *Descriptor) (Shard, error)

// LoadShard implements ShardLoader.
func (f LoaderFunc) LoadShard(r *Resolution, uri string, d *Descriptor) (Shard, error) {
	return f(r, uri, d)
}

// Resolver maps the stable loader ids recorded in descriptors to loaders.
// Ids are registered explicitly; nothing is looked up by reflection.
// It is safe for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	loaders map[string]ShardLoader
}

// NewResolver returns a resolver with the built-in FileShard, Dict and
// Tuple loaders registered.
func NewResolver() *Resolver {
	r := &Resolver{loaders: make(map[string]ShardLoader)}
	r.loaders[LoaderFile] = LoaderFunc(loadFileShard)
	r.loaders[LoaderDict] = LoaderFunc(loadDict)
	r.loaders[LoaderTuple] = LoaderFunc(loadTuple)
	return r
}

// Register adds a loader under id. An existing id is only replaced when
// existOK is set.
func (r *Resolver) Register(id string, l ShardLoader, existOK bool) error {
	if id == "" {
		return fmt.Errorf("%w: empty loader id", ErrMalformed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loaders[id]; ok && !existOK {
		return fmt.Errorf("%w: loader %q already registered", ErrConflict, id)
	}
	r.loaders[id] = l
	return nil
}

// Lookup returns the loader registered under id.
func (r *Resolver) Lookup(id string) (ShardLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.loaders[id]
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for %q", ErrUnsupported, id)
	}
	return l, nil
}

// IDs returns the registered loader ids, sorted.
func (r *Resolver) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.loaders))
	for id := range r.loaders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolution carries one LoadFromURI call through nested loaders. It
// tracks the URIs being loaded so a descriptor that refers back to one of
// its ancestors fails instead of recursing forever.
type Resolution struct {
	store *Store
	stack []string
}

// Store returns the store the resolution reads from.
func (r *Resolution) Store() *Store {
	return r.store
}

// Load resolves a child URI within the current resolution.
func (r *Resolution) Load(uri string) (Shard, error) {
	for _, seen := range r.stack {
		if seen == uri {
			return nil, fmt.Errorf("%w: descriptor cycle through %s", ErrMalformed, uri)
		}
	}

	d, err := r.store.ReadDescriptor(uri)
	if err != nil {
		return nil, err
	}
	l, err := r.store.resolver.Lookup(d.Loader.Target)
	if err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", uri, err)
	}

	r.store.logger.Debug("resolving shard",
		zap.String("uri", uri),
		zap.String("loader", d.Loader.Target),
		zap.Int("depth", len(r.stack)))
	r.stack = append(r.stack, uri)
	s, err := l.LoadShard(r, uri, d)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	return s, nil
}

func loadFileShard(r *Resolution, uri string, d *Descriptor) (Shard, error) {
	p, err := d.StringKwarg("path")
	if err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", uri, err)
	}
	var digest string
	if _, ok := d.Kwargs["digest"]; ok {
		if digest, err = d.StringKwarg("digest"); err != nil {
			return nil, fmt.Errorf("descriptor %s: %w", uri, err)
		}
	}

	descPath, err := PathFromURI(uri)
	if err != nil {
		return nil, err
	}

	s := r.Store()
	full := payloadPath(descPath, p)
	loader, ext, err := s.registry.LoaderFor(full)
	if err != nil {
		return nil, fmt.Errorf("shard %s: %w", uri, err)
	}
	f := newFileShard(s.fs, full, ext, loader, uri, digest)
	f.recorded = p
	return f, nil
}

func loadDict(r *Resolution, uri string, d *Descriptor) (Shard, error) {
	if d.Keyed == nil {
		return nil, fmt.Errorf("%w: dict descriptor %s has no keyed shards", ErrMalformed, uri)
	}
	dict := &Dict{uri: uri, shards: make(map[string]Shard, len(d.Keyed))}
	for _, id := range sortedKeys(d.Keyed) {
		child, err := r.Load(d.Keyed[id])
		if err != nil {
			return nil, fmt.Errorf("shard %q of %s: %w", id, uri, err)
		}
		dict.shards[id] = child
	}
	return dict, nil
}

func loadTuple(r *Resolution, uri string, d *Descriptor) (Shard, error) {
	if d.Ordered == nil {
		return nil, fmt.Errorf("%w: tuple descriptor %s has no ordered shards", ErrMalformed, uri)
	}
	tuple := &Tuple{uri: uri, shards: make([]Shard, 0, len(d.Ordered))}
	for i, childURI := range d.Ordered {
		child, err := r.Load(childURI)
		if err != nil {
			return nil, fmt.Errorf("shard %d of %s: %w", i, uri, err)
		}
		tuple.shards = append(tuple.shards, child)
	}
	return tuple, nil
}
