package shard

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gophersatwork/shard/codec"
)

// Store reads and writes shard graphs. It bundles the filesystem, the
// codec registry and the loader resolver that every create and load call
// uses, so nothing is looked up in process-wide state.
type Store struct {
	fs       afero.Fs
	registry *codec.Registry
	resolver *Resolver
	logger   *zap.Logger
	digest   string
}

// Option defines a function that configures a Store.
type Option func(*Store)

// New creates a store. By default it uses the OS filesystem, a registry
// with every built-in codec enabled, the built-in loaders, a no-op logger
// and xxh64 payload digests.
func New(options ...Option) (*Store, error) {
	store := &Store{
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
		digest: DigestXXH64,
	}

	// Apply options
	for _, option := range options {
		option(store)
	}

	if store.registry == nil {
		store.registry = codec.Default()
	}
	if store.resolver == nil {
		store.resolver = NewResolver()
	}
	if store.digest != "" {
		if _, err := digestFunc(store.digest); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// OpenTemp creates a store over an in-memory filesystem for testing.
func OpenTemp(options ...Option) *Store {
	store, err := New(append([]Option{WithFs(afero.NewMemMapFs())}, options...)...)
	if err != nil {
		panic(fmt.Sprintf("failed to create temp store: %v", err))
	}
	return store
}

// Fs returns the filesystem the store reads and writes.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Registry returns the codec registry.
func (s *Store) Registry() *codec.Registry {
	return s.registry
}

// Resolver returns the loader resolver.
func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// Logger returns the store logger.
func (s *Store) Logger() *zap.Logger {
	return s.logger
}

// LoadFromURI rebuilds the shard whose descriptor is at uri. Composite
// children are loaded recursively; file payloads are not read until their
// data is requested.
func (s *Store) LoadFromURI(uri string) (Shard, error) {
	r := &Resolution{store: s}
	return r.Load(uri)
}

// OpenFile returns a FileShard for an existing payload at path, with the
// given URI (which may be empty). The codec is resolved now, so an unknown
// extension or a missing capability fails here rather than on first load.
func (s *Store) OpenFile(path, uri string) (*FileShard, error) {
	loader, ext, err := s.registry.LoaderFor(path)
	if err != nil {
		return nil, err
	}
	return newFileShard(s.fs, path, ext, loader, uri, ""), nil
}
