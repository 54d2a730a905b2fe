package shard

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gophersatwork/shard/codec"
)

// WithFs sets a custom filesystem for the store.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	store, err := shard.New(shard.WithFs(afero.NewMemMapFs()))
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithRegistry sets the codec registry. The default enables every
// built-in codec and capability.
func WithRegistry(r *codec.Registry) Option {
	return func(s *Store) {
		s.registry = r
	}
}

// WithResolver sets the loader resolver, typically one with extra loaders
// registered on top of NewResolver.
func WithResolver(r *Resolver) Option {
	return func(s *Store) {
		s.resolver = r
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDigest sets the algorithm used to digest payloads on creation.
// An empty name disables digests. New fails for unknown names.
//
// Note: changing the algorithm does not invalidate existing descriptors;
// each one records the algorithm it was written with.
func WithDigest(name string) Option {
	return func(s *Store) {
		s.digest = name
	}
}
