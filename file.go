package shard

import (
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"github.com/gophersatwork/shard/codec"
)

// FileShard is a leaf shard: one payload file read through a codec.
//
// The decoded payload is cached only when Data is called with cache set.
// The cache slot is guarded by a mutex, so a FileShard may be shared
// between goroutines.
type FileShard struct {
	uri      string
	path     string
	recorded string // path as written in the descriptor
	ext      string
	digest   string
	fs       afero.Fs
	loader   codec.Loader

	mu     sync.Mutex
	cached bool
	value  any
}

// FromValue returns an in-memory FileShard holding v. It has no URI and no
// payload file, so it is always cached and Clear keeps the value.
func FromValue(v any) *FileShard {
	return &FileShard{cached: true, value: v}
}

func newFileShard(fs afero.Fs, path, ext string, loader codec.Loader, uri, digest string) *FileShard {
	return &FileShard{
		uri:      uri,
		path:     path,
		recorded: path,
		ext:      ext,
		digest:   digest,
		fs:       fs,
		loader:   loader,
	}
}

// URI implements Shard.
func (f *FileShard) URI() string {
	return f.uri
}

// Kind implements Shard.
func (f *FileShard) Kind() Kind {
	return KindFile
}

// Path returns the payload path, or "" for an in-memory shard.
func (f *FileShard) Path() string {
	return f.path
}

// Extension returns the registry extension the payload codec was found
// under.
func (f *FileShard) Extension() string {
	return f.ext
}

// Digest returns the "<algo>:<hex>" payload digest recorded when the shard
// was created, or "" if none was recorded.
func (f *FileShard) Digest() string {
	return f.digest
}

// Data returns the payload. A cached value is always returned as is.
// Otherwise the payload is loaded through the codec; with cache set the
// loaded value is stored and returned by every later call until Clear.
// Without cache every call returns a freshly decoded value, so changes made
// to it are not seen by later calls.
func (f *FileShard) Data(cache bool) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached {
		return f.value, nil
	}

	v, err := f.loader.Load(f.fs, f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load shard %s: %w", f.label(), err)
	}
	if cache {
		f.value = v
		f.cached = true
	}
	return v, nil
}

// IsCached implements Shard.
func (f *FileShard) IsCached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cached
}

// Clear drops the cached payload. In-memory shards keep their value, since
// there is nothing to reload it from.
func (f *FileShard) Clear() {
	if f.loader == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached = false
	f.value = nil
}

// Equal reports whether f and other are structurally equal. Both payloads
// are fully materialized, which is expensive for large shards.
func (f *FileShard) Equal(other Shard, equalNaN bool) (bool, error) {
	return Equal(f, other, equalNaN)
}

// Verify rehashes the payload and compares it with the recorded digest.
// It returns ErrCorrupt on mismatch and does nothing for shards without a
// recorded digest.
func (f *FileShard) Verify() error {
	if f.digest == "" || f.loader == nil {
		return nil
	}

	algo, _, err := splitDigest(f.digest)
	if err != nil {
		return err
	}
	got, err := fileDigest(f.fs, f.path, algo)
	if err != nil {
		return err
	}
	if got != f.digest {
		return fmt.Errorf("%w: %s: recorded %s, found %s", ErrCorrupt, f.path, f.digest, got)
	}
	return nil
}

// Size returns the payload size in bytes.
func (f *FileShard) Size() (int64, error) {
	if f.loader == nil {
		return 0, nil
	}
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", f.path, err)
	}
	return info.Size(), nil
}

// label names the shard in error messages.
func (f *FileShard) label() string {
	if f.uri != "" {
		return f.uri
	}
	return f.path
}

// DataAs returns s.Data(cache) asserted to T.
func DataAs[T any](s Shard, cache bool) (T, error) {
	var zero T
	v, err := s.Data(cache)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: shard %s holds %T, not %T", ErrUnsupported, s.URI(), v, zero)
	}
	return t, nil
}
