package shard

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// Default size for the buffer used when hashing payloads
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for file I/O during hashing
var bufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// HashFunc defines a function that creates a new hash.Hash instance.
type HashFunc func() hash.Hash

// Digest algorithm names recorded in descriptors.
const (
	DigestXXH64  = "xxh64"
	DigestBLAKE3 = "blake3"
)

var digests = map[string]HashFunc{
	DigestXXH64:  func() hash.Hash { return xxhash.New() },
	DigestBLAKE3: func() hash.Hash { return blake3.New() },
}

// DigestAlgorithms returns the supported digest names, sorted.
func DigestAlgorithms() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func digestFunc(name string) (HashFunc, error) {
	fn, ok := digests[name]
	if !ok {
		return nil, fmt.Errorf("%w: digest algorithm %q", ErrUnsupported, name)
	}
	return fn, nil
}

// hashFile hashes the content from a reader using the provided hash function.
func hashFile(content io.Reader, h hash.Hash) error {
	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(h, content, buffer); err != nil {
		return fmt.Errorf("failed to copy content: %w", err)
	}
	return nil
}

// fileDigest returns "<algo>:<hex>" for the file at path.
func fileDigest(fs afero.Fs, path, algo string) (string, error) {
	fn, err := digestFunc(algo)
	if err != nil {
		return "", err
	}

	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := fn()
	if err := hashFile(f, h); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return algo + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// splitDigest splits "<algo>:<hex>" into its parts.
func splitDigest(digest string) (algo, sum string, err error) {
	algo, sum, ok := strings.Cut(digest, ":")
	if !ok || algo == "" || sum == "" {
		return "", "", fmt.Errorf("%w: digest %q is not <algo>:<hex>", ErrMalformed, digest)
	}
	return algo, sum, nil
}
