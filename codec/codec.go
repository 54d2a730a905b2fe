package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Loader reads a payload from a file.
// Implementations must be stateless and safe for concurrent use.
type Loader interface {
	Load(fs afero.Fs, path string) (any, error)
}

// Saver writes a payload to a file.
// Implementations must return an error wrapping ErrIsDir when path is a
// directory, and one wrapping ErrConflict when path exists and overwrite
// is false.
type Saver interface {
	Save(fs afero.Fs, path string, v any, overwrite bool) error
}

// Codec is a paired Loader and Saver for one on-disk representation.
type Codec interface {
	Loader
	Saver
}

// Capability names an optional feature a codec depends on.
type Capability string

const (
	CapabilityCBOR   Capability = "cbor"
	CapabilityGzip   Capability = "gzip"
	CapabilityZstd   Capability = "zstd"
	CapabilityLZ4    Capability = "lz4"
	CapabilitySnappy Capability = "snappy"
)

// AllCapabilities returns every capability compiled into this package.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityCBOR,
		CapabilityGzip,
		CapabilityZstd,
		CapabilityLZ4,
		CapabilitySnappy,
	}
}

// Gated is implemented by loaders and savers that need optional
// capabilities. A Registry refuses to hand out a Gated codec unless all of
// its capabilities are enabled.
type Gated interface {
	Requires() []Capability
}

// MarshalFunc encodes a payload to bytes.
type MarshalFunc func(v any) ([]byte, error)

// UnmarshalFunc decodes bytes into a payload.
type UnmarshalFunc func(data []byte) (any, error)

// format is a Codec built from a byte-level marshal/unmarshal pair.
type format struct {
	name      string
	requires  []Capability
	marshal   MarshalFunc
	unmarshal UnmarshalFunc
}

// New returns a Codec that reads and writes whole files through the given
// functions. Saving goes through WriteFile, so it inherits the directory,
// conflict and temp-then-rename behavior of the built-in codecs.
func New(name string, marshal MarshalFunc, unmarshal UnmarshalFunc, requires ...Capability) Codec {
	return &format{
		name:      name,
		requires:  requires,
		marshal:   marshal,
		unmarshal: unmarshal,
	}
}

// Load implements Loader.
func (f *format) Load(fs afero.Fs, path string) (any, error) {
	data, err := ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	v, err := f.unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload %s: %v", ErrMalformed, f.name, path, err)
	}
	return v, nil
}

// Save implements Saver.
func (f *format) Save(fs afero.Fs, path string, v any, overwrite bool) error {
	data, err := f.marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload for %s: %w", f.name, path, err)
	}
	return WriteFile(fs, path, data, overwrite)
}

// Requires implements Gated.
func (f *format) Requires() []Capability {
	return f.requires
}

// String returns the codec name.
func (f *format) String() string {
	return f.name
}

// Extension returns the full dotted suffix of the base name of path,
// without the leading dot. Leading dots of hidden files are ignored.
//
//	Extension("a/b.tar.gz")  // "tar.gz"
//	Extension("a/.cfg.yaml") // "yaml"
//	Extension("a/README")    // ""
func Extension(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	i := strings.IndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// candidates returns ext followed by each shorter dotted suffix of it.
func candidates(ext string) []string {
	var out []string
	for ext != "" {
		out = append(out, ext)
		i := strings.IndexByte(ext, '.')
		if i < 0 {
			break
		}
		ext = ext[i+1:]
	}
	return out
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
