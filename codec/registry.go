package codec

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Registry maps extensions to loaders and savers.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	savers  map[string]Saver
	enabled map[Capability]bool
}

// NewEmpty returns a registry with no codecs and the given capabilities
// enabled.
func NewEmpty(caps ...Capability) *Registry {
	r := &Registry{
		loaders: make(map[string]Loader),
		savers:  make(map[string]Saver),
		enabled: make(map[Capability]bool),
	}
	for _, c := range caps {
		r.enabled[c] = true
	}
	return r
}

// NewRegistry returns a registry holding every built-in codec. Codecs whose
// capabilities are not in caps stay registered but are refused by the
// Find methods with ErrUnsupported.
func NewRegistry(caps ...Capability) *Registry {
	r := NewEmpty(caps...)
	if err := r.RegisterMany(Builtins(), false); err != nil {
		panic("codec: registering built-in codecs: " + err.Error())
	}
	return r
}

// Default returns a registry with every built-in codec and every
// capability enabled.
func Default() *Registry {
	return NewRegistry(AllCapabilities()...)
}

// Builtins returns the built-in codecs keyed by extension.
func Builtins() map[string]Codec {
	jsonCodec := JSON()
	cborCodec := CBOR()
	arrCodec := Arrays()
	yamlCodec := YAML()
	return map[string]Codec{
		"json":     jsonCodec,
		"yaml":     yamlCodec,
		"yml":      yamlCodec,
		"cbor":     cborCodec,
		"arr":      arrCodec,
		"json.gz":  mustCompressed(jsonCodec, Gzip),
		"json.zst": mustCompressed(jsonCodec, Zstd),
		"json.sz":  mustCompressed(jsonCodec, Snappy),
		"cbor.zst": mustCompressed(cborCodec, Zstd),
		"cbor.lz4": mustCompressed(cborCodec, LZ4),
		"arr.lz4":  mustCompressed(arrCodec, LZ4),
	}
}

// Register adds c as both loader and saver for ext. It returns ErrConflict
// if either side is already registered and existOK is false.
func (r *Registry) Register(ext string, c Codec, existOK bool) error {
	ext = normalize(ext)
	if ext == "" {
		return fmt.Errorf("%w: empty extension", ErrMalformed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !existOK {
		_, hasLoader := r.loaders[ext]
		_, hasSaver := r.savers[ext]
		if hasLoader || hasSaver {
			return fmt.Errorf("%w: codec for extension %q already registered", ErrConflict, ext)
		}
	}
	r.loaders[ext] = c
	r.savers[ext] = c
	return nil
}

// RegisterLoader adds a loader for ext.
func (r *Registry) RegisterLoader(ext string, l Loader, existOK bool) error {
	ext = normalize(ext)
	if ext == "" {
		return fmt.Errorf("%w: empty extension", ErrMalformed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loaders[ext]; ok && !existOK {
		return fmt.Errorf("%w: loader for extension %q already registered", ErrConflict, ext)
	}
	r.loaders[ext] = l
	return nil
}

// RegisterSaver adds a saver for ext.
func (r *Registry) RegisterSaver(ext string, s Saver, existOK bool) error {
	ext = normalize(ext)
	if ext == "" {
		return fmt.Errorf("%w: empty extension", ErrMalformed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.savers[ext]; ok && !existOK {
		return fmt.Errorf("%w: saver for extension %q already registered", ErrConflict, ext)
	}
	r.savers[ext] = s
	return nil
}

// RegisterMany registers each codec in extension order and stops at the
// first failure. Entries registered before the failure stay registered.
func (r *Registry) RegisterMany(codecs map[string]Codec, existOK bool) error {
	exts := make([]string, 0, len(codecs))
	for ext := range codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	for _, ext := range exts {
		if err := r.Register(ext, codecs[ext], existOK); err != nil {
			return err
		}
	}
	return nil
}

// FindLoader returns the loader registered for ext.
func (r *Registry) FindLoader(ext string) (Loader, error) {
	ext = normalize(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no loader for extension %q", ErrUnsupported, ext)
	}
	if err := r.checkLocked(ext, l); err != nil {
		return nil, err
	}
	return l, nil
}

// FindSaver returns the saver registered for ext.
func (r *Registry) FindSaver(ext string) (Saver, error) {
	ext = normalize(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.savers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no saver for extension %q", ErrUnsupported, ext)
	}
	if err := r.checkLocked(ext, s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoaderFor returns the loader for the file at path along with the
// extension it matched. The full dotted suffix is tried first, then each
// shorter suffix.
func (r *Registry) LoaderFor(path string) (Loader, string, error) {
	full := Extension(path)
	for _, ext := range candidates(full) {
		l, err := r.FindLoader(ext)
		if err == nil {
			return l, ext, nil
		}
		if r.hasLoader(ext) {
			// Registered but gated: report the capability, not a miss.
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w: no loader for extension %q of %s", ErrUnsupported, full, path)
}

// SaverFor returns the saver for the file at path along with the extension
// it matched.
func (r *Registry) SaverFor(path string) (Saver, string, error) {
	full := Extension(path)
	for _, ext := range candidates(full) {
		s, err := r.FindSaver(ext)
		if err == nil {
			return s, ext, nil
		}
		if r.hasSaver(ext) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w: no saver for extension %q of %s", ErrUnsupported, full, path)
}

// Enable turns on capabilities after construction.
func (r *Registry) Enable(caps ...Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range caps {
		r.enabled[c] = true
	}
}

// Enabled reports whether a capability is enabled.
func (r *Registry) Enabled(c Capability) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[c]
}

// Capabilities returns the enabled capabilities in sorted order.
func (r *Registry) Capabilities() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make([]Capability, 0, len(r.enabled))
	for c, on := range r.enabled {
		if on {
			caps = append(caps, c)
		}
	}
	slices.Sort(caps)
	return caps
}

// Extensions returns every extension with a loader or a saver, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.loaders))
	for ext := range r.loaders {
		seen[ext] = true
	}
	for ext := range r.savers {
		seen[ext] = true
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func (r *Registry) hasLoader(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[ext]
	return ok
}

func (r *Registry) hasSaver(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.savers[ext]
	return ok
}

// checkLocked refuses gated codecs whose capabilities are not enabled.
func (r *Registry) checkLocked(ext string, v any) error {
	g, ok := v.(Gated)
	if !ok {
		return nil
	}
	var missing []string
	for _, c := range g.Requires() {
		if !r.enabled[c] {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: codec for extension %q requires capability %s, which is not enabled",
			ErrUnsupported, ext, strings.Join(missing, ", "))
	}
	return nil
}
