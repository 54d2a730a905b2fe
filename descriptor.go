package shard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"

	"github.com/gophersatwork/shard/codec"
)

// Loader ids of the built-in shard variants.
const (
	LoaderFile  = "shard.FileShard"
	LoaderDict  = "shard.Dict"
	LoaderTuple = "shard.Tuple"
)

// LoaderRef is the "loader" record of a descriptor: the id of the loader
// to resolve plus any loader parameters, stored inline next to "target".
type LoaderRef struct {
	Target string
	Params map[string]any
}

// MarshalJSON implements json.Marshaler.
func (l LoaderRef) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(l.Params)+1)
	for k, v := range l.Params {
		m[k] = v
	}
	m["target"] = l.Target
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LoaderRef) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	target, _ := m["target"].(string)
	delete(m, "target")
	l.Target = target
	l.Params = nil
	if len(m) > 0 {
		l.Params = m
	}
	return nil
}

// Descriptor is the record persisted at a shard URI. Leaves carry Kwargs;
// composites carry child URIs in Keyed (dicts) or Ordered (tuples).
// Children are only ever referenced by URI, never inlined.
type Descriptor struct {
	Kwargs  map[string]any
	Keyed   map[string]string
	Ordered []string
	Loader  LoaderRef
}

type descriptorJSON struct {
	Kwargs map[string]any  `json:"kwargs,omitempty"`
	Shards json.RawMessage `json:"shards,omitempty"`
	Loader LoaderRef       `json:"loader"`
}

// MarshalJSON implements json.Marshaler.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	out := descriptorJSON{Kwargs: d.Kwargs, Loader: d.Loader}

	var err error
	switch {
	case d.Keyed != nil && d.Ordered != nil:
		return nil, fmt.Errorf("%w: descriptor has both keyed and ordered shards", ErrMalformed)
	case d.Keyed != nil:
		out.Shards, err = json.Marshal(d.Keyed)
	case d.Ordered != nil:
		out.Shards, err = json.Marshal(d.Ordered)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var in descriptorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = Descriptor{Kwargs: in.Kwargs, Loader: in.Loader}

	shards := bytes.TrimSpace(in.Shards)
	if len(shards) == 0 || bytes.Equal(shards, []byte("null")) {
		return nil
	}
	switch shards[0] {
	case '{':
		d.Keyed = map[string]string{}
		return json.Unmarshal(shards, &d.Keyed)
	case '[':
		d.Ordered = []string{}
		return json.Unmarshal(shards, &d.Ordered)
	default:
		return fmt.Errorf("shards must be an object or an array")
	}
}

// Validate checks the fields every descriptor needs.
func (d *Descriptor) Validate() error {
	if d.Loader.Target == "" {
		return fmt.Errorf("%w: descriptor has no loader target", ErrMalformed)
	}
	return nil
}

// StringKwarg returns a required string constructor parameter.
func (d *Descriptor) StringKwarg(name string) (string, error) {
	v, ok := d.Kwargs[name]
	if !ok {
		return "", fmt.Errorf("%w: descriptor kwargs missing %q", ErrMalformed, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: descriptor kwarg %q is %T, not a string", ErrMalformed, name, v)
	}
	return s, nil
}

// DescribeFile returns the descriptor that rebuilds f.
func DescribeFile(f *FileShard) (Descriptor, error) {
	if f.loader == nil {
		return Descriptor{}, fmt.Errorf("%w: in-memory shard has no payload to describe", ErrUnsupported)
	}
	kwargs := map[string]any{"path": f.recorded}
	if f.digest != "" {
		kwargs["digest"] = f.digest
	}
	return Descriptor{Kwargs: kwargs, Loader: LoaderRef{Target: LoaderFile}}, nil
}

// DescribeDict returns the descriptor that rebuilds d. Every child must
// have a URI.
func DescribeDict(d *Dict) (Descriptor, error) {
	keyed := make(map[string]string, len(d.shards))
	var errs []error
	for _, id := range d.ShardIDs() {
		uri := d.shards[id].URI()
		if uri == "" {
			errs = append(errs, fmt.Errorf("%w: shard %q has no URI", ErrMalformed, id))
			continue
		}
		keyed[id] = uri
	}
	if err := newValidationError(errs); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Keyed: keyed, Loader: LoaderRef{Target: LoaderDict}}, nil
}

// DescribeTuple returns the descriptor that rebuilds t. Every child must
// have a URI.
func DescribeTuple(t *Tuple) (Descriptor, error) {
	ordered := make([]string, 0, len(t.shards))
	var errs []error
	for i, s := range t.shards {
		if s.URI() == "" {
			errs = append(errs, fmt.Errorf("%w: shard %d has no URI", ErrMalformed, i))
			continue
		}
		ordered = append(ordered, s.URI())
	}
	if err := newValidationError(errs); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Ordered: ordered, Loader: LoaderRef{Target: LoaderTuple}}, nil
}

// describe dispatches to the Describe function of a built-in variant.
func describe(s Shard) (Descriptor, error) {
	switch t := s.(type) {
	case *FileShard:
		return DescribeFile(t)
	case *Dict:
		return DescribeDict(t)
	case *Tuple:
		return DescribeTuple(t)
	default:
		return Descriptor{}, fmt.Errorf("%w: cannot describe %T", ErrUnsupported, s)
	}
}

// ReadDescriptor reads and validates the descriptor at uri. Comments and
// trailing commas are tolerated so hand-edited descriptors still load.
func (s *Store) ReadDescriptor(uri string) (*Descriptor, error) {
	path, err := PathFromURI(uri)
	if err != nil {
		return nil, err
	}

	data, err := codec.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", uri, err)
	}

	var d Descriptor
	if err := json.Unmarshal(jsonc.ToJSON(data), &d); err != nil {
		return nil, fmt.Errorf("%w: descriptor %s: %v", ErrMalformed, uri, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", uri, err)
	}
	return &d, nil
}

// writeDescriptor saves d at path through the same temp-then-rename write
// as payloads.
func (s *Store) writeDescriptor(path string, d Descriptor, overwrite bool) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor for %s: %w", path, err)
	}
	if err := codec.WriteFile(s.fs, path, data, overwrite); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

// payloadPath resolves a payload path recorded in a descriptor. Relative
// paths are relative to the directory holding the descriptor.
func payloadPath(descriptorPath, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(filepath.Dir(descriptorPath), path)
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
