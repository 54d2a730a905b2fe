package shard

import "fmt"

// Kind identifies a Shard variant.
type Kind int

const (
	KindFile Kind = iota + 1
	KindDict
	KindTuple
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDict:
		return "dict"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shard is an addressable, lazily materialized unit of data.
//
// A shard with a non-empty URI has a descriptor at that location that is
// enough, on its own, to rebuild an equivalent shard with Store.LoadFromURI.
type Shard interface {
	// URI returns the descriptor location, or "" for a shard that was
	// never persisted.
	URI() string

	// Kind returns the variant.
	Kind() Kind

	// Data returns the shard content. For a FileShard this is the decoded
	// payload, loaded from storage unless cached; cache controls whether a
	// freshly loaded value is kept. Composites return a snapshot of their
	// child handles (map[string]Shard or []Shard) and ignore cache.
	Data(cache bool) (any, error)

	// IsCached reports whether Data can be served without storage I/O.
	IsCached() bool

	// Clear drops cached payloads. It is idempotent.
	Clear()
}
