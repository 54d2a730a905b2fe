package shard

import "fmt"

// Tuple is a composite shard holding an ordered sequence of children.
// Once persisted it only grows, through Store.Extend.
type Tuple struct {
	uri    string
	shards []Shard
}

// NewTuple returns an in-memory Tuple over a copy of shards, in order.
// Nil children are rejected with ErrMalformed.
func NewTuple(shards ...Shard) (*Tuple, error) {
	var errs []error
	for i, s := range shards {
		if s == nil {
			errs = append(errs, fmt.Errorf("%w: shard %d is nil", ErrMalformed, i))
		}
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}
	return &Tuple{shards: append([]Shard(nil), shards...)}, nil
}

// URI implements Shard.
func (t *Tuple) URI() string {
	return t.uri
}

// Kind implements Shard.
func (t *Tuple) Kind() Kind {
	return KindTuple
}

// Get returns the child at index i.
func (t *Tuple) Get(i int) (Shard, error) {
	if i < 0 || i >= len(t.shards) {
		return nil, fmt.Errorf("%w: index %d, %s has %d shards", ErrOutOfRange, i, t.label(), len(t.shards))
	}
	return t.shards[i], nil
}

// Len returns the number of children.
func (t *Tuple) Len() int {
	return len(t.shards)
}

// Shards returns a snapshot of the child handles in order.
func (t *Tuple) Shards() []Shard {
	return append([]Shard(nil), t.shards...)
}

// Data returns Shards() as a []Shard.
func (t *Tuple) Data(bool) (any, error) {
	return t.Shards(), nil
}

// IsSortedByURI reports whether the children are in ascending URI order.
func (t *Tuple) IsSortedByURI() bool {
	return IsSortedByURI(t.shards)
}

// IsCached reports whether every child is cached.
func (t *Tuple) IsCached() bool {
	for _, s := range t.shards {
		if !s.IsCached() {
			return false
		}
	}
	return true
}

// Clear clears every child.
func (t *Tuple) Clear() {
	for _, s := range t.shards {
		s.Clear()
	}
}

// Equal reports whether t and other are structurally equal.
func (t *Tuple) Equal(other Shard, equalNaN bool) (bool, error) {
	return Equal(t, other, equalNaN)
}

func (t *Tuple) label() string {
	if t.uri != "" {
		return t.uri
	}
	return "tuple"
}
