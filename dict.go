package shard

import (
	"fmt"
	"sort"
)

// Dict is a composite shard holding children by id.
//
// A Dict owns its child handles; children never point back at it. It is
// not safe for concurrent mutation.
type Dict struct {
	uri    string
	shards map[string]Shard
}

// NewDict returns an in-memory Dict over a copy of shards. Nil children
// are rejected with ErrMalformed.
func NewDict(shards map[string]Shard) (*Dict, error) {
	d := &Dict{shards: make(map[string]Shard, len(shards))}
	var errs []error
	for id, s := range shards {
		if s == nil {
			errs = append(errs, fmt.Errorf("%w: shard %q is nil", ErrMalformed, id))
			continue
		}
		d.shards[id] = s
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}
	return d, nil
}

// URI implements Shard.
func (d *Dict) URI() string {
	return d.uri
}

// Kind implements Shard.
func (d *Dict) Kind() Kind {
	return KindDict
}

// GetShard returns the child with the given id.
func (d *Dict) GetShard(id string) (Shard, error) {
	s, ok := d.shards[id]
	if !ok {
		return nil, fmt.Errorf("%w: shard %q in %s", ErrNotFound, id, d.label())
	}
	return s, nil
}

// HasShard reports whether a child with the given id exists.
func (d *Dict) HasShard(id string) bool {
	_, ok := d.shards[id]
	return ok
}

// AddShard adds a child. An existing id is only replaced when replaceOK is
// set; otherwise ErrConflict is returned.
//
// The change is in memory only; use Store.Persist to rewrite the
// descriptor.
func (d *Dict) AddShard(id string, s Shard, replaceOK bool) error {
	if s == nil {
		return fmt.Errorf("%w: shard %q is nil", ErrMalformed, id)
	}
	if _, ok := d.shards[id]; ok && !replaceOK {
		return fmt.Errorf("%w: shard %q already exists in %s", ErrConflict, id, d.label())
	}
	d.shards[id] = s
	return nil
}

// RemoveShard removes a child.
func (d *Dict) RemoveShard(id string) error {
	if _, ok := d.shards[id]; !ok {
		return fmt.Errorf("%w: shard %q in %s", ErrNotFound, id, d.label())
	}
	delete(d.shards, id)
	return nil
}

// ShardIDs returns the child ids in sorted order.
func (d *Dict) ShardIDs() []string {
	ids := make([]string, 0, len(d.shards))
	for id := range d.shards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of children.
func (d *Dict) Len() int {
	return len(d.shards)
}

// Shards returns a snapshot of the child handles. Children are not loaded.
func (d *Dict) Shards() map[string]Shard {
	out := make(map[string]Shard, len(d.shards))
	for id, s := range d.shards {
		out[id] = s
	}
	return out
}

// Data returns Shards() as a map[string]Shard.
func (d *Dict) Data(bool) (any, error) {
	return d.Shards(), nil
}

// IsCached reports whether every child is cached.
func (d *Dict) IsCached() bool {
	for _, s := range d.shards {
		if !s.IsCached() {
			return false
		}
	}
	return true
}

// Clear clears every child.
func (d *Dict) Clear() {
	for _, s := range d.shards {
		s.Clear()
	}
}

// Equal reports whether d and other are structurally equal.
func (d *Dict) Equal(other Shard, equalNaN bool) (bool, error) {
	return Equal(d, other, equalNaN)
}

func (d *Dict) label() string {
	if d.uri != "" {
		return d.uri
	}
	return "dict"
}
