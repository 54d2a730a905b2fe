package shard

import (
	"fmt"
	"sort"
)

// Mapping is a plain collection of shards by id, used to assemble the
// children of a Dict before it is created. It has no URI and is never
// persisted itself.
type Mapping struct {
	shards map[string]Shard
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{shards: make(map[string]Shard)}
}

// Add adds s under id. An existing id is only replaced when replaceOK is
// set.
func (m *Mapping) Add(id string, s Shard, replaceOK bool) error {
	if s == nil {
		return fmt.Errorf("%w: shard %q is nil", ErrMalformed, id)
	}
	if _, ok := m.shards[id]; ok && !replaceOK {
		return fmt.Errorf("%w: shard %q already in mapping", ErrConflict, id)
	}
	m.shards[id] = s
	return nil
}

// Remove deletes id.
func (m *Mapping) Remove(id string) error {
	_, err := m.Pop(id)
	return err
}

// Pop deletes id and returns the shard it held.
func (m *Mapping) Pop(id string) (Shard, error) {
	s, ok := m.shards[id]
	if !ok {
		return nil, fmt.Errorf("%w: shard %q in mapping", ErrNotFound, id)
	}
	delete(m.shards, id)
	return s, nil
}

// Get returns the shard under id.
func (m *Mapping) Get(id string) (Shard, error) {
	s, ok := m.shards[id]
	if !ok {
		return nil, fmt.Errorf("%w: shard %q in mapping", ErrNotFound, id)
	}
	return s, nil
}

// Has reports whether id is present.
func (m *Mapping) Has(id string) bool {
	_, ok := m.shards[id]
	return ok
}

// IDs returns the ids in sorted order.
func (m *Mapping) IDs() []string {
	ids := make([]string, 0, len(m.shards))
	for id := range m.shards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of shards.
func (m *Mapping) Len() int {
	return len(m.shards)
}

// Data returns a copy of the collection.
func (m *Mapping) Data() map[string]Shard {
	out := make(map[string]Shard, len(m.shards))
	for id, s := range m.shards {
		out[id] = s
	}
	return out
}

// List is a plain ordered collection of shards, used to assemble the
// children of a Tuple before it is created.
type List struct {
	shards []Shard
}

// NewList returns a List holding shards in order.
func NewList(shards ...Shard) *List {
	return &List{shards: append([]Shard(nil), shards...)}
}

// Append adds shards at the end.
func (l *List) Append(shards ...Shard) error {
	for i, s := range shards {
		if s == nil {
			return fmt.Errorf("%w: shard %d is nil", ErrMalformed, len(l.shards)+i)
		}
	}
	l.shards = append(l.shards, shards...)
	return nil
}

// Insert places s at index i, shifting later shards. i may equal Len().
func (l *List) Insert(i int, s Shard) error {
	if s == nil {
		return fmt.Errorf("%w: shard %d is nil", ErrMalformed, i)
	}
	if i < 0 || i > len(l.shards) {
		return fmt.Errorf("%w: insert at %d, list has %d shards", ErrOutOfRange, i, len(l.shards))
	}
	l.shards = append(l.shards, nil)
	copy(l.shards[i+1:], l.shards[i:])
	l.shards[i] = s
	return nil
}

// Remove deletes the shard at index i.
func (l *List) Remove(i int) error {
	_, err := l.Pop(i)
	return err
}

// Pop deletes and returns the shard at index i. Negative indexes count
// from the end, so Pop(-1) removes the last shard.
func (l *List) Pop(i int) (Shard, error) {
	j := i
	if j < 0 {
		j += len(l.shards)
	}
	if j < 0 || j >= len(l.shards) {
		return nil, fmt.Errorf("%w: index %d, list has %d shards", ErrOutOfRange, i, len(l.shards))
	}
	s := l.shards[j]
	l.shards = append(l.shards[:j], l.shards[j+1:]...)
	return s, nil
}

// Get returns the shard at index i.
func (l *List) Get(i int) (Shard, error) {
	if i < 0 || i >= len(l.shards) {
		return nil, fmt.Errorf("%w: index %d, list has %d shards", ErrOutOfRange, i, len(l.shards))
	}
	return l.shards[i], nil
}

// Len returns the number of shards.
func (l *List) Len() int {
	return len(l.shards)
}

// Data returns a copy of the shards in order.
func (l *List) Data() []Shard {
	return append([]Shard(nil), l.shards...)
}
