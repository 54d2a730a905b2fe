package shard

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Equal reports whether a and b are structurally equal.
//
// Shards of different kinds are never equal, even if their payloads
// match. Otherwise the URIs must match, and then:
//   - file shards compare their payloads, loading both if not cached;
//   - dicts compare id sets and every child recursively;
//   - tuples compare lengths and every child in order.
//
// With equalNaN, NaN payload values compare equal to each other at every
// depth.
func Equal(a, b Shard, equalNaN bool) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	if sameShard(a, b) {
		return true, nil
	}
	if a.Kind() != b.Kind() || a.URI() != b.URI() {
		return false, nil
	}

	switch a.Kind() {
	case KindFile:
		return equalFiles(a, b, equalNaN)
	case KindDict:
		return equalDicts(a, b, equalNaN)
	case KindTuple:
		return equalTuples(a, b, equalNaN)
	default:
		return false, fmt.Errorf("%w: cannot compare shards of kind %s", ErrUnsupported, a.Kind())
	}
}

// sameShard reports whether a and b are the same pointer.
func sameShard(a, b Shard) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Pointer || vb.Kind() != reflect.Pointer {
		return false
	}
	return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}

func equalFiles(a, b Shard, equalNaN bool) (bool, error) {
	x, err := a.Data(false)
	if err != nil {
		return false, err
	}
	y, err := b.Data(false)
	if err != nil {
		return false, err
	}
	return EqualPayload(x, y, equalNaN), nil
}

func equalDicts(a, b Shard, equalNaN bool) (bool, error) {
	x, err := DataAs[map[string]Shard](a, false)
	if err != nil {
		return false, err
	}
	y, err := DataAs[map[string]Shard](b, false)
	if err != nil {
		return false, err
	}
	if len(x) != len(y) {
		return false, nil
	}
	for id, xs := range x {
		ys, ok := y[id]
		if !ok {
			return false, nil
		}
		eq, err := Equal(xs, ys, equalNaN)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func equalTuples(a, b Shard, equalNaN bool) (bool, error) {
	x, err := DataAs[[]Shard](a, false)
	if err != nil {
		return false, err
	}
	y, err := DataAs[[]Shard](b, false)
	if err != nil {
		return false, err
	}
	if len(x) != len(y) {
		return false, nil
	}
	for i := range x {
		eq, err := Equal(x[i], y[i], equalNaN)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// EqualPayload deep-compares two decoded payloads. Unexported struct
// fields are compared too. With equalNaN, NaN equals NaN.
func EqualPayload(x, y any, equalNaN bool) bool {
	opts := []cmp.Option{
		cmp.Exporter(func(reflect.Type) bool { return true }),
	}
	if equalNaN {
		opts = append(opts, cmpopts.EquateNaNs())
	}
	return cmp.Equal(x, y, opts...)
}
