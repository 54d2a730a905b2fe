package shard

import (
	"slices"
	"strings"
)

// SortByURI returns a copy of shards ordered by URI string. The sort is
// stable; with reverse the order is descending and shards with equal URIs
// keep their input order.
func SortByURI(shards []Shard, reverse bool) []Shard {
	out := append([]Shard(nil), shards...)
	slices.SortStableFunc(out, func(a, b Shard) int {
		if reverse {
			return strings.Compare(b.URI(), a.URI())
		}
		return strings.Compare(a.URI(), b.URI())
	})
	return out
}

// IsSortedByURI reports whether shards are in ascending URI order.
func IsSortedByURI(shards []Shard) bool {
	return slices.IsSortedFunc(shards, func(a, b Shard) int {
		return strings.Compare(a.URI(), b.URI())
	})
}
