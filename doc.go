/*
	Package shard provides persistent, lazily loaded handles to sharded data on a filesystem.

A shard graph is a tree of file shards (one payload file each) composed into
dicts (children by id) and tuples (children in order). Every persisted shard
has a URI pointing at a small JSON descriptor that records how to rebuild
it; payloads are only read when their data is requested.

# Overview

Three shard kinds implement the Shard interface:
  - FileShard - a payload file read through a codec chosen by extension
  - Dict - children by string id
  - Tuple - children in insertion order; persisted tuples only grow

Composite descriptors reference children by URI only, so a graph can share
leaves between several composites and a single leaf can be reloaded on its
own.

# Basic Usage

Creating a store:

	store, err := shard.New(shard.WithLogger(logger))
	if err != nil {
	    log.Fatalf("Failed to create store: %v", err)
	}

Creating shards:

	a, err := store.CreateFile(rows, "file:///data/train/0.json", "0.cbor", false)
	b, err := store.CreateFile(more, "file:///data/train/1.json", "1.cbor", false)
	train, err := store.CreateTuple([]shard.Shard{a, b}, "file:///data/train.json", false)

Loading them back:

	s, err := store.LoadFromURI("file:///data/train.json")
	if errors.Is(err, shard.ErrNotFound) {
	    // no descriptor at that URI
	}
	first, _ := s.(*shard.Tuple).Get(0)
	rows, err := first.Data(true)

# Caching

FileShard.Data(true) keeps the decoded payload until Clear; Data(false)
decodes a fresh value on every call. A Dict or Tuple is cached only when
every file shard below it is, and Clear on a composite clears every child.

# Descriptors

A descriptor is a JSON object:

	{
	  "kwargs": {"path": "0.cbor", "digest": "xxh64:9a6f3c..."},
	  "loader": {"target": "shard.FileShard"}
	}

Composites carry "shards" instead of "kwargs": an object of id to URI for
dicts and an array of URIs for tuples. The loader target is looked up in the
store's Resolver; register extra loaders there to add shard variants.

Payload and descriptor are each written through a temporary file and a
rename. The payload is written first; a payload created by a call whose
descriptor write failed is removed again.

# Codecs

Payload formats come from the codec package and are picked by the longest
registered dotted suffix of the payload path, for example "json.zst" before
"zst". Compressed and binary formats are gated behind capabilities that a
registry may leave disabled.

# Error Handling

Errors wrap one of the package sentinels; test for them with errors.Is:
  - ErrNotFound - missing descriptor, payload, id, split or asset
  - ErrConflict - an existing target without overwrite, or a taken id
  - ErrUnsupported - unknown extension, loader id, URI scheme or capability
  - ErrMalformed - an unusable descriptor or a descriptor cycle
  - ErrIsDir - a save target that is a directory
  - ErrOutOfRange - a Tuple or List index outside its bounds
  - ErrCorrupt - a payload that no longer matches its recorded digest
*/
package shard
