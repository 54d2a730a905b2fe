/*
Package codec maps file extensions to the loaders and savers that read and
write shard payloads.

A Registry is built explicitly and passed to whoever needs it. There is no
process-wide registry that is populated behind the caller's back:

	reg := codec.Default()
	loader, err := reg.FindLoader("json")

Extensions are the full dotted suffix of a file name, so "train.json.zst" is
looked up as "json.zst" before falling back to "zst":

	codec.Extension("/data/train.json.zst") // "json.zst"

# Capabilities

Some codecs depend on optional features such as a compression algorithm.
Those codecs name the capabilities they require, and a registry only serves
them when every required capability was enabled when the registry was built:

	reg := codec.NewRegistry(codec.CapabilityCBOR) // zstd not enabled
	_, err := reg.FindLoader("json.zst")
	// errors.Is(err, codec.ErrUnsupported), message names "zstd"

# Writing

Every built-in saver goes through WriteFile, which writes to a temporary
file in the target directory and renames it into place. A failed save never
leaves a partially written payload behind.
*/
package codec
