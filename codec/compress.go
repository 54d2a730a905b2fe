package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is a whole-payload byte transform applied on top of another
// format.
type Compression struct {
	Name       string
	Capability Capability
	Compress   func(data []byte) ([]byte, error)
	Decompress func(data []byte) ([]byte, error)
}

// Gzip compresses with gzip at the default level.
var Gzip = Compression{
	Name:       "gz",
	Capability: CapabilityGzip,
	Compress:   compressGzip,
	Decompress: decompressGzip,
}

// Zstd compresses with zstd at the default level.
var Zstd = Compression{
	Name:       "zst",
	Capability: CapabilityZstd,
	Compress:   compressZstd,
	Decompress: decompressZstd,
}

// LZ4 compresses with the LZ4 frame format.
var LZ4 = Compression{
	Name:       "lz4",
	Capability: CapabilityLZ4,
	Compress:   compressLZ4,
	Decompress: decompressLZ4,
}

// Snappy compresses with the snappy block format.
var Snappy = Compression{
	Name:       "sz",
	Capability: CapabilitySnappy,
	Compress: func(data []byte) ([]byte, error) {
		return snappy.Encode(nil, data), nil
	},
	Decompress: func(data []byte) ([]byte, error) {
		return snappy.Decode(nil, data)
	},
}

// Compressed wraps a codec built with New (or one of the built-ins) so its
// bytes pass through c. The result requires c.Capability in addition to the
// capabilities of the inner codec.
func Compressed(inner Codec, c Compression) (Codec, error) {
	f, ok := inner.(*format)
	if !ok {
		return nil, fmt.Errorf("%w: cannot compress codec %T", ErrUnsupported, inner)
	}
	requires := append(append([]Capability(nil), f.requires...), c.Capability)
	return &format{
		name:     f.name + "." + c.Name,
		requires: requires,
		marshal: func(v any) ([]byte, error) {
			data, err := f.marshal(v)
			if err != nil {
				return nil, err
			}
			out, err := c.Compress(data)
			if err != nil {
				return nil, fmt.Errorf("%s compress: %w", c.Name, err)
			}
			return out, nil
		},
		unmarshal: func(data []byte) (any, error) {
			raw, err := c.Decompress(data)
			if err != nil {
				return nil, fmt.Errorf("%s decompress: %w", c.Name, err)
			}
			return f.unmarshal(raw)
		},
	}, nil
}

func mustCompressed(inner Codec, c Compression) Codec {
	out, err := Compressed(inner, c)
	if err != nil {
		panic("codec: " + err.Error())
	}
	return out
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
