package codec

import (
	"math"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRoundTrip(t *testing.T) {
	payload := map[string]any{
		"name":   "train",
		"values": []any{1.5, 2.5, 3.5},
		"nested": map[string]any{"ok": true},
	}

	for _, ext := range []string{"json", "json.gz", "json.zst", "json.sz", "cbor", "cbor.zst", "cbor.lz4"} {
		t.Run(ext, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			r := Default()
			path := "/payloads/shard." + ext

			s, _, err := r.SaverFor(path)
			require.NoError(t, err)
			require.NoError(t, s.Save(fs, path, payload, false))

			l, _, err := r.LoaderFor(path)
			require.NoError(t, err)
			got, err := l.Load(fs, path)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := YAML()

	require.NoError(t, c.Save(fs, "/meta.yaml", map[string]any{"classes": []any{"cat", "dog"}}, false))

	got, err := c.Load(fs, "/meta.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"classes": []any{"cat", "dog"}}, got)
}

func TestArrays(t *testing.T) {
	t.Run("ordered round trip keeps NaN", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		c := Arrays()
		in := OrderedArrays(
			Array{Shape: []int{2, 2}, Data: []float64{1, 2, 3, math.NaN()}},
			Array{Shape: []int{3}, Data: []float64{4, 5, 6}},
		)
		require.NoError(t, c.Save(fs, "/x.arr", in, false))

		got, err := c.Load(fs, "/x.arr")
		require.NoError(t, err)
		p := got.(ArrayPayload)
		assert.Equal(t, Ordered, p.Layout)
		require.Len(t, p.Ordered, 2)
		assert.True(t, math.IsNaN(p.Ordered[0].Data[3]))
		assert.Equal(t, []float64{4, 5, 6}, p.Ordered[1].Data)
	})

	t.Run("keyed round trip through lz4", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		r := Default()
		in := KeyedArrays(map[string]Array{"weights": {Shape: []int{2}, Data: []float64{0.5, -1}}})

		s, _, err := r.SaverFor("/w.arr.lz4")
		require.NoError(t, err)
		require.NoError(t, s.Save(fs, "/w.arr.lz4", &in, false))

		l, _, err := r.LoaderFor("/w.arr.lz4")
		require.NoError(t, err)
		got, err := l.Load(fs, "/w.arr.lz4")
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("rejects untagged payloads", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		err := Arrays().Save(fs, "/x.arr", map[string]any{"a": []float64{1}}, false)
		require.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("rejects shape mismatch", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		err := Arrays().Save(fs, "/x.arr", OrderedArrays(Array{Shape: []int{3}, Data: []float64{1}}), false)
		require.ErrorIs(t, err, ErrMalformed)

		exists, _ := afero.Exists(fs, "/x.arr")
		assert.False(t, exists)
	})
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing payload", func(t *testing.T) {
		_, err := JSON().Load(afero.NewMemMapFs(), "/nope.json")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "/nope.json")
	})

	t.Run("garbage payload", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{not json"), 0o644))

		_, err := JSON().Load(fs, "/bad.json")
		require.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), "/bad.json")
	})

	t.Run("trailing data", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/two.json", []byte("[1] [2]"), 0o644))

		_, err := JSON().Load(fs, "/two.json")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("corrupt compressed payload", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/bad.json.gz", []byte("plain"), 0o644))

		l, err := Default().FindLoader("json.gz")
		require.NoError(t, err)
		_, err = l.Load(fs, "/bad.json.gz")
		require.ErrorIs(t, err, ErrMalformed)
	})
}
