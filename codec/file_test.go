package codec

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, WriteFile(fs, "/a/b/c.json", []byte("1"), false))

		data, err := afero.ReadFile(fs, "/a/b/c.json")
		require.NoError(t, err)
		assert.Equal(t, "1", string(data))
	})

	t.Run("existing file without overwrite", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, WriteFile(fs, "/c.json", []byte("1"), false))

		err := WriteFile(fs, "/c.json", []byte("2"), false)
		require.ErrorIs(t, err, ErrConflict)
		assert.Contains(t, err.Error(), "/c.json")

		data, _ := afero.ReadFile(fs, "/c.json")
		assert.Equal(t, "1", string(data))
	})

	t.Run("existing file with overwrite", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, WriteFile(fs, "/c.json", []byte("1"), false))
		require.NoError(t, WriteFile(fs, "/c.json", []byte("2"), true))

		data, _ := afero.ReadFile(fs, "/c.json")
		assert.Equal(t, "2", string(data))
	})

	t.Run("directory target is always rejected", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/dir.json", 0o755))

		require.ErrorIs(t, WriteFile(fs, "/dir.json", []byte("1"), false), ErrIsDir)
		require.ErrorIs(t, WriteFile(fs, "/dir.json", []byte("1"), true), ErrIsDir)
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, WriteFile(fs, "/out/c.json", []byte("1"), false))

		entries, err := afero.ReadDir(fs, "/out")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "c.json", entries[0].Name())
	})
}

func TestCheckTarget(t *testing.T) {
	fs := afero.NewMemMapFs()

	exists, err := CheckTarget(fs, "/x.json", false)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, afero.WriteFile(fs, "/x.json", []byte("1"), 0o644))
	exists, err = CheckTarget(fs, "/x.json", true)
	require.NoError(t, err)
	assert.True(t, exists)
}
