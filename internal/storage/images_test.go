package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestImageStore_Save(t *testing.T) {
	store, err := NewImageStore(filepath.Join(t.TempDir(), "pics"), 1024)
	require.NoError(t, err)

	name, err := store.Save(7, "avatar.PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^7_[0-9a-f]{32}\.png$`), name)

	path, err := store.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, name, files[0].Name)
	assert.WithinDuration(t, time.Now(), files[0].ModTime, time.Minute)

	require.NoError(t, store.Remove(name))
	require.NoError(t, store.Remove(name))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestImageStore_Rejects(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), 64)
	require.NoError(t, err)

	_, err = store.Save(1, "notes.txt", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(1, "fake.png", strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 100)...)
	_, err = store.Save(1, "big.png", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestImageStore_PathTraversal(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), 64)
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/b.png", ".hidden"} {
		_, err := store.Path(name)
		assert.ErrorIs(t, err, os.ErrNotExist, name)
	}
}
