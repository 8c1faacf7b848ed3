package fslib

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSBackendWriteAndReadAll(t *testing.T) {
	b := newOSBackendFs(afero.NewMemMapFs())
	mustWriteAll(t, b, "/a.txt", []byte("hello"))

	got, err := b.ReadAll("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestOSBackendListDir(t *testing.T) {
	b := newOSBackendFs(afero.NewMemMapFs())
	require.NoError(t, b.Mkdir("/d", false))
	mustWriteAll(t, b, "/d/x", []byte("x"))
	mustWriteAll(t, b, "/d/y", []byte("y"))

	names, err := b.ListDir("/d")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, names)
}

func TestOSBackendNotFound(t *testing.T) {
	b := newOSBackendFs(afero.NewMemMapFs())
	_, err := b.ReadAll("/missing")
	require.Error(t, err)
	assert.True(t, Is(err, KindNotFound))
}

func TestOSBackendPathEscapeRefused(t *testing.T) {
	// S5 (applied to the afero-backed adapter directly).
	b := newOSBackendFs(afero.NewMemMapFs())
	assert.False(t, b.Exists("/../etc/passwd"))

	_, err := b.ReadAll("/../etc/passwd")
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidPath))
}

func TestOSBackendRemoveDirNotEmpty(t *testing.T) {
	b := newOSBackendFs(afero.NewMemMapFs())
	require.NoError(t, b.Mkdir("/d", false))
	mustWriteAll(t, b, "/d/x", []byte("x"))

	err := b.RemoveDir("/d")
	require.Error(t, err)
	assert.True(t, Is(err, KindNotEmpty))
}

func TestOSBackendRename(t *testing.T) {
	b := newOSBackendFs(afero.NewMemMapFs())
	mustWriteAll(t, b, "/a.txt", []byte("data"))
	require.NoError(t, b.Rename("/a.txt", "/b.txt"))

	assert.False(t, b.Exists("/a.txt"))
	got, err := b.ReadAll("/b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestNewOSBackendRequiresExistingRoot(t *testing.T) {
	_, err := NewOSBackend("/this/path/does/not/exist/anywhere")
	require.Error(t, err)
	assert.True(t, Is(err, KindNotFound))
}
