package fslib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOnlyWrapperForwardsReads(t *testing.T) {
	m := NewMemoryBackend()
	mustWriteAll(t, m, "/a.txt", []byte("hello"))

	r := NewReadOnlyWrapper(m)
	got, err := r.ReadAll("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.True(t, r.Exists("/a.txt"))
	assert.True(t, r.IsFile("/a.txt"))
}

func TestReadOnlyWrapperRejectsMutations(t *testing.T) {
	// Invariant 9, scenario S2.
	m := NewMemoryBackend()
	r := NewReadOnlyWrapper(m)

	_, err := r.OpenWrite("/x", WriteTruncate)
	require.Error(t, err)
	assert.True(t, Is(err, KindReadOnly))
	assert.False(t, m.Exists("/x"))

	err = r.Mkdir("/d", false)
	require.Error(t, err)
	assert.True(t, Is(err, KindReadOnly))

	err = r.RemoveFile("/a.txt")
	require.Error(t, err)
	assert.True(t, Is(err, KindReadOnly))

	err = r.RemoveDir("/d")
	require.Error(t, err)
	assert.True(t, Is(err, KindReadOnly))

	err = r.Rename("/a", "/b")
	require.Error(t, err)
	assert.True(t, Is(err, KindReadOnly))
}

func TestReadOnlyWrapperAccessWriteAlwaysFalse(t *testing.T) {
	// Invariant 3.
	m := NewMemoryBackend()
	mustWriteAll(t, m, "/a.txt", []byte("x"))
	r := NewReadOnlyWrapper(m)

	assert.False(t, r.Access("/a.txt", AccessWrite))
	assert.True(t, r.Access("/a.txt", AccessRead))
	assert.True(t, r.Access("/a.txt", AccessExists))
}

func TestReadOnlyWrapperDoesNotTouchInnerOnMutationAttempt(t *testing.T) {
	// Invariant 9.
	m := NewMemoryBackend()
	mustWriteAll(t, m, "/a.txt", []byte("original"))
	r := NewReadOnlyWrapper(m)

	_, _ = r.OpenWrite("/a.txt", WriteTruncate)

	got, err := m.ReadAll("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestReadOnlyWrapperUnwrap(t *testing.T) {
	m := NewMemoryBackend()
	r := NewReadOnlyWrapper(m)
	assert.Same(t, m, r.Unwrap())
}
