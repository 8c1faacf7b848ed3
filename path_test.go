package fslib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "/", want: "/"},
		{in: "/a/b/c", want: "/a/b/c"},
		{in: "/a//b", want: "/a/b"},
		{in: "/a/./b", want: "/a/b"},
		{in: "/a/b/..", want: "/a"},
		{in: "/..", wantErr: true},
		{in: "/a/../../b", wantErr: true},
		{in: "", wantErr: true},
		{in: "relative/path", wantErr: true},
		{in: "/has\x00null", wantErr: true},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if c.wantErr {
			require.Error(t, err)
			assert.True(t, Is(err, KindInvalidPath))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	// Invariant 8.
	paths := []string{"/", "/a/b/c", "/a//b/./c/..", "/x/y/../../z"}
	for _, p := range paths {
		once, err := Normalize(p)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestSplit(t *testing.T) {
	parent, leaf := Split("/")
	assert.Equal(t, "/", parent)
	assert.Equal(t, "", leaf)

	parent, leaf = Split("/a")
	assert.Equal(t, "/", parent)
	assert.Equal(t, "a", leaf)

	parent, leaf = Split("/a/b/c")
	assert.Equal(t, "/a/b", parent)
	assert.Equal(t, "c", leaf)
}

func TestJoin(t *testing.T) {
	got, err := Join("/a", "b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)

	got, err = Join("/a", "/b")
	require.NoError(t, err)
	assert.Equal(t, "/b", got)

	got, err = Join("/", "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)
}

func TestRelativeTo(t *testing.T) {
	rel, err := RelativeTo("/a/b/c", "/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, rel)

	rel, err = RelativeTo("/a", "/a")
	require.NoError(t, err)
	assert.Nil(t, rel)

	_, err = RelativeTo("/x/y", "/a")
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidPath))
}

func TestIsPrefix(t *testing.T) {
	assert.True(t, IsPrefix("/", "/anything"))
	assert.True(t, IsPrefix("/a", "/a"))
	assert.True(t, IsPrefix("/a", "/a/b"))
	assert.False(t, IsPrefix("/a/b", "/a/bb"))
	assert.False(t, IsPrefix("/a", "/ab"))
}
