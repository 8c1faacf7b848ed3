package fslib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewError("open-read", "/a/b", KindNotFound, nil)
	assert.Equal(t, "open-read /a/b: not found", err.Error())

	wrapped := NewError("open-read", "/a/b", KindIOError, errors.New("disk gone"))
	assert.Equal(t, "open-read /a/b: I/O error: disk gone", wrapped.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError("stat", "/x", KindIOError, cause)
	assert.ErrorIs(t, err, cause)
}

func TestIs(t *testing.T) {
	err := NewError("mkdir", "/x", KindAlreadyExists, nil)
	assert.True(t, Is(err, KindAlreadyExists))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}
