package fslib

// ReadOnlyWrapper transparently forwards every read and metadata
// operation to the wrapped Backend. Every mutating operation fails with
// KindReadOnly before the inner backend is ever touched.
type ReadOnlyWrapper struct {
	inner Backend
}

// NewReadOnlyWrapper wraps inner so that every mutation is rejected.
func NewReadOnlyWrapper(inner Backend) *ReadOnlyWrapper {
	return &ReadOnlyWrapper{inner: inner}
}

// Unwrap returns the wrapped Backend, for callers that need to bypass
// the guard intentionally (e.g. administrative tooling).
func (r *ReadOnlyWrapper) Unwrap() Backend { return r.inner }

func (r *ReadOnlyWrapper) Exists(path string) bool { return r.inner.Exists(path) }
func (r *ReadOnlyWrapper) IsFile(path string) bool  { return r.inner.IsFile(path) }
func (r *ReadOnlyWrapper) IsDir(path string) bool   { return r.inner.IsDir(path) }

func (r *ReadOnlyWrapper) Stat(path string) (Info, error) { return r.inner.Stat(path) }

func (r *ReadOnlyWrapper) Access(path string, mode AccessMode) bool {
	if mode == AccessWrite {
		return false
	}
	return r.inner.Access(path, mode)
}

func (r *ReadOnlyWrapper) OpenRead(path string) (ReadStream, error) { return r.inner.OpenRead(path) }
func (r *ReadOnlyWrapper) ReadAll(path string) ([]byte, error)      { return r.inner.ReadAll(path) }
func (r *ReadOnlyWrapper) ListDir(path string) ([]string, error)    { return r.inner.ListDir(path) }

func (r *ReadOnlyWrapper) OpenWrite(path string, mode WriteMode) (WriteStream, error) {
	return nil, NewError("open-write", path, KindReadOnly, nil)
}

func (r *ReadOnlyWrapper) Mkdir(path string, parents bool) error {
	return NewError("mkdir", path, KindReadOnly, nil)
}

func (r *ReadOnlyWrapper) RemoveFile(path string) error {
	return NewError("remove-file", path, KindReadOnly, nil)
}

func (r *ReadOnlyWrapper) RemoveDir(path string) error {
	return NewError("remove-dir", path, KindReadOnly, nil)
}

func (r *ReadOnlyWrapper) Rename(src, dst string) error {
	return NewError("rename", src, KindReadOnly, nil)
}

var _ Backend = (*ReadOnlyWrapper)(nil)
