package fslib

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// OSBackend is a Backend rooted at a physical directory, delegating to
// the operating system's file primitives through afero.Fs. Every
// logical path is normalized and confined to root: a normalized path
// that would escape root (because of a leading "..") is refused with
// KindInvalidPath before afero ever sees it, on top of the confinement
// afero.BasePathFs itself already performs.
type OSBackend struct {
	root string
	fs   afero.Fs
}

// NewOSBackend roots a Backend at the given physical directory, which
// must already exist.
func NewOSBackend(root string) (*OSBackend, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, NewError("new-os-backend", root, KindNotFound, err)
	}
	if !info.IsDir() {
		return nil, NewError("new-os-backend", root, KindNotADirectory, nil)
	}
	return &OSBackend{root: root, fs: afero.NewBasePathFs(afero.NewOsFs(), root)}, nil
}

// newOSBackendFs builds an OSBackend directly over an arbitrary afero.Fs,
// used by tests to exercise this adapter against afero.NewMemMapFs()
// instead of a real disk.
func newOSBackendFs(fs afero.Fs) *OSBackend {
	return &OSBackend{root: "/", fs: fs}
}

func (b *OSBackend) resolve(op, path string) (string, error) {
	path, err := Normalize(path)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(path, "..") {
		return "", NewError(op, path, KindInvalidPath, nil)
	}
	return path, nil
}

func mapOSErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case os.IsNotExist(err):
		return NewError(op, path, KindNotFound, err)
	case os.IsExist(err):
		return NewError(op, path, KindAlreadyExists, err)
	case os.IsPermission(err):
		return NewError(op, path, KindPermissionDenied, err)
	}
	if pe, ok := err.(*os.PathError); ok {
		switch pe.Err.Error() {
		case "not a directory":
			return NewError(op, path, KindNotADirectory, err)
		case "is a directory":
			return NewError(op, path, KindIsADirectory, err)
		case "directory not empty":
			return NewError(op, path, KindNotEmpty, err)
		case "read-only file system":
			return NewError(op, path, KindReadOnly, err)
		}
	}
	return NewError(op, path, KindIOError, err)
}

func (b *OSBackend) Exists(path string) bool {
	path, err := b.resolve("exists", path)
	if err != nil {
		return false
	}
	_, err = b.fs.Stat(path)
	return err == nil
}

func (b *OSBackend) IsFile(path string) bool {
	path, err := b.resolve("is-file", path)
	if err != nil {
		return false
	}
	info, err := b.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func (b *OSBackend) IsDir(path string) bool {
	path, err := b.resolve("is-dir", path)
	if err != nil {
		return false
	}
	info, err := b.fs.Stat(path)
	return err == nil && info.IsDir()
}

func (b *OSBackend) Stat(path string) (Info, error) {
	path, err := b.resolve("stat", path)
	if err != nil {
		return Info{}, err
	}
	info, err := b.fs.Stat(path)
	if err != nil {
		return Info{}, mapOSErr("stat", path, err)
	}
	return aferoInfo(info), nil
}

func aferoInfo(info os.FileInfo) Info {
	kind := EntryFile
	if info.IsDir() {
		kind = EntryDir
	}
	return Info{Name: info.Name(), Size: info.Size(), ModTime: info.ModTime(), Kind: kind}
}

func (b *OSBackend) Access(path string, mode AccessMode) bool {
	path, err := b.resolve("access", path)
	if err != nil {
		return false
	}
	info, err := b.fs.Stat(path)
	if err != nil {
		return false
	}
	if mode == AccessExists {
		return true
	}
	perm := info.Mode().Perm()
	if mode == AccessRead {
		return perm&0o444 != 0
	}
	return perm&0o222 != 0
}

func (b *OSBackend) OpenRead(path string) (ReadStream, error) {
	path, err := b.resolve("open-read", path)
	if err != nil {
		return nil, err
	}
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, mapOSErr("open-read", path, err)
	}
	if info.IsDir() {
		return nil, NewError("open-read", path, KindIsADirectory, nil)
	}
	f, err := b.fs.Open(path)
	if err != nil {
		return nil, mapOSErr("open-read", path, err)
	}
	return f, nil
}

func (b *OSBackend) ReadAll(path string) ([]byte, error) {
	f, err := b.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (b *OSBackend) ListDir(path string) ([]string, error) {
	path, err := b.resolve("listdir", path)
	if err != nil {
		return nil, err
	}
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, mapOSErr("listdir", path, err)
	}
	if !info.IsDir() {
		return nil, NewError("listdir", path, KindNotADirectory, nil)
	}
	entries, err := afero.ReadDir(b.fs, path)
	if err != nil {
		return nil, mapOSErr("listdir", path, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (b *OSBackend) OpenWrite(path string, mode WriteMode) (WriteStream, error) {
	path, err := b.resolve("open-write", path)
	if err != nil {
		return nil, err
	}
	if info, statErr := b.fs.Stat(path); statErr == nil && info.IsDir() {
		return nil, NewError("open-write", path, KindIsADirectory, nil)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if mode == WriteAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := b.fs.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, mapOSErr("open-write", path, err)
	}
	return f, nil
}

func (b *OSBackend) Mkdir(path string, parents bool) error {
	path, err := b.resolve("mkdir", path)
	if err != nil {
		return err
	}
	if parents {
		if err := b.fs.MkdirAll(path, 0o755); err != nil {
			return mapOSErr("mkdir", path, err)
		}
		return nil
	}
	if err := b.fs.Mkdir(path, 0o755); err != nil {
		return mapOSErr("mkdir", path, err)
	}
	return nil
}

func (b *OSBackend) RemoveFile(path string) error {
	path, err := b.resolve("remove-file", path)
	if err != nil {
		return err
	}
	info, statErr := b.fs.Stat(path)
	if statErr != nil {
		return mapOSErr("remove-file", path, statErr)
	}
	if info.IsDir() {
		return NewError("remove-file", path, KindIsADirectory, nil)
	}
	if err := b.fs.Remove(path); err != nil {
		return mapOSErr("remove-file", path, err)
	}
	return nil
}

func (b *OSBackend) RemoveDir(path string) error {
	path, err := b.resolve("remove-dir", path)
	if err != nil {
		return err
	}
	info, statErr := b.fs.Stat(path)
	if statErr != nil {
		return mapOSErr("remove-dir", path, statErr)
	}
	if !info.IsDir() {
		return NewError("remove-dir", path, KindNotADirectory, nil)
	}
	entries, err := afero.ReadDir(b.fs, path)
	if err != nil {
		return mapOSErr("remove-dir", path, err)
	}
	if len(entries) > 0 {
		return NewError("remove-dir", path, KindNotEmpty, nil)
	}
	if err := b.fs.Remove(path); err != nil {
		return mapOSErr("remove-dir", path, err)
	}
	return nil
}

func (b *OSBackend) Rename(src, dst string) error {
	src, err := b.resolve("rename", src)
	if err != nil {
		return err
	}
	dst, err = b.resolve("rename", dst)
	if err != nil {
		return err
	}
	if err := b.fs.Rename(src, dst); err != nil {
		return mapOSErr("rename", src, err)
	}
	return nil
}
