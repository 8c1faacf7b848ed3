package fslib

import (
	"bufio"
	"encoding/hex"
	"hash"
	"io"

	"github.com/rs/zerolog"
)

// Facade is the thin, user-facing surface holding a single root Backend.
// Its methods are pure compositions over the Backend contract: it adds
// no state and no semantics of its own beyond the convenience helpers
// described in spec.md §4.8.
type Facade struct {
	root Backend
	log  zerolog.Logger
}

// New creates a Facade over root.
func New(root Backend) *Facade {
	return &Facade{root: root, log: *componentLogger("facade")}
}

// Root returns the backend this façade was constructed with.
func (f *Facade) Root() Backend { return f.root }

// Logger returns the façade's structured logger, so a host application
// can attach the same sink used internally.
func (f *Facade) Logger() *zerolog.Logger { return &f.log }

func (f *Facade) Exists(path string) bool                  { return f.root.Exists(path) }
func (f *Facade) IsFile(path string) bool                  { return f.root.IsFile(path) }
func (f *Facade) IsDir(path string) bool                   { return f.root.IsDir(path) }
func (f *Facade) Stat(path string) (Info, error)           { return f.root.Stat(path) }
func (f *Facade) Access(path string, mode AccessMode) bool { return f.root.Access(path, mode) }
func (f *Facade) OpenRead(path string) (ReadStream, error) { return f.root.OpenRead(path) }
func (f *Facade) ReadAll(path string) ([]byte, error)      { return f.root.ReadAll(path) }
func (f *Facade) ListDir(path string) ([]string, error)    { return f.root.ListDir(path) }
func (f *Facade) Mkdir(path string, parents bool) error    { return f.root.Mkdir(path, parents) }
func (f *Facade) RemoveFile(path string) error             { return f.root.RemoveFile(path) }
func (f *Facade) RemoveDir(path string) error              { return f.root.RemoveDir(path) }
func (f *Facade) Rename(src, dst string) error             { return f.root.Rename(src, dst) }

func (f *Facade) OpenWrite(path string, mode WriteMode) (WriteStream, error) {
	return f.root.OpenWrite(path, mode)
}

// ReadOneLine opens path, reads until the first line terminator, closes
// the stream, and returns the line without its terminator. An empty
// file yields an empty string.
func (f *Facade) ReadOneLine(path string) (string, error) {
	r, err := f.root.OpenRead(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", NewError("read-one-line", path, KindIOError, err)
	}
	return "", nil
}

// ReadLines reads every line of path, stripping the "\n" terminator from
// each.
func (f *Facade) ReadLines(path string) ([]string, error) {
	r, err := f.root.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, NewError("read-lines", path, KindIOError, err)
	}
	return lines, nil
}

// WriteLines truncates path and writes each line of lines terminated by
// "\n".
func (f *Facade) WriteLines(path string, lines []string) error {
	w, err := f.root.OpenWrite(path, WriteTruncate)
	if err != nil {
		return err
	}
	defer w.Close()

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return NewError("write-lines", path, KindIOError, err)
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return NewError("write-lines", path, KindIOError, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return NewError("write-lines", path, KindIOError, err)
	}
	return nil
}

// Copy stream-copies src to dst, truncating dst. dst's parent directory
// must already exist.
func (f *Facade) Copy(src, dst string) error {
	r, err := f.root.OpenRead(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := f.root.OpenWrite(dst, WriteTruncate)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := io.Copy(w, r); err != nil {
		return NewError("copy", src, KindIOError, err)
	}
	return nil
}

// GetHash streams path through newHash in 32 KiB chunks and returns the
// hex-encoded digest, recovered from the original fslib's
// FileSystem.get_hash (there hardcoded to MD5; generalized here to any
// hash.Hash constructor).
func (f *Facade) GetHash(path string, newHash func() hash.Hash) (string, error) {
	r, err := f.root.OpenRead(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	h := newHash()
	buf := make([]byte, 32*1024)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", NewError("get-hash", path, KindIOError, readErr)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
