package fslib

import (
	"sort"
	"strings"
	"sync"
)

// MountPoint pairs a normalized mount path with the backend answering
// for it.
type MountPoint struct {
	Path    string
	Backend Backend
}

// MountTable dispatches each logical path to the backend mounted at the
// longest component-aligned prefix of that path. Mounting "/" is not
// enforced: while it is absent, a path under no mount point fails with
// KindNotFound.
type MountTable struct {
	mu     sync.RWMutex
	mounts map[string]Backend
	sorted []string // mount paths, longest first
}

// NewMountTable creates an empty MountTable. Mount "/" before using it.
func NewMountTable() *MountTable {
	return &MountTable{mounts: make(map[string]Backend)}
}

// Mount attaches backend at mountPath. It fails with KindAlreadyExists
// if something is already mounted there, and with KindInvalidPath if
// backend is the table itself (a self-mount would create a cycle).
func (t *MountTable) Mount(mountPath string, backend Backend) error {
	mountPath, err := Normalize(mountPath)
	if err != nil {
		return err
	}
	if backend == Backend(t) {
		return NewError("mount", mountPath, KindInvalidPath, nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.mounts[mountPath]; exists {
		return NewError("mount", mountPath, KindAlreadyExists, nil)
	}

	t.mounts[mountPath] = backend
	t.resortLocked()

	componentLogger("mount").Debug().Str("path", mountPath).Msg("mounted")
	return nil
}

// Unmount detaches the backend mounted at mountPath. It refuses with
// KindInvalidPath to unmount the root, and with KindNotEmpty if another
// mount point is a strict descendant of mountPath (unmounting would
// orphan it).
func (t *MountTable) Unmount(mountPath string) error {
	mountPath, err := Normalize(mountPath)
	if err != nil {
		return err
	}
	if mountPath == "/" {
		return NewError("unmount", mountPath, KindInvalidPath, nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.mounts[mountPath]; !exists {
		return NewError("unmount", mountPath, KindNotFound, nil)
	}
	for other := range t.mounts {
		if other != mountPath && IsPrefix(mountPath, other) {
			return NewError("unmount", mountPath, KindNotEmpty, nil)
		}
	}

	delete(t.mounts, mountPath)
	t.resortLocked()
	return nil
}

func (t *MountTable) resortLocked() {
	t.sorted = t.sorted[:0]
	for p := range t.mounts {
		t.sorted = append(t.sorted, p)
	}
	sort.Slice(t.sorted, func(i, j int) bool {
		li, lj := len(t.sorted[i]), len(t.sorted[j])
		if li != lj {
			return li > lj
		}
		return t.sorted[i] < t.sorted[j]
	})
}

// dispatch finds the mount whose path is the longest component-aligned
// prefix of path, and returns the backend plus path relativized to the
// mount (so the backend sees its own root as "/").
func (t *MountTable) dispatch(path string) (Backend, string, string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, mountPath := range t.sorted {
		if IsPrefix(mountPath, path) {
			rel := "/"
			if mountPath != "/" {
				rel = strings.TrimPrefix(path, mountPath)
				if rel == "" {
					rel = "/"
				}
			} else {
				rel = path
			}
			return t.mounts[mountPath], rel, mountPath, true
		}
	}
	return nil, "", "", false
}

// childMountComponents returns, for every mount point that is a strict
// descendant of path, the single next path component beneath path --
// these appear as synthetic directory entries even when no backend
// physically has them.
func (t *MountTable) childMountComponents(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := map[string]struct{}{}
	var out []string
	for mountPath := range t.mounts {
		if mountPath == path || !IsPrefix(path, mountPath) {
			continue
		}
		rest := strings.TrimPrefix(mountPath, path)
		rest = strings.TrimPrefix(rest, "/")
		if rest == "" {
			continue
		}
		first := strings.SplitN(rest, "/", 2)[0]
		if _, ok := seen[first]; !ok {
			seen[first] = struct{}{}
			out = append(out, first)
		}
	}
	return out
}

// isMountOrAncestor reports whether path is itself a mount point or a
// strict ancestor of one.
func (t *MountTable) isMountOrAncestor(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for mountPath := range t.mounts {
		if IsPrefix(path, mountPath) {
			return true
		}
	}
	return false
}

func (t *MountTable) Exists(path string) bool {
	if t.isMountOrAncestor(path) {
		return true
	}
	backend, rel, _, ok := t.dispatch(path)
	return ok && backend.Exists(rel)
}

func (t *MountTable) IsFile(path string) bool {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return false
	}
	return backend.IsFile(rel)
}

func (t *MountTable) IsDir(path string) bool {
	if t.isMountOrAncestor(path) {
		return true
	}
	backend, rel, _, ok := t.dispatch(path)
	return ok && backend.IsDir(rel)
}

func (t *MountTable) Stat(path string) (Info, error) {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return Info{}, NewError("stat", path, KindNotFound, nil)
	}
	info, err := backend.Stat(rel)
	if err != nil && t.isMountOrAncestor(path) {
		_, leaf := Split(path)
		return Info{Name: leaf, Kind: EntryDir}, nil
	}
	return info, err
}

func (t *MountTable) Access(path string, mode AccessMode) bool {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return false
	}
	return backend.Access(rel, mode)
}

func (t *MountTable) OpenRead(path string) (ReadStream, error) {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return nil, NewError("open-read", path, KindNotFound, nil)
	}
	return backend.OpenRead(rel)
}

func (t *MountTable) ReadAll(path string) ([]byte, error) {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return nil, NewError("read-all", path, KindNotFound, nil)
	}
	return backend.ReadAll(rel)
}

// ListDir returns the union of the dispatched backend's listing at path
// (if any) and the immediate child-mount components rooted under path.
// Child-mount names shadow same-named entries from the backend.
func (t *MountTable) ListDir(path string) ([]string, error) {
	backend, rel, _, ok := t.dispatch(path)

	var names []string
	seen := map[string]struct{}{}

	if ok {
		entries, err := backend.ListDir(rel)
		if err != nil && !t.isMountOrAncestor(path) {
			return nil, err
		}
		for _, n := range entries {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}

	for _, n := range t.childMountComponents(path) {
		if _, dup := seen[n]; !dup {
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}

	if !ok && len(names) == 0 {
		return nil, NewError("listdir", path, KindNotFound, nil)
	}
	return names, nil
}

func (t *MountTable) OpenWrite(path string, mode WriteMode) (WriteStream, error) {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return nil, NewError("open-write", path, KindNotFound, nil)
	}
	return backend.OpenWrite(rel, mode)
}

func (t *MountTable) Mkdir(path string, parents bool) error {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return NewError("mkdir", path, KindNotFound, nil)
	}
	return backend.Mkdir(rel, parents)
}

func (t *MountTable) RemoveFile(path string) error {
	backend, rel, _, ok := t.dispatch(path)
	if !ok {
		return NewError("remove-file", path, KindNotFound, nil)
	}
	return backend.RemoveFile(rel)
}

func (t *MountTable) RemoveDir(path string) error {
	backend, rel, mountPath, ok := t.dispatch(path)
	if !ok {
		return NewError("remove-dir", path, KindNotFound, nil)
	}
	if mountPath == path {
		return NewError("remove-dir", path, KindInvalidPath, nil)
	}
	return backend.RemoveDir(rel)
}

// Rename fails with KindCrossBackend if src and dst dispatch to
// different mounts.
func (t *MountTable) Rename(src, dst string) error {
	srcBackend, srcRel, srcMount, ok := t.dispatch(src)
	if !ok {
		return NewError("rename", src, KindNotFound, nil)
	}
	dstBackend, dstRel, dstMount, ok := t.dispatch(dst)
	if !ok {
		return NewError("rename", dst, KindNotFound, nil)
	}
	if srcMount != dstMount {
		return NewError("rename", src, KindCrossBackend, nil)
	}
	_ = dstBackend
	return srcBackend.Rename(srcRel, dstRel)
}

var _ Backend = (*MountTable)(nil)
