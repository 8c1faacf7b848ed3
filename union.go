package fslib

import (
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"
)

// Branch is one member of a UnionBackend: a backend, a visibility rank
// (lower is more visible), and whether it accepts writes.
type Branch struct {
	Ref      string
	Backend  Backend
	Rank     int
	Writable bool

	seq int // insertion order, for deterministic tie-breaking
}

// UnionBackend merges N ranked branches into a single logical Backend.
// Reads are answered by the first (most visible) branch that has the
// path; directory listings union all branches; writes target the most
// visible writable branch without promoting ("copying up") any existing
// lower-branch file.
type UnionBackend struct {
	mu       sync.RWMutex
	branches []*Branch
	nextSeq  int

	cache   *lru.Cache[string, statCacheEntry] // path -> branch index, invalidated eagerly and by TTL
	statTTL time.Duration
}

// statCacheEntry caches which branch resolved a path, alongside the
// time after which the entry is no longer trusted even if not
// explicitly invalidated -- mirrors the teacher's cache.go
// statCacheEntry.expires field.
type statCacheEntry struct {
	branch  int
	expires time.Time
}

// Option configures a UnionBackend at construction time.
type Option func(*UnionBackend)

// WithStatCache enables a bounded LRU cache of path -> resolving-branch
// lookups, each entry valid for at most ttl (mirroring the teacher's
// cache.go statTTL field). A zero ttl disables time-based expiry; the
// cache then relies purely on the eager invalidation every mutation
// already performs. Caching never changes observable semantics: every
// mutation invalidates the affected entries before returning, and any
// entry older than ttl is treated as a miss regardless.
func WithStatCache(size int, ttl time.Duration) Option {
	return func(u *UnionBackend) {
		c, err := lru.New[string, statCacheEntry](size)
		if err != nil {
			return
		}
		u.cache = c
		u.statTTL = ttl
	}
}

// NewUnionBackend creates an empty UnionBackend. Branches are added with
// AddBranch.
func NewUnionBackend(opts ...Option) *UnionBackend {
	u := &UnionBackend{}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AddBranch adds a branch at the given rank and writability. If ref is
// empty, a uuid is generated so the branch can always be addressed by
// RemoveBranch. Ties in rank are broken by insertion order (earlier
// added = more visible), per spec.
func (u *UnionBackend) AddBranch(backend Backend, rank int, writable bool, ref string) *Branch {
	u.mu.Lock()
	defer u.mu.Unlock()

	if ref == "" {
		ref = uuid.NewString()
	}
	b := &Branch{Ref: ref, Backend: backend, Rank: rank, Writable: writable, seq: u.nextSeq}
	u.nextSeq++
	u.branches = append(u.branches, b)
	u.sortBranchesLocked()
	u.invalidateAllLocked()

	componentLogger("union").Debug().Str("ref", ref).Int("rank", rank).Bool("writable", writable).Msg("branch added")
	return b
}

// RemoveBranch removes the branch with the given ref, if present.
func (u *UnionBackend) RemoveBranch(ref string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, b := range u.branches {
		if b.Ref == ref {
			u.branches = append(u.branches[:i], u.branches[i+1:]...)
			u.invalidateAllLocked()
			return
		}
	}
}

func (u *UnionBackend) sortBranchesLocked() {
	sort.SliceStable(u.branches, func(i, j int) bool {
		if u.branches[i].Rank != u.branches[j].Rank {
			return u.branches[i].Rank < u.branches[j].Rank
		}
		return u.branches[i].seq < u.branches[j].seq
	})
}

func (u *UnionBackend) invalidateAllLocked() {
	if u.cache != nil {
		u.cache.Purge()
	}
}

func (u *UnionBackend) invalidate(path string) {
	if u.cache != nil {
		u.cache.Remove(path)
	}
}

// findReadBranch returns the index (into u.branches, already
// rank-sorted) of the first branch that has path, or -1 with a
// KindNotFound error.
func (u *UnionBackend) findReadBranch(path string) (int, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.cache != nil {
		if entry, ok := u.cache.Get(path); ok {
			if u.statTTL == 0 || time.Now().Before(entry.expires) {
				return entry.branch, nil
			}
			u.cache.Remove(path)
		}
	}

	for i, b := range u.branches {
		if b.Backend.Exists(path) {
			if u.cache != nil {
				entry := statCacheEntry{branch: i}
				if u.statTTL > 0 {
					entry.expires = time.Now().Add(u.statTTL)
				}
				u.cache.Add(path, entry)
			}
			return i, nil
		}
	}
	return -1, NewError("lookup", path, KindNotFound, nil)
}

func (u *UnionBackend) writableBranchLocked() (*Branch, error) {
	for _, b := range u.branches {
		if b.Writable {
			return b, nil
		}
	}
	return nil, NewError("write", "", KindReadOnly, nil)
}

func (u *UnionBackend) Exists(path string) bool {
	_, err := u.findReadBranch(path)
	return err == nil
}

func (u *UnionBackend) IsFile(path string) bool {
	idx, err := u.findReadBranch(path)
	if err != nil {
		return false
	}
	u.mu.RLock()
	b := u.branches[idx]
	u.mu.RUnlock()
	return b.Backend.IsFile(path)
}

func (u *UnionBackend) IsDir(path string) bool {
	idx, err := u.findReadBranch(path)
	if err != nil {
		return false
	}
	u.mu.RLock()
	b := u.branches[idx]
	u.mu.RUnlock()
	return b.Backend.IsDir(path)
}

func (u *UnionBackend) Stat(path string) (Info, error) {
	idx, err := u.findReadBranch(path)
	if err != nil {
		return Info{}, NewError("stat", path, KindNotFound, nil)
	}
	u.mu.RLock()
	b := u.branches[idx]
	u.mu.RUnlock()
	return b.Backend.Stat(path)
}

func (u *UnionBackend) Access(path string, mode AccessMode) bool {
	if mode == AccessWrite {
		u.mu.RLock()
		_, err := u.writableBranchLocked()
		u.mu.RUnlock()
		if err != nil {
			return false
		}
	}
	idx, err := u.findReadBranch(path)
	if err != nil {
		return false
	}
	u.mu.RLock()
	b := u.branches[idx]
	u.mu.RUnlock()
	return b.Backend.Access(path, mode)
}

func (u *UnionBackend) OpenRead(path string) (ReadStream, error) {
	idx, err := u.findReadBranch(path)
	if err != nil {
		return nil, NewError("open-read", path, KindNotFound, nil)
	}
	u.mu.RLock()
	b := u.branches[idx]
	u.mu.RUnlock()
	return b.Backend.OpenRead(path)
}

func (u *UnionBackend) ReadAll(path string) ([]byte, error) {
	idx, err := u.findReadBranch(path)
	if err != nil {
		return nil, NewError("read-all", path, KindNotFound, nil)
	}
	u.mu.RLock()
	b := u.branches[idx]
	u.mu.RUnlock()
	return b.Backend.ReadAll(path)
}

// ListDir returns the union of children across every branch that has
// path as a directory. A name's kind (file vs dir) is taken from the
// highest-visibility branch that has it. If path exists in at least one
// branch but only ever as a file, ListDir fails with KindNotADirectory.
// If no branch has path at all, it fails with KindNotFound.
func (u *UnionBackend) ListDir(path string) ([]string, error) {
	u.mu.RLock()
	branches := make([]*Branch, len(u.branches))
	copy(branches, u.branches)
	u.mu.RUnlock()

	foundAny := false
	foundDir := false
	seen := map[string]struct{}{}
	var names []string

	for _, b := range branches {
		if !b.Backend.Exists(path) {
			continue
		}
		foundAny = true
		if !b.Backend.IsDir(path) {
			continue
		}
		foundDir = true
		children, err := b.Backend.ListDir(path)
		if err != nil {
			continue
		}
		for _, name := range children {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	if !foundAny {
		return nil, NewError("listdir", path, KindNotFound, nil)
	}
	if !foundDir {
		return nil, NewError("listdir", path, KindNotADirectory, nil)
	}
	return names, nil
}

// OpenWrite opens path for writing in the highest-visibility writable
// branch, creating parent directories there if needed. It never copies
// an existing lower-branch file up first: subsequent reads see the new
// file shadow the lower one.
func (u *UnionBackend) OpenWrite(path string, mode WriteMode) (WriteStream, error) {
	u.mu.RLock()
	branch, err := u.writableBranchLocked()
	u.mu.RUnlock()
	if err != nil {
		return nil, NewError("open-write", path, KindReadOnly, nil)
	}

	parent, _ := Split(path)
	if parent != "/" && !branch.Backend.IsDir(parent) {
		if err := branch.Backend.Mkdir(parent, true); err != nil {
			return nil, err
		}
	}

	u.invalidate(path)
	return branch.Backend.OpenWrite(path, mode)
}

// Mkdir creates path in the highest-visibility writable branch. It
// succeeds idempotently if path already exists as a directory in any
// branch, since directories are implicitly unioned.
func (u *UnionBackend) Mkdir(path string, parents bool) error {
	if u.IsDir(path) {
		return nil
	}

	u.mu.RLock()
	branch, err := u.writableBranchLocked()
	u.mu.RUnlock()
	if err != nil {
		return NewError("mkdir", path, KindReadOnly, nil)
	}

	u.invalidate(path)
	return branch.Backend.Mkdir(path, parents)
}

// RemoveFile removes path from every branch that contains it as a file.
// If any read-only branch contains it, RemoveFile refuses up front with
// KindReadOnly and leaves every branch untouched. Otherwise it removes
// from writable branches in rank order; this step is the one documented
// non-atomic operation in the contract: if a removal fails partway, the
// error names the failing branch's Ref and prior removals are not
// rolled back.
func (u *UnionBackend) RemoveFile(path string) error {
	u.mu.RLock()
	branches := make([]*Branch, len(u.branches))
	copy(branches, u.branches)
	u.mu.RUnlock()

	var toRemove []*Branch
	foundAny := false
	for _, b := range branches {
		if b.Backend.Exists(path) && b.Backend.IsFile(path) {
			foundAny = true
			if !b.Writable {
				return NewError("remove-file", path, KindReadOnly, nil)
			}
			toRemove = append(toRemove, b)
		}
	}
	if !foundAny {
		return NewError("remove-file", path, KindNotFound, nil)
	}

	u.invalidate(path)
	for _, b := range toRemove {
		if err := b.Backend.RemoveFile(path); err != nil {
			componentLogger("union").Warn().Str("ref", b.Ref).Str("path", path).Err(err).
				Msg("partial failure removing file across branches")
			return NewError("remove-file", path, KindIOError, fmt.Errorf("branch %s: %w", b.Ref, err))
		}
	}
	return nil
}

// RemoveDir removes an empty directory. It succeeds only if path is
// empty in the unioned view and exists in no read-only branch; otherwise
// it fails with KindNotEmpty or KindReadOnly.
func (u *UnionBackend) RemoveDir(path string) error {
	children, err := u.ListDir(path)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return NewError("remove-dir", path, KindNotEmpty, nil)
	}

	u.mu.RLock()
	branches := make([]*Branch, len(u.branches))
	copy(branches, u.branches)
	u.mu.RUnlock()

	var toRemove []*Branch
	for _, b := range branches {
		if b.Backend.Exists(path) && b.Backend.IsDir(path) {
			if !b.Writable {
				return NewError("remove-dir", path, KindReadOnly, nil)
			}
			toRemove = append(toRemove, b)
		}
	}

	u.invalidate(path)
	for _, b := range toRemove {
		if err := b.Backend.RemoveDir(path); err != nil {
			return NewError("remove-dir", path, KindIOError, err)
		}
	}
	return nil
}

// Rename is supported only when both endpoints resolve to the same
// writable branch.
func (u *UnionBackend) Rename(src, dst string) error {
	srcIdx, err := u.findReadBranch(src)
	if err != nil {
		return NewError("rename", src, KindNotFound, nil)
	}

	u.mu.RLock()
	srcBranch := u.branches[srcIdx]
	u.mu.RUnlock()

	if !srcBranch.Writable {
		return NewError("rename", src, KindCrossBackend, nil)
	}

	dstIdx, err := u.findReadBranch(dst)
	if err == nil {
		u.mu.RLock()
		dstBranch := u.branches[dstIdx]
		u.mu.RUnlock()
		if dstBranch.Ref != srcBranch.Ref {
			return NewError("rename", dst, KindCrossBackend, nil)
		}
	}

	u.invalidate(src)
	u.invalidate(dst)
	return srcBranch.Backend.Rename(src, dst)
}

var _ Backend = (*UnionBackend)(nil)
