/*
Package fslib provides a composable virtual filesystem façade: a small
set of backends that can be stacked, ranked, and mounted into a single
logical tree.

# Overview

Everything in fslib implements the Backend interface: existence checks,
stat, directory listing, streamed reads and writes, and the mutating
operations (mkdir, remove, rename). A MemoryBackend holds an entirely
in-process tree. An OSBackend roots a Backend at a physical directory.
A ReadOnlyWrapper strips the mutating operations from any Backend. A
UnionBackend merges several ranked branches into one logical view. A
MountTable grafts independent backends onto disjoint subtrees of a
single path namespace. Facade adds line- and stream-oriented
convenience helpers on top of any Backend.

# Branches and precedence

A UnionBackend holds branches ordered by rank, lower rank meaning more
visible. Reads are answered by the first branch, in rank order, that
has the path. Directory listings union the children of every branch
that has the path as a directory. Writes always target the
highest-visibility writable branch and never promote ("copy up") an
existing lower-branch file first: once a write lands in a higher
branch, it simply shadows whatever the lower branches hold at that
path. Deleting a file removes it from every writable branch that has
it; if any read-only branch also has it, the whole operation is
refused up front, since the file would otherwise reappear through that
branch once the writable copy is gone.

# Mounting

A MountTable dispatches a path to the backend mounted at the longest
matching prefix, the same way a Unix mount table does. A path that is
an ancestor of a mount point exists as a directory even when no mounted
backend physically has it, so that listing the ancestor surfaces the
mount as a synthetic entry.

# Concurrency

Every composite Backend (MemoryBackend, UnionBackend, MountTable) is
safe for concurrent use: reconfiguration (adding a branch, mounting a
backend) takes an exclusive lock, while lookups take a read lock only
long enough to select the target branch or mount before handing off to
it.
*/
package fslib
