// Package git provides an abstraction for git operations.
package git

import "context"

// Git defines git operations needed by roost.
type Git interface {
	// RemoteURL returns the remote URL for dir, preferring a remote named
	// "origin" and falling back to the first configured remote.
	RemoteURL(ctx context.Context, dir string) (string, error)
	// HeadSHA returns the full commit SHA at HEAD.
	HeadSHA(ctx context.Context, dir string) (string, error)
	// IsDirty reports whether dir has any uncommitted changes: modified,
	// added, deleted, renamed, staged, or untracked.
	IsDirty(ctx context.Context, dir string) (bool, error)
	// Branch returns the current branch name, or short commit SHA if in
	// detached HEAD state.
	Branch(ctx context.Context, dir string) (string, error)
}
