// Package spillpath validates and canonicalizes the scratch directory the
// History Engine's spill package writes `.ersnap` files into, via
// EvalSymlinks plus an is-a-directory check. Simplified because the
// scratch directory is operator-configured, not user-supplied
// per-request: there is no per-file allow-list or extension check to
// perform, only "does this directory exist, and is it really a
// directory".
package spillpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotDirectory indicates the configured scratch root is not a
// directory.
var ErrNotDirectory = errors.New("spillpath: scratch root is not a directory")

// Resolver holds the canonical, symlink-resolved scratch directory used
// for spill files, satisfying spill.PathProvider.
type Resolver struct {
	dir string
}

// NewResolver canonicalizes dir (absolute + EvalSymlinks) and verifies it
// is an existing directory.
func NewResolver(dir string) (*Resolver, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("spillpath: resolve abs for %q: %w", dir, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("spillpath: eval symlinks for %q: %w", abs, err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("spillpath: stat %q: %w", real, err)
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}
	return &Resolver{dir: filepath.Clean(real)}, nil
}

// NewResolverFromEnv builds a Resolver from the SHEETCORE_SCRATCH_DIR
// environment variable, falling back to the OS temp directory when unset
// (spill files are always internal scratch state, never user content,
// so no allow-list is needed here).
func NewResolverFromEnv() (*Resolver, error) {
	dir := os.Getenv("SHEETCORE_SCRATCH_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return NewResolver(dir)
}

// ScratchDir returns the canonical scratch directory path.
func (r *Resolver) ScratchDir() string {
	return r.dir
}
