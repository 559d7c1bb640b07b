package session

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// EnsureRemoteDir makes sure the parent directory chain of
// localRelPath exists under home on the remote side, creating missing
// prefixes root-to-leaf. Every existence check precedes every
// creation, so a second call with the same path issues zero remote
// mutations. Partial progress on failure is kept; an idempotent retry
// completes it.
func EnsureRemoteDir(files transport.FileChannel, home, localRelPath string) error {
	dir := path.Dir(filepath.ToSlash(localRelPath))
	if dir == "." || dir == "/" || dir == "" {
		// File lands at the remote root; nothing to create.
		return nil
	}

	// Full parent already present: skip the per-prefix walk.
	ok, err := files.Exists(path.Join(home, dir))
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrRemoteFilesystem, dir, err)
	}
	if ok {
		return nil
	}

	prefix := ""
	for _, segment := range strings.Split(dir, "/") {
		prefix = path.Join(prefix, segment)
		remote := path.Join(home, prefix)
		ok, err := files.Exists(remote)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %v", ErrRemoteFilesystem, remote, err)
		}
		if ok {
			continue
		}
		if err := files.Mkdir(remote); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrRemoteFilesystem, remote, err)
		}
	}
	return nil
}
