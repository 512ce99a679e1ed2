package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory naming under the user's home.
	repoDirName = ".sarus"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// DefaultLocalRepositoryDir returns the default per-user local repository
// root, "$HOME/.sarus".
func DefaultLocalRepositoryDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, repoDirName), nil
}

// ScratchBaseDir returns the base directory under which one-pull scratch
// directories are created.
//
// $TMPDIR is honored first (per spec.md's environment variable list); if
// unset, falls back to the XDG cache home, matching the teacher's fallback
// shape for its own runtime directory.
func ScratchBaseDir() string {
	if t := os.Getenv("TMPDIR"); t != "" {
		return t
	}
	return filepath.Join(xdg.CacheHome, "sarus", "scratch")
}
