package workspace

import (
	"errors"
	"os"
	"path/filepath"
)

// Fixed names of the artifacts a build session stages in its workspace.
const (
	// PatcherJar is the executable patcher bundle.
	PatcherJar = "cli.jar"
	// PatchBundle holds the patches the patcher applies.
	PatchBundle = "patches.jar"
	// Integrations holds the companion package merged into the target.
	Integrations = "integrations.apk"
	// PatchedAPK is the patcher's output before it is moved to its final name.
	PatchedAPK = "revanced.apk"
)

// PackageAPK returns the workspace file name for the target application package.
func PackageAPK(app string) string {
	return app + ".apk"
}

// Workspace is a session-scoped temporary directory.
type Workspace struct {
	dir     string
	tracked []string
}

// New creates a fresh temporary directory with the given name prefix.
func New(prefix string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, err
	}

	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// TrackDir registers an extra directory to remove during Cleanup.
func (w *Workspace) TrackDir(path string) {
	w.tracked = append(w.tracked, path)
}

// Cleanup removes the workspace and every tracked directory.
// It is safe to call more than once.
func (w *Workspace) Cleanup() error {
	errs := make([]error, 0, len(w.tracked)+1)
	errs = append(errs, os.RemoveAll(w.dir))

	for _, path := range w.tracked {
		errs = append(errs, os.RemoveAll(path))
	}

	return errors.Join(errs...)
}
