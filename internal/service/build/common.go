package build

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/revanced-builder/internal/logger"
	"github.com/oshokin/revanced-builder/internal/workspace"
)

const (
	// MarkerFilename marks that a build is running right now to avoid
	// parallel runs fighting over the patcher cache.
	MarkerFilename = "revanced-builder-marker.bin"

	// markerFileMode is the permission set of the run marker.
	markerFileMode os.FileMode = 0o600

	// workspacePrefix names the session's temporary directory.
	workspacePrefix = "revanced-builder-"

	// patcherCacheDir is dropped by the external patcher into the working
	// directory and must not survive the session.
	patcherCacheDir = "revanced-cache"
)

// releaseComponent ties a tool artifact to the repository releasing it and
// the workspace file it is staged as.
type releaseComponent struct {
	artifact string
	repo     string
	fileName string
}

// releaseComponents lists the patcher toolchain downloaded for every build.
func releaseComponents() []releaseComponent {
	return []releaseComponent{
		{artifact: "cli", repo: "revanced/revanced-cli", fileName: workspace.PatcherJar},
		{artifact: "patches", repo: "revanced/revanced-patches", fileName: workspace.PatchBundle},
		{artifact: "integrations", repo: "revanced/revanced-integrations", fileName: workspace.Integrations},
	}
}

// IsBuilderRunningNow checks presence of a run marker and attempts recovery
// when the process that wrote it is gone.
func IsBuilderRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of a run marker")

	contents, err := os.ReadFile(MarkerFilename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Infof(ctx, "Unable to read the run marker: %v", err)
		}

		return false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err == nil && markerProcessAlive(pid) {
		return true
	}

	logger.Info(ctx, "The run marker is stale, removing it")

	return os.Remove(MarkerFilename) != nil
}

// markerProcessAlive reports whether the process recorded in the marker is
// still running. The current process never counts: a reused PID must not
// block the session doing the check.
func markerProcessAlive(pid int) bool {
	if pid == os.Getpid() {
		return false
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		// Cannot verify, assume the other run is alive.
		return true
	}

	return process != nil
}

// writeRunMarker records this process as the active build.
func writeRunMarker() error {
	return os.WriteFile(MarkerFilename, []byte(strconv.Itoa(os.Getpid())), markerFileMode)
}
