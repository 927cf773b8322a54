package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkspace_Lifecycle(t *testing.T) {
	t.Parallel()

	ws, err := New("builder-test-")
	require.NoError(t, err)
	require.DirExists(t, ws.Dir())

	staged := ws.Path(PatcherJar)
	require.Equal(t, filepath.Join(ws.Dir(), PatcherJar), staged)
	require.NoError(t, os.WriteFile(staged, []byte("jar"), 0o600))

	extra := filepath.Join(t.TempDir(), "revanced-cache")
	require.NoError(t, os.MkdirAll(filepath.Join(extra, "nested"), 0o755))
	ws.TrackDir(extra)

	require.NoError(t, ws.Cleanup())
	require.NoDirExists(t, ws.Dir())
	require.NoDirExists(t, extra)

	// A second cleanup must not fail.
	require.NoError(t, ws.Cleanup())
}

func TestPackageAPK(t *testing.T) {
	t.Parallel()

	require.Equal(t, "youtube.apk", PackageAPK("youtube"))
	require.Equal(t, "youtube-music.apk", PackageAPK("youtube-music"))
}
