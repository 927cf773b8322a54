package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir switches the working directory to dir until the test ends, standing
// in for testing.T.Chdir, which needs a Go 1.24 toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()

	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() {
		_ = os.Chdir(previous)
	})
}

// TestValidate checks default filling and URL format validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	err := Validate(nil)
	require.Error(t, err)

	// Empty config is normalized to pure defaults.
	cfg := new(Config)

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	// Bad mirror URL.
	cfg = &Config{
		MirrorBaseURL: "not a url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Overrides survive validation.
	cfg = &Config{
		MirrorBaseURL: "http://127.0.0.1:8080",
		Timeout:       time.Second,
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080", cfg.MirrorBaseURL)
	require.Equal(t, time.Second, cfg.Timeout)
	require.Equal(t, DefaultOutputFile, cfg.OutputFile)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ManifestURL:   "https://manifests.local/patches.md",
		MirrorBaseURL: "https://mirror.local",
		OutputFile:    "patched.apk",
		JavaPath:      "/opt/jdk/bin/java",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ManifestURL, loaded.ManifestURL)
	require.Equal(t, cfg.MirrorBaseURL, loaded.MirrorBaseURL)
	require.Equal(t, cfg.OutputFile, loaded.OutputFile)
	require.Equal(t, cfg.JavaPath, loaded.JavaPath)

	// Unset fields come back defaulted.
	require.Equal(t, DefaultReleasesBaseURL, loaded.ReleasesBaseURL)
	require.Equal(t, DefaultTimeout, loaded.Timeout)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingFiles verifies defaults for the default path and an error for explicit paths.
func TestLoad_MissingFiles(t *testing.T) {
	// Changes the working directory, so no t.Parallel.
	chdir(t, t.TempDir())

	// Missing file at the default path is not an error: the tool runs config-less.
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	// An explicitly requested file must exist.
	_, err = Load("nonexistent-settings.yaml")
	require.Error(t, err)
}
