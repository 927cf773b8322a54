package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the endpoints and tool paths used by the builder.
type Config struct {
	// ManifestURL is where the plain-text patch manifest is fetched from.
	ManifestURL string `yaml:"manifest_url"`
	// MirrorBaseURL is the root of the APK mirror site used to resolve package downloads.
	MirrorBaseURL string `yaml:"mirror_base_url"`
	// ReleasesBaseURL is the root of the code-hosting site whose release pages list patcher artifacts.
	ReleasesBaseURL string `yaml:"releases_base_url"`
	// OutputFile is the name of the patched package written to the working directory.
	OutputFile string `yaml:"output_file"`
	// JavaPath is the executable used to launch the external patcher.
	JavaPath string `yaml:"java_path"`
	// UserAgent is sent with every outbound HTTP request.
	UserAgent string `yaml:"user_agent"`
	// Timeout bounds a single HTTP request, including full artifact downloads.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for builder settings.
	DefaultConfigFilename = "revanced-builder-settings.yaml"

	// DefaultManifestURL is the canonical location of the patch manifest.
	DefaultManifestURL = "https://raw.githubusercontent.com/revanced/revanced-patches/main/README.md"

	// DefaultMirrorBaseURL is the APK mirror site serving package releases.
	DefaultMirrorBaseURL = "https://www.apkmirror.com"

	// DefaultReleasesBaseURL is the code-hosting site serving patcher artifact releases.
	DefaultReleasesBaseURL = "https://github.com"

	// DefaultOutputFile is the name of the patched package in the working directory.
	DefaultOutputFile = "revanced.apk"

	// DefaultJavaPath assumes java is resolvable through PATH.
	DefaultJavaPath = "java"

	// DefaultUserAgent mirrors what desktop browsers send; some mirrors reject blank agents.
	DefaultUserAgent = "Mozilla"

	// DefaultTimeout must cover the slowest artifact download, not just page fetches.
	DefaultTimeout = 15 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns a configuration with every field set to its default value.
func Default() *Config {
	return &Config{
		ManifestURL:     DefaultManifestURL,
		MirrorBaseURL:   DefaultMirrorBaseURL,
		ReleasesBaseURL: DefaultReleasesBaseURL,
		OutputFile:      DefaultOutputFile,
		JavaPath:        DefaultJavaPath,
		UserAgent:       DefaultUserAgent,
		Timeout:         DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// The builder runs config-less: a missing file at the default path yields defaults,
// while an explicitly requested path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset fields and checks that URL fields parse.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	// Every field has a usable default; validation normalizes rather than rejects.
	if cfg.ManifestURL == "" {
		cfg.ManifestURL = DefaultManifestURL
	}

	if cfg.MirrorBaseURL == "" {
		cfg.MirrorBaseURL = DefaultMirrorBaseURL
	}

	if cfg.ReleasesBaseURL == "" {
		cfg.ReleasesBaseURL = DefaultReleasesBaseURL
	}

	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}

	if cfg.JavaPath == "" {
		cfg.JavaPath = DefaultJavaPath
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	for name, value := range map[string]string{
		"manifest URL":      cfg.ManifestURL,
		"mirror base URL":   cfg.MirrorBaseURL,
		"releases base URL": cfg.ReleasesBaseURL,
	} {
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}
