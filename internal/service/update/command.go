package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"golang.org/x/mod/semver"

	"github.com/oshokin/revanced-builder/internal/config"
	"github.com/oshokin/revanced-builder/internal/httpclient"
	"github.com/oshokin/revanced-builder/internal/logger"
	"github.com/oshokin/revanced-builder/internal/version"
)

var errNoMatchingAsset = errors.New("release has no asset for this platform")

const (
	// defaultAPIBaseURL is the releases API endpoint.
	defaultAPIBaseURL = "https://api.github.com"

	// repoOwner and repoName locate the builder's own releases.
	repoOwner = "oshokin"
	repoName  = "revanced-builder"

	// requestTimeout covers both the release lookup and the binary download.
	requestTimeout = 5 * time.Minute

	// executableFileMode is the permission set of the replaced binary.
	executableFileMode os.FileMode = 0o755
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// APIBaseURL overrides the releases API endpoint; empty means the public one.
	APIBaseURL string
	// Force applies the latest release even when it is not newer.
	Force bool
}

// release is the slice of the releases API response the updater reads.
type release struct {
	TagName string  `json:"tag_name"`
	Assets  []asset `json:"assets"`
}

// asset is one downloadable file attached to a release.
type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Run updates the builder executable and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "updater")

	apiBaseURL := opts.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	client := httpclient.New(requestTimeout, config.DefaultUserAgent)

	logger.Info(ctx, "Checking the latest release")

	latest, err := fetchLatestRelease(ctx, client, apiBaseURL)
	if err != nil {
		return fmt.Errorf("look up latest release: %w", err)
	}

	current := version.Short()
	if !opts.Force && !isNewer(latest.TagName, current) {
		logger.InfoKV(ctx, "Already up to date", "version", current)
		return nil
	}

	assetName := platformAssetName(runtime.GOOS, runtime.GOARCH)

	downloadURL := findAsset(latest, assetName)
	if downloadURL == "" {
		return fmt.Errorf("%s: %w", assetName, errNoMatchingAsset)
	}

	logger.InfoKV(ctx, "Downloading release", "tag", latest.TagName, "asset", assetName)

	if err = applyAsset(ctx, client, downloadURL); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Updated", "from", current, "to", latest.TagName)

	return nil
}

// fetchLatestRelease reads the latest release metadata from the API.
func fetchLatestRelease(ctx context.Context, client *httpclient.Client, apiBaseURL string) (*release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", apiBaseURL, repoOwner, repoName)

	body, err := client.Text(ctx, url)
	if err != nil {
		return nil, err
	}

	var latest release
	if err = json.Unmarshal([]byte(body), &latest); err != nil {
		return nil, fmt.Errorf("decode release response: %w", err)
	}

	return &latest, nil
}

// findAsset returns the download URL of the named asset, or an empty string.
func findAsset(latest *release, name string) string {
	for _, candidate := range latest.Assets {
		if candidate.Name == name {
			return candidate.BrowserDownloadURL
		}
	}

	return ""
}

// applyAsset downloads the binary and swaps the current executable for it.
func applyAsset(ctx context.Context, client *httpclient.Client, url string) (err error) {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate current executable: %w", err)
	}

	response, err := client.Get(ctx, url)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := response.Body.Close()
		if closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	options := goupdate.Options{
		TargetPath: executable,
		TargetMode: executableFileMode,
	}

	if err = goupdate.Apply(response.Body, options); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	// The previous binary is parked next to the new one.
	oldFileName := executable + ".old"
	if _, statErr := os.Stat(oldFileName); statErr == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

// isNewer reports whether the release tag is a strictly newer semantic
// version than the running build. Unparseable tags never count as newer;
// the operator can still force the update.
func isNewer(remoteTag, localVersion string) bool {
	remote := normalizeVersion(remoteTag)
	local := normalizeVersion(localVersion)

	if !semver.IsValid(remote) || !semver.IsValid(local) {
		return false
	}

	return semver.Compare(remote, local) > 0
}

// normalizeVersion puts the "v" prefix semver requires on a bare version.
func normalizeVersion(value string) string {
	value = strings.TrimSpace(value)
	if value != "" && !strings.HasPrefix(value, "v") {
		value = "v" + value
	}

	return value
}

// platformAssetName is the released binary name for a platform.
func platformAssetName(goos, goarch string) string {
	name := fmt.Sprintf("%s-%s-%s", repoName, goos, goarch)
	if strings.Contains(strings.ToLower(goos), "windows") {
		name += ".exe"
	}

	return name
}
