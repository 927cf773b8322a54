package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/oshokin/revanced-builder/internal/catalog"
	"github.com/oshokin/revanced-builder/internal/fetch"
	"github.com/oshokin/revanced-builder/internal/httpclient"
)

var (
	errNoDownloadButton = errors.New("download button not found")
	errNoDownloadLink   = errors.New("download link not found")
	errNoReleaseAssets  = errors.New("release page lists no downloadable assets")
)

// sourceArchiveRows is how many trailing rows of a release's file list are
// auto-generated source archives rather than uploaded assets.
const sourceArchiveRows = 2

// MirrorAPK returns a resolver for the variant's package on the mirror site.
//
// The mirror publishes one release page per version. Reaching the file takes
// two hops: the release page carries a highlighted download button, and the
// page behind it links the actual file from its notes paragraph.
func MirrorAPK(client *httpclient.Client, baseURL string, variant catalog.Variant, version string) fetch.Resolver {
	return func(ctx context.Context) (string, error) {
		app := variant.Slug()
		slug := versionSlug(version)
		pageURL := fmt.Sprintf("%s/apk/google-inc/%s/%s-%s-release/%s-%s-android-apk-download/",
			baseURL, app, app, slug, app, slug)

		releasePage, err := fetchPage(ctx, client, pageURL)
		if err != nil {
			return "", err
		}

		button := firstMatch(releasePage, func(node *html.Node) bool {
			return isElement(node, "a") && hasClass(node, "accent_bg")
		})
		if button == nil {
			return "", fmt.Errorf("%s: %w", pageURL, errNoDownloadButton)
		}

		confirmURL := baseURL + attr(button, "href")

		confirmPage, err := fetchPage(ctx, client, confirmURL)
		if err != nil {
			return "", err
		}

		notes := firstMatch(confirmPage, func(node *html.Node) bool {
			return isElement(node, "p") && hasClass(node, "notes")
		})
		if notes == nil {
			return "", fmt.Errorf("%s: %w", confirmURL, errNoDownloadLink)
		}

		link := firstMatch(notes, func(node *html.Node) bool {
			return isElement(node, "a") && attr(node, "href") != ""
		})
		if link == nil {
			return "", fmt.Errorf("%s: %w", confirmURL, errNoDownloadLink)
		}

		return baseURL + attr(link, "href"), nil
	}
}

// LatestReleaseAsset returns a resolver for the newest uploaded asset of a
// repository's latest release.
//
// The release page lists one row per file and ends with the two
// auto-generated source archives, so the wanted asset is the last row
// before them.
func LatestReleaseAsset(client *httpclient.Client, baseURL, repo string) fetch.Resolver {
	return func(ctx context.Context) (string, error) {
		pageURL := fmt.Sprintf("%s/%s/releases/latest", baseURL, repo)

		page, err := fetchPage(ctx, client, pageURL)
		if err != nil {
			return "", err
		}

		links := assetLinks(page)
		if len(links) <= sourceArchiveRows {
			return "", fmt.Errorf("%s: %w", pageURL, errNoReleaseAssets)
		}

		return baseURL + links[len(links)-sourceArchiveRows-1], nil
	}
}

// fetchPage downloads and parses one HTML page.
func fetchPage(ctx context.Context, client *httpclient.Client, url string) (*html.Node, error) {
	page, err := client.Text(ctx, url)
	if err != nil {
		return nil, err
	}

	document, err := parsePage(page)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	return document, nil
}

// assetLinks collects the file link of every release row: the second element
// of the row's first division, when that element is an anchor.
func assetLinks(document *html.Node) []string {
	var links []string

	walk(document, func(node *html.Node) bool {
		if !isElement(node, "li") || !hasClass(node, "Box-row") {
			return true
		}

		children := elementChildren(node)
		if len(children) == 0 || !isElement(children[0], "div") {
			return true
		}

		cells := elementChildren(children[0])
		if len(cells) < 2 || !isElement(cells[1], "a") {
			return true
		}

		if href := attr(cells[1], "href"); href != "" {
			links = append(links, href)
		}

		return true
	})

	return links
}

// versionSlug converts a dotted package version into the mirror's URL form:
// components after the first are left-padded to two digits and joined with
// dashes, so 17.3.4 becomes 17-03-04.
func versionSlug(version string) string {
	components := strings.Split(version, ".")

	for i := 1; i < len(components); i++ {
		for len(components[i]) < 2 {
			components[i] = "0" + components[i]
		}
	}

	return strings.Join(components, "-")
}
