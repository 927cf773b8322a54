package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/revanced-builder/internal/httpclient"
)

// ErrNoVersionFound is returned when no patch names a concrete package version.
var ErrNoVersionFound = errors.New("no patch names a concrete package version")

// patchTableColumns is the number of cells in a patch table row.
const patchTableColumns = 4

// headerRows is the number of leading table rows that carry no patch data:
// the column header and the Markdown separator line.
const headerRows = 2

// Patch is one row of the patch table.
type Patch struct {
	// Name is the patch identifier passed to the patcher.
	Name string
	// Description is the human-readable summary shown in the selection menu.
	Description string
	// App is the package identifier the patch targets.
	App string
	// Version is the package version the patch supports, or "all".
	Version string
}

// Catalog holds the available patches partitioned by application variant.
type Catalog struct {
	youtube []Patch
	music   []Patch
}

// Load parses the manifest text into a catalog.
//
// A line is a table row when splitting it on "|" yields exactly four interior
// cells. Cell values are trimmed of whitespace and stripped of backticks.
// Rows that do not match are ignored, Markdown prose included.
func Load(manifest string) *Catalog {
	catalog := &Catalog{}

	var kept int

	for _, line := range strings.Split(manifest, "\n") {
		cells := strings.Split(line, "|")
		if len(cells) != patchTableColumns+2 {
			continue
		}

		row := make([]string, 0, patchTableColumns)
		for _, cell := range cells[1 : len(cells)-1] {
			row = append(row, strings.ReplaceAll(strings.TrimSpace(cell), "`", ""))
		}

		kept++
		if kept <= headerRows {
			continue
		}

		patch := Patch{
			Name:        row[0],
			Description: row[1],
			App:         row[2],
			Version:     row[3],
		}

		if strings.Contains(patch.App, "music") {
			catalog.music = append(catalog.music, patch)
		} else {
			catalog.youtube = append(catalog.youtube, patch)
		}
	}

	return catalog
}

// Fetch downloads the manifest and parses it into a catalog.
func Fetch(ctx context.Context, client *httpclient.Client, url string) (*Catalog, error) {
	manifest, err := client.Text(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download patch manifest: %w", err)
	}

	return Load(manifest), nil
}

// Patches returns the patches targeting the given variant, in manifest order.
func (c *Catalog) Patches(v Variant) []Patch {
	if v == YouTubeMusic {
		return c.music
	}

	return c.youtube
}

// VersionFor returns the package version to download for the given variant:
// the version of the first patch pinned to a concrete one.
func (c *Catalog) VersionFor(v Variant) (string, error) {
	for _, patch := range c.Patches(v) {
		if patch.Version != "all" {
			return patch.Version, nil
		}
	}

	return "", fmt.Errorf("%s: %w", v, ErrNoVersionFound)
}
