// Package catalog loads the patch manifest published alongside the patch
// bundle and answers which patches and package version apply to a target
// application variant.
//
// The manifest is a Markdown document whose patch table is recognized purely
// by shape: rows with exactly four pipe-delimited cells. The first two such
// rows are the table header and its separator.
package catalog
