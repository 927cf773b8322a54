// Package selection turns the operator's keep list into the set of patches
// to exclude from the build.
//
// The menu contract is forgiving: tokens that are not non-negative integers
// are dropped without complaint, and an empty answer keeps nothing, which
// excludes every patch. Indices outside the menu are the one hard error.
package selection
