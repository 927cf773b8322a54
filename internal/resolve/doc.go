// Package resolve turns logical artifact names into concrete download URLs
// by scraping the pages that publish them.
//
// Both the mirror site and the release pages are plain HTML with stable
// structure but no API, so resolvers navigate the parsed document by element
// shape and class names. Page layouts drift; every lookup failure names the
// page it happened on.
package resolve
