// Package update replaces the running builder executable with the latest
// released build.
//
// Release metadata comes from the public releases API; the binary asset for
// the current platform is streamed straight into the executable swap. By
// default only strictly newer semantic versions are applied.
package update
