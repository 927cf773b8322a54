// Package build implements the end-to-end patching pipeline: load settings,
// fetch the patch catalog, ask the operator what to build, download the
// session artifacts concurrently, run the external patcher and move the
// patched package into the working directory.
//
// The operator answers the patch selection while the downloads are already
// running; the two longest parts of a session overlap.
package build
