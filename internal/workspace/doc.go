// Package workspace manages the temporary directory a build session works in.
//
// Downloaded artifacts are written into the workspace under fixed names so
// the patcher invocation can be assembled without tracking paths around.
// Cleanup also covers extra directories registered during the run, such as
// the cache directory the external patcher drops into the working directory.
package workspace
