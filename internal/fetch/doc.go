// Package fetch downloads a session's artifacts concurrently.
//
// Callers submit tasks while doing other work, then drain the queue once to
// collect completion reports. The first failed download cancels the rest of
// the queue; partial sessions are never reported as success.
package fetch
