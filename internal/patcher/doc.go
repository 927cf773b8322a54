// Package patcher drives the external patcher process over a staged
// workspace and relocates the patched package when it succeeds.
//
// The patcher is a Java program; its stdout is relayed line by line so the
// operator can watch multi-minute runs progress. A non-zero exit leaves the
// working directory untouched.
package patcher
