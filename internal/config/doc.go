// Package config defines builder settings and provides helpers to load,
// validate and save them in YAML format.
//
// Every collaborator endpoint (patch manifest, APK mirror, release index) is a
// field so tests can point the whole pipeline at local fixtures. All fields
// have defaults; the builder runs without a settings file at all.
package config
