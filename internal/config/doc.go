// Package config resolves threadboard settings.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML
// file, an optional .env file, THREADBOARD_* environment variables and
// finally command-line flags applied by the caller. The merged result is
// checked against an embedded CUE schema.
package config
