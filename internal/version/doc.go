// Package version exposes build metadata of eldig-sim.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
package version
