// Package watcher polls a running gRPC monitor and reports state changes.
package watcher
