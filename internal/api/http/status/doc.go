// Package status serves the read-only HTTP monitor: the latest driver
// snapshot as JSON, a liveness probe that fails while a critical state is
// latched, and Prometheus metrics.
package status
