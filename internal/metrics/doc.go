// Package metrics exposes controller cycles as Prometheus metrics.
package metrics
