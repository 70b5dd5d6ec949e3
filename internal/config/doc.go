// Package config defines the simulator settings and provides helpers to
// load, validate and save them in YAML format.
//
// Settings cover the log level, the reset-path output policy of the safety
// controller, the read-only monitor listen addresses and the watcher interval.
package config
