// Package replay runs scripted scenarios through a fresh driver and checks
// their expectations.
package replay
