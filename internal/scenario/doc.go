// Package scenario loads scripted control-cycle sequences from YAML.
//
// A scenario lists steps; each step is either an operator panel command or an
// explicit sensor snapshot with raw integer codes, optionally followed by
// expectations on the resulting state and actuators.
package scenario
