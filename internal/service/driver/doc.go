// Package driver runs control cycles against one safety controller.
//
// The Driver serializes access to the controller, composes each cycle's
// sensor snapshot from operator panel commands, logs transitions and notifies
// observers such as metrics and health reporters.
package driver
