// Package dialysis contains the safety state machine of the hemodialysis
// machine.
//
// Evaluate maps the current MachineState and one Sensors snapshot to the next
// state and a fully derived Actuators snapshot. Controller wraps Evaluate and
// owns the state between control cycles. Nothing in this package performs
// I/O; hosts supply sensors and render actuators.
package dialysis
