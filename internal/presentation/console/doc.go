// Package console renders the simulator screen: machine state coloured by
// severity tier, actuator and sensor blocks, and the injection menu.
package console
