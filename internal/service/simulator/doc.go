// Package simulator hosts the interactive console session: it reads panel
// keys, drives one machine and re-renders the status after every cycle.
// When monitor addresses are configured, the gRPC and HTTP monitors serve the
// same session until it ends.
package simulator
