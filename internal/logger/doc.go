// Package logger wraps zap for the simulator binaries:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and a shared atomic level,
//   - leveled convenience functions (Infof, WarnKV, ErrorKV, ...).
//
// Services take a context and log through the logger stored in it, so a
// driver session or a monitor can tag every line it emits.
package logger
