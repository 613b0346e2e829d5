// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities.
//
// Services accept a context and extract the logger from it, so every
// registry transaction logs with the fields of the request that caused it.
package logger
