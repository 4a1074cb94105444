// Package config loads and validates the runtime configuration from the
// process environment.
//
// This package implements:
//   - Collect-all detection of missing required keys (one diagnostic pass)
//   - Eager typed parsing at the load boundary (ports, durations)
//   - Struct-shape validation mapped back to environment key names
//   - Password-safe log representations of connection descriptors
//
// The resulting Config is immutable: it is built once at startup and shared
// read-only with every consumer.
package config
