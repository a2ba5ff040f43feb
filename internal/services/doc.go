// Package services defines shared utilities consumed by the project store,
// persistence, and asset pipeline packages.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so callers can tell IO
//     failures from malformed project documents with errors.Is.
//   - Context helpers that stamp project directories, scene identifiers, and
//     correlation identifiers for logging.
//
// Use these helpers when wiring new storage logic so error classification and
// observability stay uniform across packages.
package services
