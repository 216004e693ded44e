// Package services defines shared utilities consumed by the check run and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, component names, and the Wikipedia
//     edition being queried for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the kinds the entry point reacts to (configuration, lookup,
//     unresolved subjects, persistence, notification).
//
// Subpackages hold the optional list-store backends (Google Drive, Redis).
package services
