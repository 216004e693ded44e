// Package lists persists the confirmed-dead and maybe-dead name lists.
//
// Store is the backend contract: a key names one document holding a JSON
// array of strings, and writes overwrite the whole document. SQLiteStore is
// the local default; the Google Drive and Redis backends live under
// internal/services. State loads and saves the pair of lists a check run
// reconciles.
package lists
