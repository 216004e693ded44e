// Package main hosts the fantamorto CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds run dependencies
// through internal/checkrun, and renders results for the terminal. Commands
// stay thin: lookups, state transitions, and persistence live in the
// internal packages.
package main
