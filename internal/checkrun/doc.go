// Package checkrun wires one complete check: load the roster, resolve every
// name through the Wikipedia cascade, reconcile the death lists, and announce
// confirmed deaths.
//
// Runs are serialized across processes with an advisory file lock. Every run
// gets a fresh run id that is attached to the context and stamped on logs.
package checkrun
