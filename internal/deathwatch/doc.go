// Package deathwatch turns fresh death signals into persisted list changes
// and announcements.
//
// A name seen dead once moves to the maybe list. Seen dead again on a later
// run, it moves to the confirmed list and is announced. A run with no fresh
// signal at all clears the whole maybe list. Confirmed names are never
// revisited. Lists are saved before any message goes out.
package deathwatch
