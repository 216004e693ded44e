// Package preflight provides readiness checks for the files and external
// services a check run depends on.
//
// `fantamorto doctor` runs every check and prints the results. Checks never
// write to the lists or send notifications, so they are safe to run against
// production configuration.
package preflight
