// Package daemon runs check runs on a fixed schedule for `fantamorto watch`.
//
// A watch process holds its own flock so two schedulers never share a state
// directory. Each tick hands off to a checkrun.Runner, which still takes the
// per-run lock, so a manual `fantamorto run` and a scheduled one cannot
// overlap either. Failed runs are logged and the loop keeps going.
package daemon
