// Package roster loads the season roster (teams and the people they drafted)
// and flattens it into the deduplicated subject list every check run queries.
package roster
