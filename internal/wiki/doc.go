// Package wiki checks roster names against Wikipedia.
//
// Client issues batched MediaWiki revision queries against one language
// edition and classifies each page as alive, dead, or missing/redirect using
// a data-driven Markers table. Resolver cascades names through an ordered
// list of editions, re-querying only those the previous edition could not
// resolve.
package wiki
