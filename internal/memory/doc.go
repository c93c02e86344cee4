// Package memory sizes the Go heap for containers and holds back thumbnail
// work while memory is short.
//
// ConfigureFromEnv sets GOMEMLIMIT from a container limit passed as
// MEMORY_LIMIT (bytes, usually from the Kubernetes Downward API) scaled by
// MEMORY_RATIO, unless GOMEMLIMIT is already set.
//
// Monitor samples heap usage against that limit. Above the critical mark it
// pauses callers of Wait until usage falls below the high-water mark, which
// keeps concurrent resizes from pushing the process over its limit. With no
// limit configured Wait never blocks.
package memory
