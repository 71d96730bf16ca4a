// Package dial contains the logic that turns a peer ID and/or a set of
// multiaddrs into a single upgraded connection.
//
// The package is organized around the six cooperating pieces described by
// the dial queue design: a priority job Queue (queue.go, heap.go, job.go), an
// address Calculator (calculator.go, address.go, resolver.go, sorter.go), an
// Attempt loop (attempt.go), an abort composer (abort.go), peer store
// feedback (feedback.go) and an optional dial Backoff (backoff.go).
//
// Callers normally don't reach for this package directly; see the
// top-level dialqueue package for the public entry point.
package dial
