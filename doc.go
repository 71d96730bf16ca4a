// Package dialqueue implements the connection-establishment scheduler at
// the heart of a peer-to-peer networking stack: given a peer identity
// and/or a set of network addresses, it produces at most one open,
// upgraded transport connection, coordinating address discovery,
// resolution, filtering, concurrency limits, deduplication of in-flight
// attempts, and cancellation.
//
// DialQueue is the public entry point. Its supporting machinery -- the
// priority job queue, the address calculator, the attempt loop, the abort
// composer and peer store feedback -- lives in the dial subpackage.
package dialqueue
