// Package store implements the in-memory block-structured filesystem core:
// a single contiguous byte region holding a header, a fixed descriptor
// table, and a fixed array of super-blocks, each owning a bit-vector free
// map over a fixed run of equal-sized blocks.
//
// The core is single-threaded and volatile: there is no locking, no wire
// format, and nothing is ever written to disk. Everything that touches a
// real filesystem lives outside this package (see the sibling namefile,
// dirfs, blockio, and persist packages). The only host state read here is
// the clock, for descriptor creation times, and the page size, for a
// diagnostic log line.
package store
