// Package xxlerr defines the sentinel error kinds shared by the block
// container, page layout, record manager, and merge sorter.
package xxlerr

import "errors"

// Lookup/addressing errors.
var (
	// ErrNotFound is returned by get/update/remove on an unknown id, and
	// by cursors/queues consumed past their end.
	ErrNotFound = errors.New("xxl: not found")
)

// Capacity and size errors. These abort the triggering operation without
// side effects - no page mutation is persisted before the final write
// succeeds.
var (
	// ErrSizeExceeded is returned when a record is larger than
	// MaxRecordSize(pageSize), or when placing it would push a page's
	// accounting past pageSize.
	ErrSizeExceeded = errors.New("xxl: record size exceeds page capacity")

	// ErrCapacityExceeded is returned when a page's record count would
	// exceed the maximum representable record number.
	ErrCapacityExceeded = errors.New("xxl: page record capacity exceeded")
)

// Fatal errors. The manager makes no attempt to self-heal; callers
// should discard the instance.
var (
	// ErrInvariantViolation signals an accounting mismatch caught by a
	// consistency check or an internal sanity guard.
	ErrInvariantViolation = errors.New("xxl: invariant violation")

	// ErrLinkDepthExceeded signals that a link record's target was
	// itself a link - link chains must be exactly one hop.
	ErrLinkDepthExceeded = errors.New("xxl: link depth exceeded")
)

// ErrIoFailure wraps a failure bubbled up from the block container, or a
// checksum mismatch detected while reading a page back.
var ErrIoFailure = errors.New("xxl: I/O failure")
