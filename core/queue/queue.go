// Package queue implements the Run Queue and queue-factory contracts:
// a FIFO of sort records, either purely in memory or spilled to a file
// via a pluggable converter, plus a priority queue that always offers
// up the smallest run first.
package queue

// Converter serializes and deserializes one record to and from the
// queue's wire format; every file-backed queue needs one bound in.
type Converter interface {
	Encode(v interface{}) ([]byte, error)
	Decode(b []byte) (interface{}, error)
}

// Queue is a FIFO of records: a run is always monotonically
// non-decreasing under the active sort's comparator, though the queue
// itself is comparator-agnostic.
type Queue interface {
	Open() error
	Close() error
	Enqueue(v interface{}) error
	// Dequeue returns the next record, or ok=false once the queue is
	// exhausted.
	Dequeue() (v interface{}, ok bool, err error)
	Size() int
}

// SizeProvider is queried lazily, at the moment a queue actually opens
// a buffer, rather than once at construction, so the caller's current
// phase (initial run, intermediate merge, final merge) decides which
// buffer size applies.
type SizeProvider func() int

// Factory constructs a Queue given lazy input- and output-buffer-size
// providers.
type Factory func(inputBufferSize, outputBufferSize SizeProvider) (Queue, error)
