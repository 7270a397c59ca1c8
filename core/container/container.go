// Package container defines the block container contract - a keyed
// blob store external to the record manager - along with
// two reference implementations (in-memory and file-backed) used to
// exercise and test the record manager and merge sorter.
package container

// ID addresses a block within a container. It is opaque to callers of
// the record manager; the container alone gives it meaning.
type ID uint32

// Container is the external block-container contract. Implementations
// are expected to be single-threaded-cooperative: the record manager
// never issues overlapping calls against one container instance.
type Container interface {
	// Insert stores the exact bytes of block, which must be exactly
	// BlockSize() bytes long, and returns a freshly allocated, stable id.
	Insert(block []byte) (ID, error)

	// Get returns the bytes last stored at id. Fails with
	// xxlerr.ErrNotFound if id was never issued or has been removed.
	Get(id ID) ([]byte, error)

	// Update replaces the bytes stored at id in place. block must be
	// exactly BlockSize() bytes long.
	Update(id ID, block []byte) error

	// Remove invalidates id; subsequent Get(id) fails.
	Remove(id ID) error

	// Clear removes every block the container holds.
	Clear() error

	// BlockSize is the fixed length every stored block must have.
	BlockSize() uint32

	// IDConverter is the fixed-size codec for this container's ids.
	IDConverter() IDConverter

	// Close releases any resources (open file handles, etc).
	Close() error
}

// IDConverter is a fixed-size codec for container ids.
type IDConverter interface {
	Size() int
	Encode(id ID) []byte
	Decode(b []byte) ID
}

// Uint32IDConverter encodes an ID as 4 big-endian bytes. Both reference
// containers in this package use it.
type Uint32IDConverter struct{}

func (Uint32IDConverter) Size() int { return 4 }

func (Uint32IDConverter) Encode(id ID) []byte {
	b := make([]byte, 4)
	b[0] = byte(id >> 24)
	b[1] = byte(id >> 16)
	b[2] = byte(id >> 8)
	b[3] = byte(id)
	return b
}

func (Uint32IDConverter) Decode(b []byte) ID {
	return ID(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}
