package tidmgr

import "github.com/xxlcore/xxl/core/container"

// PublicID is the externally visible, opaque identifier a caller of the
// record manager holds. Its encoding is private to the Manager
// implementation in use.
type PublicID []byte

// Iterator walks the live public ids a Manager knows about:
// HasNext/Next/Close, single forward pass.
type Iterator interface {
	HasNext() bool
	Next() (PublicID, error)
	Close() error
}

// Manager owns the externally visible identifier namespace.
type Manager interface {
	Insert(tid TID) (PublicID, error)
	Query(id PublicID) (TID, bool)
	Update(id PublicID, newTid TID) error
	Remove(id PublicID) error
	RemoveAll() error

	// Ids returns an iterator over every live id, or nil if this mode
	// keeps no such table - callers must then discover ids by walking
	// pages directly.
	Ids() Iterator

	// UseLinks reports whether the record manager must leave a link
	// record behind when a record migrates to another page.
	UseLinks() bool

	IDConverter() container.IDConverter
	IDSize() int
	Close() error
}

// sliceIterator adapts a pre-collected slice of ids to Iterator.
type sliceIterator struct {
	ids []PublicID
	pos int
}

func newSliceIterator(ids []PublicID) *sliceIterator {
	return &sliceIterator{ids: ids}
}

func (it *sliceIterator) HasNext() bool { return it.pos < len(it.ids) }

func (it *sliceIterator) Next() (PublicID, error) {
	if !it.HasNext() {
		return nil, errNotFound
	}
	id := it.ids[it.pos]
	it.pos++
	return id, nil
}

func (it *sliceIterator) Close() error { return nil }
