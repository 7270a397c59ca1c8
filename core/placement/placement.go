// Package placement implements the record manager's Placement Strategy
// contract: choosing which page hosts a new record.
package placement

import "github.com/xxlcore/xxl/core/container"

// PageInfo is the subset of per-page accounting a strategy needs to
// judge whether a record fits. recordmgr.PageInformation satisfies
// this via its own method of the same name.
type PageInfo interface {
	BytesFreeAfterPossibleReservation(size int) int
}

// PagesMap is the read-only view over the record manager's pages map
// that a strategy consults and is notified about.
type PagesMap interface {
	ForEach(func(id container.ID, pi PageInfo))
	Get(id container.ID) (PageInfo, bool)
}

// Strategy decides which page should host a new record of a given
// size.
type Strategy interface {
	// Init is called once after construction or after reloading a pages
	// map from persisted state.
	Init(pages PagesMap, pageSize uint32)

	// GetPageForRecord returns a page with enough free space for a
	// record of size bytes, or ok=false if none exists - the caller
	// must then allocate a fresh page.
	GetPageForRecord(size int) (id container.ID, ok bool)

	PageInserted(id container.ID, pi PageInfo)
	PageRemoved(id container.ID, pi PageInfo)
	RecordUpdated(id container.ID, pi PageInfo, recordNr int32, bytesDelta int)
}
