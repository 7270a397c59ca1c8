package recordmgr

import (
	"io"

	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/page"
	"github.com/xxlcore/xxl/core/xxlerr"
)

// Size returns the number of live, non-link records across every page.
func (m *Manager) Size() int {
	total := 0
	for _, pi := range m.pages.byID {
		total += pi.NumberOfRecords
	}
	return total
}

// SizeOfAllStoredRecords sums payload bytes across every page,
// including link record payloads.
func (m *Manager) SizeOfAllStoredRecords() int {
	total := 0
	for _, pi := range m.pages.byID {
		total += pi.NumberOfBytesUsedByRecords
	}
	return total
}

// NumberOfPages returns how many pages the pages map currently tracks.
func (m *Manager) NumberOfPages() int {
	return m.pages.size()
}

// SpaceUsage returns bytesStored / (pages * pageSize), or 0 if there
// are no pages.
func (m *Manager) SpaceUsage() float64 {
	pages := m.NumberOfPages()
	if pages == 0 {
		return 0
	}
	return float64(m.SizeOfAllStoredRecords()) / float64(pages*int(m.pageSize))
}

// CheckConsistency re-reads every page and verifies its
// accounting invariants against the in-memory summary. It returns the
// first mismatch found, wrapped as ErrInvariantViolation.
func (m *Manager) CheckConsistency() error {
	for id, pi := range m.pages.byID {
		pg, err := m.loadPage(id)
		if err != nil {
			return errors.Annotatef(xxlerr.ErrIoFailure, "page %d: %v", id, err)
		}
		// Pending in-memory reservations already count toward pi's
		// accounting but have not been written to the page directory
		// yet, so subtract them before comparing against what's on disk.
		pendingRecords, pendingBytes := 0, 0
		for _, r := range pi.reservations {
			pendingRecords++
			pendingBytes += len(r.payload)
		}
		liveReal := pi.NumberOfRecords - pendingRecords
		liveLinks := pi.NumberOfLinkRecords
		if pg.NumberOfRecords()-pg.NumberOfLinkRecords() != liveReal {
			return errors.Annotatef(xxlerr.ErrInvariantViolation, "page %d: record count mismatch (page=%d, pi=%d)", id, pg.NumberOfRecords()-pg.NumberOfLinkRecords(), liveReal)
		}
		if pg.NumberOfLinkRecords() != liveLinks {
			return errors.Annotatef(xxlerr.ErrInvariantViolation, "page %d: link count mismatch (page=%d, pi=%d)", id, pg.NumberOfLinkRecords(), liveLinks)
		}
		if pg.NumberOfBytesUsedByRecords() != pi.NumberOfBytesUsedByRecords-pendingBytes {
			return errors.Annotatef(xxlerr.ErrInvariantViolation, "page %d: bytes-used mismatch (page=%d, pi=%d)", id, pg.NumberOfBytesUsedByRecords(), pi.NumberOfBytesUsedByRecords-pendingBytes)
		}
		if used := page.Size(m.pageSize, pg.NumberOfRecords(), pg.NumberOfBytesUsedByRecords()); used > int(m.pageSize) {
			return errors.Annotatef(xxlerr.ErrInvariantViolation, "page %d: oversized (%d > %d)", id, used, m.pageSize)
		}
	}
	return nil
}

// Write serializes the pages map to sink, the only state this manager
// persists across a restart.
func (m *Manager) Write(sink io.Writer) error {
	snapshot := make(map[uint32]persistedPageInfo, len(m.pages.byID))
	for id, pi := range m.pages.byID {
		snapshot[uint32(id)] = persistedPageInfo{
			NumberOfRecords:            pi.NumberOfRecords,
			NumberOfLinkRecords:        pi.NumberOfLinkRecords,
			NumberOfBytesUsedByRecords: pi.NumberOfBytesUsedByRecords,
			MinRecordNumber:            pi.MinRecordNumber,
			MaxRecordNumber:            pi.MaxRecordNumber,
		}
	}
	return encodePagesMap(sink, snapshot)
}

// Read deserializes a pages map previously written by Write and
// re-initializes the placement strategy against it. Pending in-memory
// reservations are never persisted: Close discards them rather than
// writing anything beyond an explicit Write call.
func (m *Manager) Read(src io.Reader) error {
	snapshot, err := decodePagesMap(src)
	if err != nil {
		return err
	}
	m.pages = newPagesMap()
	for rawID, pp := range snapshot {
		pi := NewPageInformation(m.pageSize, m.numberOfDirectReserves)
		pi.NumberOfRecords = pp.NumberOfRecords
		pi.NumberOfLinkRecords = pp.NumberOfLinkRecords
		pi.NumberOfBytesUsedByRecords = pp.NumberOfBytesUsedByRecords
		pi.MinRecordNumber = pp.MinRecordNumber
		pi.MaxRecordNumber = pp.MaxRecordNumber
		m.pages.put(containerIDOf(rawID), pi)
	}
	m.strategy.Init(m.pages, m.pageSize)
	return nil
}
