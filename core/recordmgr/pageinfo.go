package recordmgr

import "github.com/xxlcore/xxl/core/page"

// sentinelRecordNr marks an empty reservation slot, or a page with no
// live records.
const sentinelRecordNr int32 = -1

// reservation is a record number, and its already-produced payload,
// allocated in memory but not yet written to the page's directory.
// The payload is held here because Reserve's producer runs once, up
// front, before the record number is even chosen.
type reservation struct {
	recordNr int32
	payload  []byte
}

// PageInformation is the in-memory accounting record kept per page.
// Pages themselves are read from the container on demand;
// PageInformation is the cheap, always-resident summary a Strategy and
// the Manager consult without touching the container.
type PageInformation struct {
	pageSize uint32

	NumberOfRecords            int
	NumberOfLinkRecords        int
	NumberOfBytesUsedByRecords int
	MinRecordNumber            int32
	MaxRecordNumber            int32

	reservations []reservation // fixed capacity K = numberOfDirectReserves
}

// NewPageInformation returns an empty accounting record with room for
// up to maxReservations in-memory reservations.
func NewPageInformation(pageSize uint32, maxReservations int) *PageInformation {
	return &PageInformation{
		pageSize:        pageSize,
		MinRecordNumber: sentinelRecordNr,
		MaxRecordNumber: sentinelRecordNr,
		reservations:    make([]reservation, 0, maxReservations),
	}
}

// totalRecords counts everything that already occupies a directory
// slot's worth of accounting: real records and links. A successful
// tryReserve is folded into NumberOfRecords/NumberOfBytesUsedByRecords
// by updateAccounting before the reservation is ever drained, so
// pi.reservations must not be added again here.
func (pi *PageInformation) totalRecords() int {
	return pi.NumberOfRecords + pi.NumberOfLinkRecords
}

func (pi *PageInformation) totalBytesUsed() int {
	return pi.NumberOfBytesUsedByRecords
}

// BytesFreeAfterPossibleReservation reports how negative or positive
// the page's free space would be after adding one more record of size
// bytes - satisfies placement.PageInfo.
func (pi *PageInformation) BytesFreeAfterPossibleReservation(size int) int {
	used := page.Size(pi.pageSize, pi.totalRecords()+1, pi.totalBytesUsed()+size)
	return int(pi.pageSize) - used
}

// updateAccounting applies a delta to the page's live counters and,
// for additions, grows the min/max record-number bounds to cover
// recordNr.
func (pi *PageInformation) updateAccounting(recordNr int32, deltaRecords, deltaBytes, deltaLinks int) {
	pi.NumberOfRecords += deltaRecords
	pi.NumberOfLinkRecords += deltaLinks
	pi.NumberOfBytesUsedByRecords += deltaBytes

	if deltaRecords > 0 || deltaLinks > 0 {
		if pi.MinRecordNumber == sentinelRecordNr || recordNr < pi.MinRecordNumber {
			pi.MinRecordNumber = recordNr
		}
		if pi.MaxRecordNumber == sentinelRecordNr || recordNr > pi.MaxRecordNumber {
			pi.MaxRecordNumber = recordNr
		}
	}
	if pi.NumberOfRecords+pi.NumberOfLinkRecords == 0 {
		pi.MinRecordNumber = sentinelRecordNr
		pi.MaxRecordNumber = sentinelRecordNr
	}
}

// isEmpty reports whether the page holds no live records at all
// (including pending reservations) and should be reclaimed.
func (pi *PageInformation) isEmpty() bool {
	return pi.NumberOfRecords == 0 && pi.NumberOfLinkRecords == 0 && len(pi.reservations) == 0
}

// tryReserve picks a free record number the same way Page.GetFreeRecordNumber
// would (min-1 when min>0, else max+1), appends a reservation entry
// holding payload for it, and returns it. Returns ok=false if the
// reservation slot array is full or the new record would not fit.
func (pi *PageInformation) tryReserve(payload []byte) (recordNr int32, ok bool) {
	if len(pi.reservations) == cap(pi.reservations) {
		return 0, false
	}
	if pi.BytesFreeAfterPossibleReservation(len(payload)) < 0 {
		return 0, false
	}

	min, max := pi.effectiveMinMax()
	if min > 0 {
		recordNr = min - 1
	} else {
		recordNr = max + 1
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	pi.reservations = append(pi.reservations, reservation{recordNr: recordNr, payload: stored})
	if min == sentinelRecordNr || recordNr < min {
		min = recordNr
	}
	if max == sentinelRecordNr || recordNr > max {
		max = recordNr
	}
	pi.MinRecordNumber, pi.MaxRecordNumber = min, max
	return recordNr, true
}

// findReservation returns the buffered payload for a still-unmaterialized
// reservation at recordNr, if one exists.
func (pi *PageInformation) findReservation(recordNr int32) ([]byte, bool) {
	for _, r := range pi.reservations {
		if r.recordNr == recordNr {
			return r.payload, true
		}
	}
	return nil, false
}

// removeReservation deletes a still-unmaterialized reservation, for a
// remove() that targets a record never yet written to the page.
func (pi *PageInformation) removeReservation(recordNr int32) bool {
	for i, r := range pi.reservations {
		if r.recordNr == recordNr {
			pi.reservations = append(pi.reservations[:i], pi.reservations[i+1:]...)
			return true
		}
	}
	return false
}

// effectiveMinMax accounts for already-pending reservations, so a
// second reservation against the same page before materialization
// still picks a distinct number.
func (pi *PageInformation) effectiveMinMax() (int32, int32) {
	min, max := pi.MinRecordNumber, pi.MaxRecordNumber
	for _, r := range pi.reservations {
		if min == sentinelRecordNr || r.recordNr < min {
			min = r.recordNr
		}
		if max == sentinelRecordNr || r.recordNr > max {
			max = r.recordNr
		}
	}
	return min, max
}

// drainReservations removes and returns every pending reservation, for
// the caller to materialize into the page's real directory.
func (pi *PageInformation) drainReservations() []reservation {
	out := pi.reservations
	pi.reservations = make([]reservation, 0, cap(pi.reservations))
	return out
}
