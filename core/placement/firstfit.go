package placement

import "github.com/xxlcore/xxl/core/container"

// FirstFitStrategy is the reference placement strategy:
// scan the pages map for the first page whose free bytes accommodate
// the record, ties broken by lowest page id.
type FirstFitStrategy struct {
	pages PagesMap
}

// NewFirstFitStrategy returns a strategy ready for Init.
func NewFirstFitStrategy() *FirstFitStrategy {
	return &FirstFitStrategy{}
}

func (s *FirstFitStrategy) Init(pages PagesMap, pageSize uint32) {
	s.pages = pages
}

func (s *FirstFitStrategy) GetPageForRecord(size int) (container.ID, bool) {
	var best container.ID
	found := false
	s.pages.ForEach(func(id container.ID, pi PageInfo) {
		if pi.BytesFreeAfterPossibleReservation(size) < 0 {
			return
		}
		if !found || id < best {
			best = id
			found = true
		}
	})
	return best, found
}

// PageInserted, PageRemoved and RecordUpdated are notifications this
// strategy does not need to act on: it re-scans the pages map fresh on
// every GetPageForRecord call rather than maintaining a free-space
// index.
func (s *FirstFitStrategy) PageInserted(id container.ID, pi PageInfo) {}

func (s *FirstFitStrategy) PageRemoved(id container.ID, pi PageInfo) {}

func (s *FirstFitStrategy) RecordUpdated(id container.ID, pi PageInfo, recordNr int32, bytesDelta int) {
}
