package recordmgr

import (
	"sort"

	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/placement"
)

// pagesMap is the sorted pageId->PageInformation mapping: ForEach
// visits pages in ascending page-id order.
// It also satisfies placement.PagesMap, the read-only view a Strategy
// consults.
type pagesMap struct {
	byID map[container.ID]*PageInformation
}

func newPagesMap() *pagesMap {
	return &pagesMap{byID: make(map[container.ID]*PageInformation)}
}

func (m *pagesMap) ForEach(fn func(container.ID, placement.PageInfo)) {
	ids := make([]container.ID, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(id, m.byID[id])
	}
}

func (m *pagesMap) Get(id container.ID) (placement.PageInfo, bool) {
	pi, ok := m.byID[id]
	return pi, ok
}

func (m *pagesMap) get(id container.ID) (*PageInformation, bool) {
	pi, ok := m.byID[id]
	return pi, ok
}

func (m *pagesMap) put(id container.ID, pi *PageInformation) {
	m.byID[id] = pi
}

func (m *pagesMap) delete(id container.ID) {
	delete(m.byID, id)
}

func (m *pagesMap) size() int {
	return len(m.byID)
}
