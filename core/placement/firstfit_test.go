package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xxlcore/xxl/core/container"
)

type fakePageInfo struct{ free int }

func (f fakePageInfo) BytesFreeAfterPossibleReservation(size int) int { return f.free - size }

type fakePagesMap map[container.ID]PageInfo

func (m fakePagesMap) ForEach(fn func(container.ID, PageInfo)) {
	for id, pi := range m {
		fn(id, pi)
	}
}

func (m fakePagesMap) Get(id container.ID) (PageInfo, bool) {
	pi, ok := m[id]
	return pi, ok
}

func TestFirstFitPicksLowestFittingPageID(t *testing.T) {
	pages := fakePagesMap{
		3: fakePageInfo{free: 100},
		1: fakePageInfo{free: 10},
		2: fakePageInfo{free: 100},
	}
	s := NewFirstFitStrategy()
	s.Init(pages, 512)

	id, ok := s.GetPageForRecord(50)
	assert.True(t, ok)
	assert.Equal(t, container.ID(2), id)
}

func TestFirstFitReturnsFalseWhenNoneFit(t *testing.T) {
	pages := fakePagesMap{1: fakePageInfo{free: 5}}
	s := NewFirstFitStrategy()
	s.Init(pages, 512)

	_, ok := s.GetPageForRecord(50)
	assert.False(t, ok)
}
