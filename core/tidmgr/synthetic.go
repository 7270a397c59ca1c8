package tidmgr

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/xxlerr"
)

var errNotFound = errors.Trace(xxlerr.ErrNotFound)

// SyntheticManager is the synthetic-id mode: it issues
// dense opaque 8-byte ids and rewrites its id->TID table in place on
// migration, so the record manager never needs to leave a link behind.
type SyntheticManager struct {
	mu          sync.Mutex
	idConverter container.IDConverter
	table       map[uint64]TID
	free        []uint64
	next        uint64
}

// NewSyntheticManager returns an empty synthetic-id manager.
func NewSyntheticManager(idConverter container.IDConverter) *SyntheticManager {
	return &SyntheticManager{
		idConverter: idConverter,
		table:       make(map[uint64]TID),
	}
}

func (m *SyntheticManager) Insert(tid TID) (PublicID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var raw uint64
	if n := len(m.free); n > 0 {
		raw = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		raw = m.next
		m.next++
	}
	m.table[raw] = tid
	return encodeSynthetic(raw), nil
}

func (m *SyntheticManager) Query(id PublicID) (TID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tid, ok := m.table[decodeSynthetic(id)]
	return tid, ok
}

func (m *SyntheticManager) Update(id PublicID, newTid TID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw := decodeSynthetic(id)
	if _, ok := m.table[raw]; !ok {
		return xxlerr.ErrNotFound
	}
	m.table[raw] = newTid
	return nil
}

func (m *SyntheticManager) Remove(id PublicID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw := decodeSynthetic(id)
	if _, ok := m.table[raw]; !ok {
		return xxlerr.ErrNotFound
	}
	delete(m.table, raw)
	m.free = append(m.free, raw)
	return nil
}

func (m *SyntheticManager) RemoveAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.table = make(map[uint64]TID)
	m.free = nil
	m.next = 0
	return nil
}

// Ids returns every live id, since the table fully describes this
// mode's identifier space.
func (m *SyntheticManager) Ids() Iterator {
	m.mu.Lock()
	defer m.mu.Unlock()

	raws := make([]uint64, 0, len(m.table))
	for raw := range m.table {
		raws = append(raws, raw)
	}
	sort.Slice(raws, func(i, j int) bool { return raws[i] < raws[j] })

	ids := make([]PublicID, len(raws))
	for i, raw := range raws {
		ids[i] = encodeSynthetic(raw)
	}
	return newSliceIterator(ids)
}

func (m *SyntheticManager) UseLinks() bool { return false }

func (m *SyntheticManager) IDConverter() container.IDConverter { return m.idConverter }

func (m *SyntheticManager) IDSize() int { return 8 }

func (m *SyntheticManager) Close() error { return nil }

func encodeSynthetic(raw uint64) PublicID {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, raw)
	return PublicID(b)
}

func decodeSynthetic(id PublicID) uint64 {
	return binary.BigEndian.Uint64(id)
}
