package tidmgr

import "github.com/xxlcore/xxl/core/container"

// LinkManager is the TID-as-id mode: the public id is
// the wire-encoded TID itself, so the manager keeps no mapping table
// at all. A record that migrates to another page is reachable only
// because the record manager leaves a forwarding link record behind at
// the original TID.
type LinkManager struct {
	idConverter container.IDConverter
}

// NewLinkManager returns a TID-as-id manager for a container using
// idConverter to encode page ids.
func NewLinkManager(idConverter container.IDConverter) *LinkManager {
	return &LinkManager{idConverter: idConverter}
}

func (m *LinkManager) Insert(tid TID) (PublicID, error) {
	return PublicID(Encode(tid, m.idConverter)), nil
}

func (m *LinkManager) Query(id PublicID) (TID, bool) {
	if len(id) != m.IDSize() {
		return TID{}, false
	}
	return Decode(id, m.idConverter), true
}

// Update is a no-op: in link mode the record manager never calls this
// (UseLinks is true, so migrations are resolved via link records
// instead), but a well-defined no-op keeps the interface total.
func (m *LinkManager) Update(id PublicID, newTid TID) error { return nil }

func (m *LinkManager) Remove(id PublicID) error { return nil }

func (m *LinkManager) RemoveAll() error { return nil }

// Ids returns nil: this mode keeps no table, so the record manager
// must discover live ids by walking pages directly.
func (m *LinkManager) Ids() Iterator { return nil }

func (m *LinkManager) UseLinks() bool { return true }

func (m *LinkManager) IDConverter() container.IDConverter { return m.idConverter }

func (m *LinkManager) IDSize() int { return Size(m.idConverter) }

func (m *LinkManager) Close() error { return nil }
