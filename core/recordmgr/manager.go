// Package recordmgr implements the Record Manager: a variable-length
// record store layered over a Block Container, with page-level
// in-memory accounting and TID-link-based growth handling.
package recordmgr

import (
	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/page"
	"github.com/xxlcore/xxl/core/placement"
	"github.com/xxlcore/xxl/core/tidmgr"
	"github.com/xxlcore/xxl/core/xxlerr"
	"github.com/xxlcore/xxl/logger"
)

// Config wires a Manager's collaborators together.
type Config struct {
	Container              container.Container
	PageSize               uint32
	Strategy               placement.Strategy
	TIDManager             tidmgr.Manager
	NumberOfDirectReserves int
}

// Manager is the Record Manager.
type Manager struct {
	container              container.Container
	pageSize               uint32
	strategy               placement.Strategy
	tidManager             tidmgr.Manager
	pages                  *pagesMap
	numberOfDirectReserves int
	closed                 bool
}

// New constructs a Manager over an empty pages map and initializes the
// placement strategy against it.
func New(cfg Config) *Manager {
	m := &Manager{
		container:              cfg.Container,
		pageSize:               cfg.PageSize,
		strategy:               cfg.Strategy,
		tidManager:             cfg.TIDManager,
		pages:                  newPagesMap(),
		numberOfDirectReserves: cfg.NumberOfDirectReserves,
	}
	m.strategy.Init(m.pages, m.pageSize)
	return m
}

func (m *Manager) loadPage(id container.ID) (*page.Page, error) {
	block, err := m.container.Get(id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return page.Decode(block, m.pageSize)
}

func (m *Manager) writePage(id container.ID, pg *page.Page) error {
	if err := m.container.Update(id, pg.Encode()); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	return nil
}

// materialize writes any pending in-memory reservations into pg's real
// directory before any other operation touches it.
func (m *Manager) materialize(pi *PageInformation, pg *page.Page) error {
	for _, r := range pi.drainReservations() {
		if err := pg.InsertRecord(r.payload, r.recordNr, false); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Get resolves id to its record, following a link once if necessary.
func (m *Manager) Get(id tidmgr.PublicID) ([]byte, error) {
	tid, ok := m.tidManager.Query(id)
	if !ok {
		return nil, xxlerr.ErrNotFound
	}
	pi, ok := m.pages.get(tid.PageID)
	if !ok {
		return nil, xxlerr.ErrInvariantViolation
	}
	if payload, ok := pi.findReservation(tid.RecordNr); ok {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}

	pg, err := m.loadPage(tid.PageID)
	if err != nil {
		return nil, err
	}
	payload, isLink, err := pg.GetRecord(tid.RecordNr)
	if err != nil {
		return nil, err
	}
	if !isLink {
		return payload, nil
	}

	target := tidmgr.Decode(payload, m.tidManager.IDConverter())
	targetPage, err := m.loadPage(target.PageID)
	if err != nil {
		return nil, err
	}
	targetPayload, targetIsLink, err := targetPage.GetRecord(target.RecordNr)
	if err != nil {
		return nil, err
	}
	if targetIsLink {
		return nil, xxlerr.ErrLinkDepthExceeded
	}
	return targetPayload, nil
}

// Insert places record on whatever page the strategy picks, or a fresh
// one if none fits, and returns its public id.
func (m *Manager) Insert(record []byte) (tidmgr.PublicID, error) {
	if len(record) > page.MaxRecordSize(m.pageSize) {
		return nil, xxlerr.ErrSizeExceeded
	}
	tid, err := m.placeRecord(record)
	if err != nil {
		return nil, err
	}
	return m.tidManager.Insert(tid)
}

// Reserve invokes producer once to materialize the record, then prefers
// allocating its record number in memory to avoid touching the page at
// all until something else needs to.
func (m *Manager) Reserve(producer func() []byte) (tidmgr.PublicID, error) {
	record := producer()
	if len(record) > page.MaxRecordSize(m.pageSize) {
		return nil, xxlerr.ErrSizeExceeded
	}

	pageId, ok := m.strategy.GetPageForRecord(len(record))
	if ok {
		pi, _ := m.pages.get(pageId)
		if recordNr, reserved := pi.tryReserve(record); reserved {
			pi.updateAccounting(recordNr, 1, len(record), 0)
			m.strategy.RecordUpdated(pageId, pi, recordNr, len(record))
			logger.Debugf("record manager: reserved record %d on page %d in memory", recordNr, pageId)
			return m.tidManager.Insert(tidmgr.TID{PageID: pageId, RecordNr: recordNr})
		}
	}

	tid, err := m.placeRecord(record)
	if err != nil {
		return nil, err
	}
	return m.tidManager.Insert(tid)
}

// placeRecord runs the allocate-fresh-page-or-use-strategy-pick logic
// shared by Insert and Reserve's fallback path, updating the pages map
// and strategy but not the TID manager.
func (m *Manager) placeRecord(record []byte) (tidmgr.TID, error) {
	pageId, ok := m.strategy.GetPageForRecord(len(record))
	if !ok {
		return m.insertFreshPage(record)
	}
	pi, _ := m.pages.get(pageId)
	return m.insertIntoPage(pageId, pi, record)
}

func (m *Manager) insertFreshPage(record []byte) (tidmgr.TID, error) {
	pg := page.New(m.pageSize)
	if err := pg.InsertRecord(record, 0, false); err != nil {
		return tidmgr.TID{}, err
	}
	id, err := m.container.Insert(pg.Encode())
	if err != nil {
		return tidmgr.TID{}, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	pi := NewPageInformation(m.pageSize, m.numberOfDirectReserves)
	pi.updateAccounting(0, 1, len(record), 0)
	m.pages.put(id, pi)
	m.strategy.PageInserted(id, pi)
	logger.Debugf("record manager: allocated page %d", id)
	return tidmgr.TID{PageID: id, RecordNr: 0}, nil
}

func (m *Manager) insertIntoPage(pageId container.ID, pi *PageInformation, record []byte) (tidmgr.TID, error) {
	pg, err := m.loadPage(pageId)
	if err != nil {
		return tidmgr.TID{}, err
	}
	if err := m.materialize(pi, pg); err != nil {
		return tidmgr.TID{}, err
	}
	recordNr, err := pg.GetFreeRecordNumber()
	if err != nil {
		return tidmgr.TID{}, err
	}
	if err := pg.InsertRecord(record, recordNr, false); err != nil {
		return tidmgr.TID{}, err
	}
	if err := m.writePage(pageId, pg); err != nil {
		return tidmgr.TID{}, err
	}
	pi.updateAccounting(recordNr, 1, len(record), 0)
	m.strategy.RecordUpdated(pageId, pi, recordNr, len(record))
	return tidmgr.TID{PageID: pageId, RecordNr: recordNr}, nil
}

// reclaimIfEmpty removes a page that has gone empty from the container
// and the pages map.
func (m *Manager) reclaimIfEmpty(id container.ID, pi *PageInformation) error {
	if !pi.isEmpty() {
		return nil
	}
	if err := m.container.Remove(id); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	m.pages.delete(id)
	m.strategy.PageRemoved(id, pi)
	logger.Debugf("record manager: reclaimed empty page %d", id)
	return nil
}

// Close releases the manager's collaborators. It persists nothing;
// callers must call Write beforehand to keep state.
func (m *Manager) Close() error {
	m.closed = true
	return m.tidManager.Close()
}
