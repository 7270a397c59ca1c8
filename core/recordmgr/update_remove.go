package recordmgr

import (
	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/page"
	"github.com/xxlcore/xxl/core/tidmgr"
	"github.com/xxlcore/xxl/core/xxlerr"
)

// Update replaces the record at id with a new payload, migrating it to
// another page (and leaving a link, in link mode) when the home page
// can no longer host it.
func (m *Manager) Update(id tidmgr.PublicID, record []byte) error {
	if len(record) > page.MaxRecordSize(m.pageSize) {
		return xxlerr.ErrSizeExceeded
	}
	homeTid, ok := m.tidManager.Query(id)
	if !ok {
		return xxlerr.ErrNotFound
	}
	homePi, ok := m.pages.get(homeTid.PageID)
	if !ok {
		return xxlerr.ErrInvariantViolation
	}
	homePage, err := m.loadPage(homeTid.PageID)
	if err != nil {
		return err
	}
	if err := m.materialize(homePi, homePage); err != nil {
		return err
	}

	homePayload, isLink, err := homePage.GetRecord(homeTid.RecordNr)
	if err != nil {
		return err
	}

	currentTid, currentPi, currentPage, oldPayload := homeTid, homePi, homePage, homePayload
	if isLink {
		target := tidmgr.Decode(homePayload, m.tidManager.IDConverter())
		targetPi, ok := m.pages.get(target.PageID)
		if !ok {
			return xxlerr.ErrInvariantViolation
		}
		targetPage, err := m.loadPage(target.PageID)
		if err != nil {
			return err
		}
		if err := m.materialize(targetPi, targetPage); err != nil {
			return err
		}
		targetPayload, targetIsLink, err := targetPage.GetRecord(target.RecordNr)
		if err != nil {
			return err
		}
		if targetIsLink {
			return xxlerr.ErrLinkDepthExceeded
		}
		currentTid, currentPi, currentPage, oldPayload = target, targetPi, targetPage, targetPayload
	}

	oldLen, newLen := len(oldPayload), len(record)
	tidSize := tidmgr.Size(m.tidManager.IDConverter())

	if page.Size(m.pageSize, currentPi.NumberOfRecords+currentPi.NumberOfLinkRecords, currentPi.NumberOfBytesUsedByRecords+newLen-oldLen) <= int(m.pageSize) {
		if err := currentPage.RemoveRecord(currentTid.RecordNr); err != nil {
			return err
		}
		if err := currentPage.InsertRecord(record, currentTid.RecordNr, false); err != nil {
			return err
		}
		if err := m.writePage(currentTid.PageID, currentPage); err != nil {
			return err
		}
		currentPi.updateAccounting(currentTid.RecordNr, 0, newLen-oldLen, 0)
		m.strategy.RecordUpdated(currentTid.PageID, currentPi, currentTid.RecordNr, newLen-oldLen)
		return nil
	}

	if !isLink && m.tidManager.UseLinks() {
		// The record's slot (oldLen bytes) will be taken over by a
		// tidSize-byte forwarding link once the record moves elsewhere.
		// oldLen can be smaller than tidSize, so check that the link fits
		// before anything is removed. The page is written back only to
		// persist reservations materialized above.
		homeFits := page.Size(m.pageSize, homePi.NumberOfRecords+homePi.NumberOfLinkRecords, homePi.NumberOfBytesUsedByRecords-oldLen+tidSize) <= int(m.pageSize)
		if !homeFits {
			if err := m.writePage(homeTid.PageID, homePage); err != nil {
				return err
			}
			return xxlerr.ErrSizeExceeded
		}
	}

	// The current page cannot host the new size: remove the payload
	// there and persist before trying anywhere else.
	if err := currentPage.RemoveRecord(currentTid.RecordNr); err != nil {
		return err
	}
	if err := m.writePage(currentTid.PageID, currentPage); err != nil {
		return err
	}
	currentPi.updateAccounting(currentTid.RecordNr, -1, -oldLen, 0)
	if err := m.reclaimIfEmpty(currentTid.PageID, currentPi); err != nil {
		return err
	}

	if isLink {
		homeFits := page.Size(m.pageSize, homePi.NumberOfRecords+homePi.NumberOfLinkRecords, homePi.NumberOfBytesUsedByRecords-tidSize+newLen) <= int(m.pageSize)
		if homeFits {
			if err := homePage.RemoveRecord(homeTid.RecordNr); err != nil {
				return err
			}
			if err := homePage.InsertRecord(record, homeTid.RecordNr, false); err != nil {
				return err
			}
			if err := m.writePage(homeTid.PageID, homePage); err != nil {
				return err
			}
			homePi.updateAccounting(homeTid.RecordNr, 1, newLen-tidSize, -1)
			m.strategy.RecordUpdated(homeTid.PageID, homePi, homeTid.RecordNr, newLen-tidSize)
			return nil
		}
	}

	lastTid, err := m.placeRecord(record)
	if err != nil {
		return err
	}

	if !m.tidManager.UseLinks() {
		return m.tidManager.Update(id, lastTid)
	}

	linkBytes := tidmgr.Encode(lastTid, m.tidManager.IDConverter())
	if isLink {
		if err := homePage.UpdateRecord(homeTid.RecordNr, linkBytes, true); err != nil {
			return err
		}
		return m.writePage(homeTid.PageID, homePage)
	}
	if err := homePage.InsertRecord(linkBytes, homeTid.RecordNr, true); err != nil {
		return err
	}
	if err := m.writePage(homeTid.PageID, homePage); err != nil {
		return err
	}
	homePi.updateAccounting(homeTid.RecordNr, 0, len(linkBytes), 1)
	m.strategy.RecordUpdated(homeTid.PageID, homePi, homeTid.RecordNr, len(linkBytes))
	return nil
}

// Remove deletes id's record (and any link that referenced it).
func (m *Manager) Remove(id tidmgr.PublicID) error {
	homeTid, ok := m.tidManager.Query(id)
	if !ok {
		return xxlerr.ErrNotFound
	}
	homePi, ok := m.pages.get(homeTid.PageID)
	if !ok {
		return xxlerr.ErrInvariantViolation
	}

	if payload, ok := homePi.findReservation(homeTid.RecordNr); ok {
		homePi.removeReservation(homeTid.RecordNr)
		homePi.updateAccounting(homeTid.RecordNr, -1, -len(payload), 0)
		if err := m.reclaimIfEmpty(homeTid.PageID, homePi); err != nil {
			return err
		}
		return m.tidManager.Remove(id)
	}

	homePage, err := m.loadPage(homeTid.PageID)
	if err != nil {
		return err
	}
	if err := m.materialize(homePi, homePage); err != nil {
		return err
	}
	homePayload, isLink, err := homePage.GetRecord(homeTid.RecordNr)
	if err != nil {
		return err
	}

	if !isLink {
		if err := m.removePayload(homeTid.PageID, homePi, homePage, homeTid.RecordNr, len(homePayload)); err != nil {
			return err
		}
		return m.tidManager.Remove(id)
	}

	target := tidmgr.Decode(homePayload, m.tidManager.IDConverter())
	targetPi, ok := m.pages.get(target.PageID)
	if !ok {
		return xxlerr.ErrInvariantViolation
	}
	targetPage, err := m.loadPage(target.PageID)
	if err != nil {
		return err
	}
	if err := m.materialize(targetPi, targetPage); err != nil {
		return err
	}
	targetPayload, targetIsLink, err := targetPage.GetRecord(target.RecordNr)
	if err != nil {
		return err
	}
	if targetIsLink {
		return xxlerr.ErrLinkDepthExceeded
	}
	if err := m.removePayload(target.PageID, targetPi, targetPage, target.RecordNr, len(targetPayload)); err != nil {
		return err
	}

	tidSize := len(homePayload)
	if err := homePage.RemoveRecord(homeTid.RecordNr); err != nil {
		return err
	}
	homePi.updateAccounting(homeTid.RecordNr, 0, -tidSize, -1)
	if err := m.reclaimIfEmpty(homeTid.PageID, homePi); err != nil {
		return err
	}
	if !homePi.isEmpty() {
		if err := m.writePage(homeTid.PageID, homePage); err != nil {
			return err
		}
	}

	return m.tidManager.Remove(id)
}

func (m *Manager) removePayload(id container.ID, pi *PageInformation, pg *page.Page, recordNr int32, length int) error {
	if err := pg.RemoveRecord(recordNr); err != nil {
		return err
	}
	pi.updateAccounting(recordNr, -1, -length, 0)
	if err := m.reclaimIfEmpty(id, pi); err != nil {
		return err
	}
	if pi.isEmpty() {
		return nil
	}
	return m.writePage(id, pg)
}
