// Package page implements the fixed-size page layout: a header, a
// directory of record slots, and a packed data region, serialized to
// and from a container block. Field access uses fixed-offset
// big-endian fields, generalized from InnoDB's fixed field set to this
// format's directory of variable-length slots.
package page

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/xxlerr"
)

const (
	// headerSize holds numberOfRecords (2 bytes), numberOfLinkRecords
	// (2 bytes) and checksum (8 bytes).
	headerSize = 12

	// directoryEntrySize is recordNumber(2) + offset(2) + length(2) + flags(1).
	directoryEntrySize = 7

	flagLink byte = 1 << 0

	// MaxRecordNumber is the largest record number a page can issue;
	// it is bounded by the signed 2-byte record number of the TID wire
	// format.
	MaxRecordNumber = 1<<15 - 1
)

// DirectoryEntry describes one occupied slot in a page's directory.
type DirectoryEntry struct {
	RecordNumber int32
	Offset       uint16
	Length       uint16
	IsLink       bool
}

// Page is the in-memory, decoded form of one container block.
type Page struct {
	pageSize uint32
	entries  map[int32]DirectoryEntry
	data     map[int32][]byte // recordNumber -> payload bytes (record body or link target TID bytes)
}

// New returns an empty page sized for pageSize bytes of backing storage.
func New(pageSize uint32) *Page {
	return &Page{
		pageSize: pageSize,
		entries:  make(map[int32]DirectoryEntry),
		data:     make(map[int32][]byte),
	}
}

// size computes the serialized footprint of a page holding numRecords
// directory entries whose payloads total bytesUsed bytes.
func size(pageSize uint32, numRecords int, bytesUsed int) int {
	return headerSize + numRecords*directoryEntrySize + bytesUsed
}

// Size is the exported form of the page size function, identical
// across every caller, including the record manager's accounting.
func Size(pageSize uint32, numRecords int, bytesUsed int) int {
	return size(pageSize, numRecords, bytesUsed)
}

// MaxRecordSize returns the largest single record payload that could
// ever fit an otherwise-empty page of this size.
func MaxRecordSize(pageSize uint32) int {
	max := int(pageSize) - headerSize - directoryEntrySize
	if max < 0 {
		return 0
	}
	return max
}

// FreeSpace returns how many more payload bytes this page could still
// hold in a new directory entry.
func (p *Page) FreeSpace() int {
	used := size(p.pageSize, len(p.entries), p.bytesUsed())
	free := int(p.pageSize) - used - directoryEntrySize
	if free < 0 {
		return 0
	}
	return free
}

func (p *Page) bytesUsed() int {
	total := 0
	for _, b := range p.data {
		total += len(b)
	}
	return total
}

// NumberOfRecords returns the count of occupied directory slots,
// including link records.
func (p *Page) NumberOfRecords() int { return len(p.entries) }

// NumberOfLinkRecords returns the count of slots flagged as links.
func (p *Page) NumberOfLinkRecords() int {
	n := 0
	for _, e := range p.entries {
		if e.IsLink {
			n++
		}
	}
	return n
}

// NumberOfBytesUsedByRecords returns the total payload byte count
// across every occupied slot.
func (p *Page) NumberOfBytesUsedByRecords() int { return p.bytesUsed() }

// GetFreeRecordNumber picks the next record number deterministically:
// the returned number is not currently in the directory and equals either
// min-1 (when min > 0) or max+1, so that numbers assigned this way stay
// compatible with the in-memory reservation scheme. An empty page
// starts at record number 0.
func (p *Page) GetFreeRecordNumber() (int32, error) {
	if len(p.entries) == 0 {
		return 0, nil
	}
	min, max := p.minMaxRecordNumber()
	if min > 0 {
		return min - 1, nil
	}
	if max >= MaxRecordNumber {
		return 0, xxlerr.ErrCapacityExceeded
	}
	return max + 1, nil
}

func (p *Page) minMaxRecordNumber() (int32, int32) {
	min, max := int32(MaxRecordNumber), int32(-1)
	for n := range p.entries {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max
}

// InsertRecord reserves the directory slot recordNr and copies payload
// into it. Fails with ErrSizeExceeded if size(pageSize, n+1, used+len)
// would exceed pageSize, and with ErrInvariantViolation if recordNr is
// already occupied.
func (p *Page) InsertRecord(payload []byte, recordNr int32, isLink bool) error {
	if _, ok := p.entries[recordNr]; ok {
		return errors.Annotatef(xxlerr.ErrInvariantViolation, "record number %d already in use", recordNr)
	}
	if len(payload) > MaxRecordSize(p.pageSize) {
		return xxlerr.ErrSizeExceeded
	}
	needed := size(p.pageSize, len(p.entries)+1, p.bytesUsed()+len(payload))
	if needed > int(p.pageSize) {
		return xxlerr.ErrSizeExceeded
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	p.entries[recordNr] = DirectoryEntry{RecordNumber: recordNr, Length: uint16(len(payload)), IsLink: isLink}
	p.data[recordNr] = stored
	return nil
}

// GetRecord returns the payload and link flag stored at recordNumber.
func (p *Page) GetRecord(recordNumber int32) ([]byte, bool, error) {
	entry, ok := p.entries[recordNumber]
	if !ok {
		return nil, false, xxlerr.ErrNotFound
	}
	out := make([]byte, len(p.data[recordNumber]))
	copy(out, p.data[recordNumber])
	return out, entry.IsLink, nil
}

// UpdateRecord replaces the payload at recordNumber in place. This is
// only valid when len(payload) equals the stored record's current
// length; callers needing growth must Remove+Insert. A same-length
// isLink flip is permitted.
func (p *Page) UpdateRecord(recordNumber int32, payload []byte, isLink bool) error {
	entry, ok := p.entries[recordNumber]
	if !ok {
		return xxlerr.ErrNotFound
	}
	if len(payload) != int(entry.Length) {
		return errors.Annotatef(xxlerr.ErrInvariantViolation, "in-place update must preserve length: had %d, got %d", entry.Length, len(payload))
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	entry.IsLink = isLink
	p.entries[recordNumber] = entry
	p.data[recordNumber] = stored
	return nil
}

// RemoveRecord deletes the slot at recordNumber.
func (p *Page) RemoveRecord(recordNumber int32) error {
	if _, ok := p.entries[recordNumber]; !ok {
		return xxlerr.ErrNotFound
	}
	delete(p.entries, recordNumber)
	delete(p.data, recordNumber)
	return nil
}

// RecordNumbers returns every occupied record number in ascending order.
func (p *Page) RecordNumbers() []int32 {
	out := make([]int32, 0, len(p.entries))
	for n := range p.entries {
		out = append(out, n)
	}
	sortInt32s(out)
	return out
}

// RecordNumbersWithoutLinks returns every occupied non-link record
// number in ascending order - the basis for the record manager's
// id-without-link-records lazy iterator.
func (p *Page) RecordNumbersWithoutLinks() []int32 {
	out := make([]int32, 0, len(p.entries))
	for n, e := range p.entries {
		if !e.IsLink {
			out = append(out, n)
		}
	}
	sortInt32s(out)
	return out
}

func sortInt32s(s []int32) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

// Encode serializes the page to a pageSize-byte block suitable for a
// Container, laying out the header, then the directory packed from the
// end of the header forward, then payload bytes packed from the end of
// the block backward - mirroring page_header.go's fixed-offset layout
// generalized to a variable-length directory.
func (p *Page) Encode() []byte {
	buf := make([]byte, p.pageSize)
	numbers := p.RecordNumbers()

	binary.BigEndian.PutUint16(buf[0:2], uint16(len(numbers)))
	binary.BigEndian.PutUint16(buf[2:4], uint16(p.NumberOfLinkRecords()))

	dataEnd := int(p.pageSize)
	dirOffset := headerSize
	for _, n := range numbers {
		entry := p.entries[n]
		payload := p.data[n]
		dataEnd -= len(payload)
		copy(buf[dataEnd:dataEnd+len(payload)], payload)

		binary.BigEndian.PutUint16(buf[dirOffset:dirOffset+2], uint16(entry.RecordNumber))
		binary.BigEndian.PutUint16(buf[dirOffset+2:dirOffset+4], uint16(dataEnd))
		binary.BigEndian.PutUint16(buf[dirOffset+4:dirOffset+6], entry.Length)
		if entry.IsLink {
			buf[dirOffset+6] = flagLink
		}
		dirOffset += directoryEntrySize
	}

	binary.BigEndian.PutUint64(buf[4:12], checksumOf(buf[headerSize:]))
	return buf
}

// Decode parses a block previously produced by Encode. It fails with
// ErrIoFailure if the checksum stored in the header does not match the
// directory and data region.
func Decode(block []byte, pageSize uint32) (*Page, error) {
	if uint32(len(block)) != pageSize {
		return nil, errors.Annotate(xxlerr.ErrIoFailure, "short page block")
	}
	numRecords := int(binary.BigEndian.Uint16(block[0:2]))
	storedChecksum := binary.BigEndian.Uint64(block[4:12])
	if actual := checksumOf(block[headerSize:]); actual != storedChecksum {
		return nil, errors.Annotate(xxlerr.ErrIoFailure, "page checksum mismatch")
	}

	p := New(pageSize)
	dirOffset := headerSize
	for i := 0; i < numRecords; i++ {
		recordNumber := int32(binary.BigEndian.Uint16(block[dirOffset : dirOffset+2]))
		offset := binary.BigEndian.Uint16(block[dirOffset+2 : dirOffset+4])
		length := binary.BigEndian.Uint16(block[dirOffset+4 : dirOffset+6])
		isLink := block[dirOffset+6]&flagLink != 0

		payload := make([]byte, length)
		copy(payload, block[offset:int(offset)+int(length)])

		p.entries[recordNumber] = DirectoryEntry{RecordNumber: recordNumber, Offset: offset, Length: length, IsLink: isLink}
		p.data[recordNumber] = payload
		dirOffset += directoryEntrySize
	}
	return p, nil
}

// checksumOf hashes a page's directory+data region for the checksum
// stored in its header.
func checksumOf(b []byte) uint64 {
	h := xxhash.New64()
	h.Write(b)
	return h.Sum64()
}
