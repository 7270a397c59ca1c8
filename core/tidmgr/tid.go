// Package tidmgr implements the tuple-identifier type and the two TID
// Manager modes: TID-as-id (public id is the TID
// itself, migrations leave a link) and synthetic-id (a rewritable
// id->TID table, no link ever required).
package tidmgr

import (
	"encoding/binary"

	"github.com/xxlcore/xxl/core/container"
)

// TID addresses one record: the container block holding its home page,
// plus the record number within that page's directory.
type TID struct {
	PageID   container.ID
	RecordNr int32
}

// Size returns the wire length of a TID for a container whose ids are
// idSize bytes wide - idSize(container) + 2 bytes record number.
func Size(idConverter container.IDConverter) int {
	return idConverter.Size() + 2
}

// Encode serializes t as (container id bytes, 2-byte big-endian signed
// record number).
func Encode(t TID, idConverter container.IDConverter) []byte {
	idBytes := idConverter.Encode(t.PageID)
	out := make([]byte, len(idBytes)+2)
	copy(out, idBytes)
	binary.BigEndian.PutUint16(out[len(idBytes):], uint16(int16(t.RecordNr)))
	return out
}

// Decode parses the inverse of Encode.
func Decode(b []byte, idConverter container.IDConverter) TID {
	idSize := idConverter.Size()
	recordNr := int32(int16(binary.BigEndian.Uint16(b[idSize : idSize+2])))
	return TID{PageID: idConverter.Decode(b[:idSize]), RecordNr: recordNr}
}
