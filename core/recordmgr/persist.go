package recordmgr

import (
	"io"

	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/xxlerr"
	"github.com/xxlcore/xxl/util"
)

// persistedPageInfo is the gob-friendly projection of PageInformation
// written to the pages-map sink. Reservations are never persisted.
type persistedPageInfo struct {
	NumberOfRecords            int
	NumberOfLinkRecords        int
	NumberOfBytesUsedByRecords int
	MinRecordNumber            int32
	MaxRecordNumber            int32
}

func containerIDOf(raw uint32) container.ID { return container.ID(raw) }

// encodePagesMap gob-encodes snapshot via util.GetBytes, the module's
// shared codec for opaque blob persistence.
func encodePagesMap(sink io.Writer, snapshot map[uint32]persistedPageInfo) error {
	raw, err := util.GetBytes(snapshot)
	if err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	if _, err := sink.Write(raw); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	return nil
}

func decodePagesMap(src io.Reader) (map[uint32]persistedPageInfo, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	var snapshot map[uint32]persistedPageInfo
	if err := util.PutBytes(raw, &snapshot); err != nil {
		return nil, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	return snapshot, nil
}
