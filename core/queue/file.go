package queue

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/xxlerr"
	"github.com/xxlcore/xxl/util"
)

// FileQueue is a file-backed Queue: records are appended
// length-prefixed while the queue is being filled, then read back
// sequentially once draining starts. It never seeks backward, so one
// instance only ever runs through a write phase followed by a read
// phase, matching a run's write-once-then-read-once lifecycle.
type FileQueue struct {
	path       string
	converter  Converter
	inputSize  SizeProvider
	outputSize SizeProvider

	file      *os.File
	writer    *bufio.Writer
	reader    *bufio.Reader
	reading   bool
	size      int
	lenPrefix [4]byte
}

// NewFileQueueFactory returns a Factory spilling each queue to a
// uuid-named file under dir, using buffered sequential access rather
// than fixed-offset random access, since runs are written once and
// drained once.
func NewFileQueueFactory(dir string, converter Converter) Factory {
	return func(inputBufferSize, outputBufferSize SizeProvider) (Queue, error) {
		if err := util.EnsureDir(dir); err != nil {
			return nil, errors.Trace(err)
		}
		path := filepath.Join(dir, uuid.NewString()+".run")
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
		}
		return &FileQueue{
			path:       path,
			converter:  converter,
			file:       f,
			inputSize:  inputBufferSize,
			outputSize: outputBufferSize,
		}, nil
	}
}

func (q *FileQueue) Open() error {
	q.writer = bufio.NewWriterSize(q.file, q.outputSize())
	return nil
}

func (q *FileQueue) Enqueue(v interface{}) error {
	if q.reading {
		return errors.New("xxl: cannot enqueue into a queue already being drained")
	}
	if q.writer == nil {
		q.writer = bufio.NewWriterSize(q.file, q.outputSize())
	}
	raw, err := q.converter.Encode(v)
	if err != nil {
		return errors.Trace(err)
	}
	binary.BigEndian.PutUint32(q.lenPrefix[:], uint32(len(raw)))
	if _, err := q.writer.Write(q.lenPrefix[:]); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	if _, err := q.writer.Write(raw); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	q.size++
	return nil
}

// switchToRead flushes and rewinds the file once the first Dequeue is
// called, opening a reader sized by the lazily-queried input buffer.
func (q *FileQueue) switchToRead() error {
	if q.writer != nil {
		if err := q.writer.Flush(); err != nil {
			return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
		}
		q.writer = nil
	}
	if _, err := q.file.Seek(0, io.SeekStart); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	q.reader = bufio.NewReaderSize(q.file, q.inputSize())
	q.reading = true
	return nil
}

func (q *FileQueue) Dequeue() (interface{}, bool, error) {
	if !q.reading {
		if err := q.switchToRead(); err != nil {
			return nil, false, err
		}
	}
	if _, err := io.ReadFull(q.reader, q.lenPrefix[:]); err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	length := binary.BigEndian.Uint32(q.lenPrefix[:])
	raw := make([]byte, length)
	if _, err := io.ReadFull(q.reader, raw); err != nil {
		return nil, false, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	v, err := q.converter.Decode(raw)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	q.size--
	return v, true, nil
}

func (q *FileQueue) Size() int { return q.size }

func (q *FileQueue) Close() error {
	if q.file == nil {
		return nil
	}
	if q.writer != nil {
		_ = q.writer.Flush()
	}
	err := q.file.Close()
	q.file = nil
	_ = os.Remove(q.path)
	return err
}
