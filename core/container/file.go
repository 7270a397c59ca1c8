package container

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/xxlerr"
	"github.com/xxlcore/xxl/util"
)

// FileContainer is a fixed-block-size file reference implementation of
// Container: blocks live at id*blockSize offsets
// in a single file opened with direct ReadAt/WriteAt calls. The
// container is treated strictly as an opaque keyed blob store, with no
// segment or extent bookkeeping layered on top.
type FileContainer struct {
	mu        sync.Mutex
	filePath  string
	file      *os.File
	blockSize uint32
	free      []ID
	nextID    ID
	live      map[ID]bool
}

// OpenFileContainer creates (or truncates, if it already exists) a
// block file at path. An empty path gets a uuid-named file under dir.
func OpenFileContainer(dir, path string, blockSize uint32) (*FileContainer, error) {
	if path == "" {
		if err := util.EnsureDir(dir); err != nil {
			return nil, errors.Trace(err)
		}
		path = filepath.Join(dir, uuid.NewString()+".blk")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Annotatef(err, "opening block file %s", path)
	}
	return &FileContainer{
		filePath:  path,
		file:      f,
		blockSize: blockSize,
		live:      make(map[ID]bool),
	}, nil
}

func (c *FileContainer) Insert(block []byte) (ID, error) {
	if uint32(len(block)) != c.blockSize {
		return 0, xxlerr.ErrSizeExceeded
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var id ID
	if n := len(c.free); n > 0 {
		id = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		id = c.nextID
		c.nextID++
	}
	if err := c.writeAt(id, block); err != nil {
		return 0, errors.Trace(err)
	}
	c.live[id] = true
	return id, nil
}

func (c *FileContainer) Get(id ID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live[id] {
		return nil, xxlerr.ErrNotFound
	}
	buf := make([]byte, c.blockSize)
	offset := int64(id) * int64(c.blockSize)
	if _, err := c.file.ReadAt(buf, offset); err != nil {
		return nil, errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	return buf, nil
}

func (c *FileContainer) Update(id ID, block []byte) error {
	if uint32(len(block)) != c.blockSize {
		return xxlerr.ErrSizeExceeded
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live[id] {
		return xxlerr.ErrNotFound
	}
	return c.writeAt(id, block)
}

func (c *FileContainer) Remove(id ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live[id] {
		return xxlerr.ErrNotFound
	}
	delete(c.live, id)
	c.free = append(c.free, id)
	return nil
}

func (c *FileContainer) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.file.Truncate(0); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	c.live = make(map[ID]bool)
	c.free = nil
	c.nextID = 0
	return nil
}

func (c *FileContainer) BlockSize() uint32 { return c.blockSize }

func (c *FileContainer) IDConverter() IDConverter { return Uint32IDConverter{} }

func (c *FileContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// writeAt assumes c.mu is held.
func (c *FileContainer) writeAt(id ID, block []byte) error {
	offset := int64(id) * int64(c.blockSize)
	if _, err := c.file.WriteAt(block, offset); err != nil {
		return errors.Annotate(xxlerr.ErrIoFailure, err.Error())
	}
	return nil
}
