package container

import "github.com/xxlcore/xxl/core/xxlerr"

// MemoryContainer is an in-memory reference implementation of Container.
// It reuses ids from removed blocks via a free list before minting new
// ones, the way the file-backed container reuses page slots.
type MemoryContainer struct {
	blockSize uint32
	blocks    map[ID][]byte
	free      []ID
	nextID    ID
}

// NewMemoryContainer returns an empty in-memory container whose blocks
// must each be exactly blockSize bytes.
func NewMemoryContainer(blockSize uint32) *MemoryContainer {
	return &MemoryContainer{
		blockSize: blockSize,
		blocks:    make(map[ID][]byte),
	}
}

func (c *MemoryContainer) Insert(block []byte) (ID, error) {
	if uint32(len(block)) != c.blockSize {
		return 0, xxlerr.ErrSizeExceeded
	}
	var id ID
	if n := len(c.free); n > 0 {
		id = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		id = c.nextID
		c.nextID++
	}
	stored := make([]byte, c.blockSize)
	copy(stored, block)
	c.blocks[id] = stored
	return id, nil
}

func (c *MemoryContainer) Get(id ID) ([]byte, error) {
	block, ok := c.blocks[id]
	if !ok {
		return nil, xxlerr.ErrNotFound
	}
	out := make([]byte, len(block))
	copy(out, block)
	return out, nil
}

func (c *MemoryContainer) Update(id ID, block []byte) error {
	if uint32(len(block)) != c.blockSize {
		return xxlerr.ErrSizeExceeded
	}
	if _, ok := c.blocks[id]; !ok {
		return xxlerr.ErrNotFound
	}
	stored := make([]byte, c.blockSize)
	copy(stored, block)
	c.blocks[id] = stored
	return nil
}

func (c *MemoryContainer) Remove(id ID) error {
	if _, ok := c.blocks[id]; !ok {
		return xxlerr.ErrNotFound
	}
	delete(c.blocks, id)
	c.free = append(c.free, id)
	return nil
}

func (c *MemoryContainer) Clear() error {
	c.blocks = make(map[ID][]byte)
	c.free = nil
	c.nextID = 0
	return nil
}

func (c *MemoryContainer) BlockSize() uint32 { return c.blockSize }

func (c *MemoryContainer) IDConverter() IDConverter { return Uint32IDConverter{} }

func (c *MemoryContainer) Close() error { return nil }
