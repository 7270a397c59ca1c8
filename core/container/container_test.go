package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxlcore/xxl/core/xxlerr"
)

func testContainers(t *testing.T) map[string]Container {
	dir := t.TempDir()
	fc, err := OpenFileContainer(dir, filepath.Join(dir, "test.blk"), 64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fc.Close() })

	return map[string]Container{
		"memory": NewMemoryContainer(64),
		"file":   fc,
	}
}

func TestInsertGetRoundTrip(t *testing.T) {
	for name, c := range testContainers(t) {
		t.Run(name, func(t *testing.T) {
			block := make([]byte, 64)
			copy(block, "hello")
			id, err := c.Insert(block)
			require.NoError(t, err)

			got, err := c.Get(id)
			require.NoError(t, err)
			assert.Equal(t, block, got)
		})
	}
}

func TestGetUnknownIDNotFound(t *testing.T) {
	for name, c := range testContainers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(999)
			assert.ErrorIs(t, err, xxlerr.ErrNotFound)
		})
	}
}

func TestRemoveThenInsertReusesID(t *testing.T) {
	for name, c := range testContainers(t) {
		t.Run(name, func(t *testing.T) {
			block := make([]byte, 64)
			id1, err := c.Insert(block)
			require.NoError(t, err)
			require.NoError(t, c.Remove(id1))

			id2, err := c.Insert(block)
			require.NoError(t, err)
			assert.Equal(t, id1, id2)

			_, err = c.Get(id1)
			require.NoError(t, err)
		})
	}
}

func TestInsertWrongSizeRejected(t *testing.T) {
	for name, c := range testContainers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Insert(make([]byte, 10))
			assert.ErrorIs(t, err, xxlerr.ErrSizeExceeded)
		})
	}
}

func TestFileContainerWritesToDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.blk")

	fc, err := OpenFileContainer(dir, path, 32)
	require.NoError(t, err)
	block := make([]byte, 32)
	copy(block, "persisted")
	id, err := fc.Insert(block)
	require.NoError(t, err)
	require.NoError(t, fc.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	offset := int64(id) * 32
	assert.Equal(t, block, raw[offset:offset+32])
}

func TestUint32IDConverterRoundTrip(t *testing.T) {
	conv := Uint32IDConverter{}
	id := ID(123456)
	assert.Equal(t, id, conv.Decode(conv.Encode(id)))
	assert.Equal(t, 4, conv.Size())
}
