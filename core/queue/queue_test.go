package queue

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intConverter struct{}

func (intConverter) Encode(v interface{}) ([]byte, error) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v.(int)))
	return b, nil
}

func (intConverter) Decode(b []byte) (interface{}, error) {
	return int(binary.BigEndian.Uint32(b)), nil
}

func fixedSize(n int) SizeProvider { return func() int { return n } }

func testQueues(t *testing.T) map[string]Queue {
	factories := map[string]Factory{
		"memory": NewMemoryQueueFactory(),
		"file":   NewFileQueueFactory(t.TempDir(), intConverter{}),
	}
	out := make(map[string]Queue, len(factories))
	for name, f := range factories {
		q, err := f(fixedSize(64), fixedSize(64))
		require.NoError(t, err)
		require.NoError(t, q.Open())
		t.Cleanup(func() { _ = q.Close() })
		out[name] = q
	}
	return out
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	for name, q := range testQueues(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, q.Enqueue(i))
			}
			for i := 0; i < 5; i++ {
				v, ok, err := q.Dequeue()
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, i, v)
			}
			_, ok, err := q.Dequeue()
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSizeTracksRemaining(t *testing.T) {
	for name, q := range testQueues(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, q.Enqueue(1))
			require.NoError(t, q.Enqueue(2))
			assert.Equal(t, 2, q.Size())
			_, _, _ = q.Dequeue()
			assert.Equal(t, 1, q.Size())
		})
	}
}

func TestRunPriorityQueuePopsSmallestFirst(t *testing.T) {
	pq := NewRunPriorityQueue(nil)
	big, _ := NewMemoryQueueFactory()(fixedSize(8), fixedSize(8))
	small, _ := NewMemoryQueueFactory()(fixedSize(8), fixedSize(8))
	mid, _ := NewMemoryQueueFactory()(fixedSize(8), fixedSize(8))

	for i := 0; i < 5; i++ {
		_ = big.Enqueue(i)
	}
	for i := 0; i < 1; i++ {
		_ = small.Enqueue(i)
	}
	for i := 0; i < 3; i++ {
		_ = mid.Enqueue(i)
	}

	pq.Push(big, 0)
	pq.Push(small, 1)
	pq.Push(mid, 2)

	first, seq, ok := pq.Pop()
	require.True(t, ok)
	assert.Same(t, small, first)
	assert.Equal(t, int64(1), seq)

	second, seq, ok := pq.Pop()
	require.True(t, ok)
	assert.Same(t, mid, second)
	assert.Equal(t, int64(2), seq)

	third, seq, ok := pq.Pop()
	require.True(t, ok)
	assert.Same(t, big, third)
	assert.Equal(t, int64(0), seq)
}
