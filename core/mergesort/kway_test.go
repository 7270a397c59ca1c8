package mergesort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxlcore/xxl/core/queue"
)

type tagged struct {
	key int
	tag string
}

func byKey(a, b interface{}) int { return a.(tagged).key - b.(tagged).key }

func newFilledMemoryQueue(t *testing.T, values ...tagged) queue.Queue {
	t.Helper()
	q, err := queue.NewMemoryQueueFactory()(nil, nil)
	require.NoError(t, err)
	require.NoError(t, q.Open())
	for _, v := range values {
		require.NoError(t, q.Enqueue(v))
	}
	return q
}

func TestMergeIsStableOnTies(t *testing.T) {
	first := newFilledMemoryQueue(t, tagged{1, "a"}, tagged{2, "b"})
	second := newFilledMemoryQueue(t, tagged{1, "c"}, tagged{2, "d"})

	out, err := queue.NewMemoryQueueFactory()(nil, nil)
	require.NoError(t, err)
	require.NoError(t, out.Open())

	require.NoError(t, mergeInto(out, []queue.Queue{first, second}, nil, byKey))

	var got []tagged
	for {
		v, ok, err := out.Dequeue()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v.(tagged))
	}

	want := []tagged{{1, "a"}, {1, "c"}, {2, "b"}, {2, "d"}}
	assert.Equal(t, want, got)
}

// TestMergeTieBreakFollowsSeqsNotSourceOrder pins down that ties are
// broken by the seqs slice, not by position within sources - the
// situation a size-priority queue creates when it hands runs to the
// merger in an order that no longer matches when they were created.
func TestMergeTieBreakFollowsSeqsNotSourceOrder(t *testing.T) {
	createdFirst := newFilledMemoryQueue(t, tagged{1, "earlier"})
	createdSecond := newFilledMemoryQueue(t, tagged{1, "later"})

	// sources lists the run created second before the one created
	// first; seqs records their true creation order.
	sources := []queue.Queue{createdSecond, createdFirst}
	seqs := []int64{1, 0}

	out, err := queue.NewMemoryQueueFactory()(nil, nil)
	require.NoError(t, err)
	require.NoError(t, out.Open())

	require.NoError(t, mergeInto(out, sources, seqs, byKey))

	v, ok, err := out.Dequeue()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tagged{1, "earlier"}, v)
}
