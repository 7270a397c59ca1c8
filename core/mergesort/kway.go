package mergesort

import (
	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/queue"
	"github.com/xxlcore/xxl/core/runselect"
	"github.com/xxlcore/xxl/core/xxlerr"
)

// Comparator orders two records the same way runselect.Comparator
// does; the two are intentionally the same function type so a single
// comparator serves run generation and every merge stage.
type Comparator = runselect.Comparator

// kwayMerger pulls the sorted union of a fixed set of already-sorted
// queues, one record at a time, via a min-heap over each queue's
// current head. Ties are broken by each source's creation sequence
// number rather than its position in sources, so a record from a run
// created earlier is emitted before an equal record from a run
// created later, regardless of how size-priority reordered the
// sources before they reached this merger - so the overall sort is
// stable.
type kwayMerger struct {
	sources []queue.Queue
	seqs    []int64
	cmp     Comparator

	heap   []kwEntry
	inited bool
}

type kwEntry struct {
	value interface{}
	src   int
}

// newKWayMerger merges sources, whose i'th entry carries creation
// sequence number seqs[i] for tie-breaking. A nil seqs defaults every
// source to its own index, source order being the only order known.
func newKWayMerger(sources []queue.Queue, seqs []int64, cmp Comparator) *kwayMerger {
	if seqs == nil {
		seqs = make([]int64, len(sources))
		for i := range seqs {
			seqs[i] = int64(i)
		}
	}
	return &kwayMerger{sources: sources, seqs: seqs, cmp: cmp}
}

func (m *kwayMerger) less(a, b kwEntry) bool {
	c := m.cmp(a.value, b.value)
	if c != 0 {
		return c < 0
	}
	return m.seqs[a.src] < m.seqs[b.src]
}

func (m *kwayMerger) init() error {
	m.inited = true
	for i, s := range m.sources {
		v, ok, err := s.Dequeue()
		if err != nil {
			return errors.Trace(err)
		}
		if ok {
			m.push(kwEntry{value: v, src: i})
		}
	}
	return nil
}

func (m *kwayMerger) push(e kwEntry) {
	m.heap = append(m.heap, e)
	i := len(m.heap) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !m.less(m.heap[i], m.heap[parent]) {
			break
		}
		m.heap[i], m.heap[parent] = m.heap[parent], m.heap[i]
		i = parent
	}
}

func (m *kwayMerger) pop() kwEntry {
	top := m.heap[0]
	last := len(m.heap) - 1
	m.heap[0] = m.heap[last]
	m.heap = m.heap[:last]
	i, n := 0, len(m.heap)
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < n && m.less(m.heap[left], m.heap[smallest]) {
			smallest = left
		}
		if right < n && m.less(m.heap[right], m.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		m.heap[i], m.heap[smallest] = m.heap[smallest], m.heap[i]
		i = smallest
	}
	return top
}

// HasNext reports whether any source still has an unconsumed record.
func (m *kwayMerger) HasNext() (bool, error) {
	if !m.inited {
		if err := m.init(); err != nil {
			return false, err
		}
	}
	return len(m.heap) > 0, nil
}

// Peek returns the next record without consuming it.
func (m *kwayMerger) Peek() (interface{}, bool, error) {
	ok, err := m.HasNext()
	if err != nil || !ok {
		return nil, false, err
	}
	return m.heap[0].value, true, nil
}

// Next returns and consumes the next record in sorted order.
func (m *kwayMerger) Next() (interface{}, error) {
	ok, err := m.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Trace(xxlerr.ErrNotFound)
	}
	top := m.pop()
	v, ok, err := m.sources[top.src].Dequeue()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if ok {
		m.push(kwEntry{value: v, src: top.src})
	}
	return top.value, nil
}

// Close closes every source queue.
func (m *kwayMerger) Close() error {
	var first error
	for _, s := range m.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// mergeInto fully drains sources in sorted order into output, used by
// every intermediate cascade round. seqs carries each source's
// creation sequence number for stable tie-breaking; a nil seqs
// defaults to source order. It closes the sources but leaves output
// open for the caller.
func mergeInto(output queue.Queue, sources []queue.Queue, seqs []int64, cmp Comparator) error {
	m := newKWayMerger(sources, seqs, cmp)
	for {
		ok, err := m.HasNext()
		if err != nil {
			return errors.Trace(err)
		}
		if !ok {
			break
		}
		v, err := m.Next()
		if err != nil {
			return errors.Trace(err)
		}
		if err := output.Enqueue(v); err != nil {
			return errors.Trace(err)
		}
	}
	return m.Close()
}
