package mergesort

import (
	"github.com/juju/errors"

	"github.com/xxlcore/xxl/core/queue"
	"github.com/xxlcore/xxl/core/runselect"
)

// Config assembles everything a Sorter needs: the memory budget, the
// unsorted record source, the record comparator, the queue
// implementation runs are stored in, and the ordering used to pick
// which runs merge first.
type Config struct {
	Params       Params
	Source       runselect.Source
	Comparator   Comparator
	QueueFactory queue.Factory
	QueueOrder   queue.KeyFunc // nil defaults to queue.SizeKey
}

// Sorter is the External Merge-Sort Engine: it generates runs by
// replacement selection, merges them down in fan-in-bounded cascades,
// and exposes the result as a single pull-driven sorted stream.
type Sorter struct {
	cfg     Config
	derived derived

	curInputBufferSize  int64
	curOutputBufferSize int64

	nextSeq int64
	final   *kwayMerger
}

// New builds a Sorter. Run it with Open.
func New(cfg Config) *Sorter {
	if cfg.QueueOrder == nil {
		cfg.QueueOrder = queue.SizeKey
	}
	return &Sorter{cfg: cfg, derived: deriveParams(cfg.Params)}
}

func (s *Sorter) inputSizeProvider() queue.SizeProvider {
	return func() int { return int(s.curInputBufferSize) }
}

func (s *Sorter) outputSizeProvider() queue.SizeProvider {
	return func() int { return int(s.curOutputBufferSize) }
}

// allocSeq returns the next creation sequence number, used to keep
// ties stable across however many rounds of size-priority reordering
// a run goes through before reaching the final merger.
func (s *Sorter) allocSeq() int64 {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

func (s *Sorter) newQueue() (queue.Queue, error) {
	q, err := s.cfg.QueueFactory(s.inputSizeProvider(), s.outputSizeProvider())
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := q.Open(); err != nil {
		return nil, errors.Trace(err)
	}
	return q, nil
}

// Open runs the full pipeline: generates initial runs by replacement
// selection, cascades them down to at most finalFanIn runs, and
// prepares the online final merger. Call Next/HasNext/Peek after this
// returns.
func (s *Sorter) Open() error {
	pq, err := s.buildInitialRuns()
	if err != nil {
		return errors.Trace(err)
	}
	if err := s.cascade(pq); err != nil {
		return errors.Trace(err)
	}
	return s.openFinalMerger(pq)
}

// buildInitialRuns drains the source through a replacement-selection
// generator, spilling each run boundary into its own queue.
func (s *Sorter) buildInitialRuns() (*queue.RunPriorityQueue, error) {
	s.curOutputBufferSize = s.derived.firstOutputBufferSize
	s.curInputBufferSize = s.derived.inputBufferSize

	gen := runselect.New(s.cfg.Source, int(s.derived.heapSize), runselect.Comparator(s.cfg.Comparator))
	pq := queue.NewRunPriorityQueue(s.cfg.QueueOrder)

	var current queue.Queue
	var currentSeq int64
	for {
		v, boundary, done := gen.Next()
		if done {
			break
		}
		if current == nil || boundary {
			if current != nil {
				pq.Push(current, currentSeq)
			}
			q, err := s.newQueue()
			if err != nil {
				return nil, errors.Trace(err)
			}
			current = q
			currentSeq = s.allocSeq()
		}
		if err := current.Enqueue(v); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if current != nil {
		pq.Push(current, currentSeq)
	}
	return pq, nil
}

// cascade repeatedly merges the smallest runs together until at most
// finalFanIn runs remain, using the first-round fan-in for the first
// round and the steady-state fan-in for every round after.
func (s *Sorter) cascade(pq *queue.RunPriorityQueue) error {
	s.curInputBufferSize = s.derived.inputBufferSize
	s.curOutputBufferSize = s.derived.outputBufferSize

	first := true
	for int64(pq.Len()) > s.derived.finalFanIn {
		k := s.derived.fanIn
		if first {
			k = firstMergeFanIn(int64(pq.Len()), s.derived.finalFanIn, s.derived.fanIn)
			first = false
		}
		if k < 2 {
			k = 2
		}
		if int64(pq.Len()) < k {
			k = int64(pq.Len())
		}

		batch := make([]queue.Queue, 0, k)
		batchSeqs := make([]int64, 0, k)
		minSeq := int64(0)
		for i := int64(0); i < k; i++ {
			q, seq, ok := pq.Pop()
			if !ok {
				break
			}
			batch = append(batch, q)
			batchSeqs = append(batchSeqs, seq)
			if i == 0 || seq < minSeq {
				minSeq = seq
			}
		}

		out, err := s.newQueue()
		if err != nil {
			return errors.Trace(err)
		}
		if err := mergeInto(out, batch, batchSeqs, s.cfg.Comparator); err != nil {
			return errors.Trace(err)
		}
		// out carries the earliest constituent's sequence number, so a
		// tie against a still-unmerged run at the next cascade round (or
		// the final merger) still resolves to genuine input order.
		pq.Push(out, minSeq)
	}
	return nil
}

// openFinalMerger drains whatever runs remain in pq into the online
// pull-driven merger.
func (s *Sorter) openFinalMerger(pq *queue.RunPriorityQueue) error {
	s.curInputBufferSize = s.derived.finalInputBufferSize

	remaining := make([]queue.Queue, 0, pq.Len())
	seqs := make([]int64, 0, pq.Len())
	for {
		q, seq, ok := pq.Pop()
		if !ok {
			break
		}
		remaining = append(remaining, q)
		seqs = append(seqs, seq)
	}
	s.final = newKWayMerger(remaining, seqs, s.cfg.Comparator)
	return nil
}

// HasNext reports whether the sorted stream has another record.
func (s *Sorter) HasNext() (bool, error) { return s.final.HasNext() }

// Next returns the next record in sorted order.
func (s *Sorter) Next() (interface{}, error) { return s.final.Next() }

// Peek returns the next record without consuming it.
func (s *Sorter) Peek() (interface{}, bool, error) { return s.final.Peek() }

// Close releases every remaining run queue.
func (s *Sorter) Close() error { return s.final.Close() }
