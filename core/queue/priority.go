package queue

// RunHandle pairs a Queue with a cached priority key and the creation
// sequence number it was pushed with, so callers can recover stable
// input order even after the queue has been reordered by Key.
type RunHandle struct {
	Queue Queue
	Key   int
	Seq   int64
}

// KeyFunc extracts the priority key for a queue; the default is the
// queue's own Size(), the standard "merge smallest first" discipline.
type KeyFunc func(Queue) int

// SizeKey is the default KeyFunc.
func SizeKey(q Queue) int { return q.Size() }

// RunPriorityQueue is a binary min-heap of RunHandle ordered by Key,
// so the smallest run is always popped first.
type RunPriorityQueue struct {
	key   KeyFunc
	items []RunHandle
}

// NewRunPriorityQueue returns an empty priority queue ordered by key.
// A nil key defaults to SizeKey.
func NewRunPriorityQueue(key KeyFunc) *RunPriorityQueue {
	if key == nil {
		key = SizeKey
	}
	return &RunPriorityQueue{key: key}
}

func (pq *RunPriorityQueue) Len() int { return len(pq.items) }

// Push adds q under creation sequence number seq, recomputing its key
// at push time.
func (pq *RunPriorityQueue) Push(q Queue, seq int64) {
	h := RunHandle{Queue: q, Key: pq.key(q), Seq: seq}
	pq.items = append(pq.items, h)
	pq.siftUp(len(pq.items) - 1)
}

// Pop removes and returns the smallest-keyed run, along with the
// sequence number it was pushed with. ok is false when empty.
func (pq *RunPriorityQueue) Pop() (Queue, int64, bool) {
	if len(pq.items) == 0 {
		return nil, 0, false
	}
	top := pq.items[0]
	last := len(pq.items) - 1
	pq.items[0] = pq.items[last]
	pq.items = pq.items[:last]
	if len(pq.items) > 0 {
		pq.siftDown(0)
	}
	return top.Queue, top.Seq, true
}

func (pq *RunPriorityQueue) less(i, j int) bool { return pq.items[i].Key < pq.items[j].Key }

func (pq *RunPriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.items[i], pq.items[parent] = pq.items[parent], pq.items[i]
		i = parent
	}
}

func (pq *RunPriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < n && pq.less(left, smallest) {
			smallest = left
		}
		if right < n && pq.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		pq.items[i], pq.items[smallest] = pq.items[smallest], pq.items[i]
		i = smallest
	}
}
