package runselect

// heapPush appends v to h and restores the heap property, returning
// the (possibly reallocated) slice.
func heapPush(h []entry, v entry, less func(a, b entry) bool) []entry {
	h = append(h, v)
	siftUp(h, len(h)-1, less)
	return h
}

// heapPop removes the root, moves the last element into its place,
// and restores the heap property, returning the shrunk slice.
func heapPop(h []entry, less func(a, b entry) bool) []entry {
	last := len(h) - 1
	h[0] = h[last]
	h = h[:last]
	if len(h) > 0 {
		siftDown(h, 0, less)
	}
	return h
}

func siftUp(h []entry, i int, less func(a, b entry) bool) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h[i], h[parent]) {
			break
		}
		h[i], h[parent] = h[parent], h[i]
		i = parent
	}
}

func siftDown(h []entry, i int, less func(a, b entry) bool) {
	n := len(h)
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < n && less(h[left], h[smallest]) {
			smallest = left
		}
		if right < n && less(h[right], h[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h[i], h[smallest] = h[smallest], h[i]
		i = smallest
	}
}
