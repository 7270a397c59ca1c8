// Package runselect implements the replacement-selection run
// generator: a single backing array of capacity 2H, partitioned into
// an active and a frozen min-heap, pulled one record at a time by the
// merge sorter's open phase.
package runselect

// Comparator orders two records the way the active sort wants them;
// it returns <0, 0, or >0 like bytes.Compare.
type Comparator func(a, b interface{}) int

// Source is the pull-driven input sequence fed to the generator.
type Source interface {
	// Next returns the next record, or ok=false once exhausted.
	Next() (interface{}, bool)
}

type entry struct {
	value interface{}
	seq   int64
}

// Generator produces a finite sequence of finite runs, each
// monotonically non-decreasing under cmp, from source. Ties are
// stable: when two records compare equal, the one read first from
// source is emitted first.
type Generator struct {
	source   Source
	cmp      Comparator
	capacity int

	buf    []entry // single backing array, capacity 2*capacity
	active []entry // heap of "can still extend the current run"
	frozen []entry // heap of "must wait for the next run"

	seqCounter  int64
	lastEmitted interface{}
	haveLast    bool
	sourceDone  bool
	started     bool
}

// New returns a generator reading from source, with an active-heap
// capacity of H records under cmp.
func New(source Source, capacity int, cmp Comparator) *Generator {
	g := &Generator{source: source, cmp: cmp, capacity: capacity}
	g.buf = make([]entry, 2*capacity)
	g.active = g.buf[0:0:capacity]
	g.frozen = g.buf[capacity:capacity:2*capacity]
	return g
}

func (g *Generator) nextSeq() int64 {
	g.seqCounter++
	return g.seqCounter
}

func (g *Generator) fill() {
	for len(g.active) < g.capacity && !g.sourceDone {
		v, ok := g.source.Next()
		if !ok {
			g.sourceDone = true
			break
		}
		g.active = heapPush(g.active, entry{value: v, seq: g.nextSeq()}, g.less)
	}
}

// Next returns the next record in run-generation order. boundary is
// true when this record starts a new run (always false for the very
// first record of the very first run). done is true once every input
// record has been emitted.
func (g *Generator) Next() (value interface{}, boundary bool, done bool) {
	if !g.started {
		g.started = true
		g.fill()
	}

	if len(g.active) == 0 {
		if len(g.frozen) == 0 {
			return nil, false, true
		}
		g.active, g.frozen = g.frozen, g.active[:0]
		g.haveLast = false
		boundary = true
	}

	top := g.active[0]
	g.active = heapPop(g.active, g.less)
	g.lastEmitted = top.value
	g.haveLast = true

	if !g.sourceDone {
		v, ok := g.source.Next()
		if !ok {
			g.sourceDone = true
		} else {
			e := entry{value: v, seq: g.nextSeq()}
			if g.cmp(v, g.lastEmitted) >= 0 {
				g.active = heapPush(g.active, e, g.less)
			} else {
				g.frozen = heapPush(g.frozen, e, g.less)
			}
		}
	}

	return top.value, boundary, false
}

// less is the heap ordering: cmp first, insertion order (seq) breaks
// ties so equal keys come out in read order.
func (g *Generator) less(a, b entry) bool {
	if c := g.cmp(a.value, b.value); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}
