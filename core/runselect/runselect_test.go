package runselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	values []interface{}
	pos    int
}

func (s *sliceSource) Next() (interface{}, bool) {
	if s.pos >= len(s.values) {
		return nil, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

func intCmp(a, b interface{}) int { return a.(int) - b.(int) }

func drainRuns(g *Generator) [][]int {
	var runs [][]int
	var current []int
	for {
		v, boundary, done := g.Next()
		if done {
			break
		}
		if boundary && len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, v.(int))
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

func TestEachRunIsNonDecreasing(t *testing.T) {
	src := &sliceSource{values: []interface{}{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}}
	g := New(src, 3, intCmp)

	runs := drainRuns(g)
	require.NotEmpty(t, runs)
	for _, run := range runs {
		for i := 1; i < len(run); i++ {
			assert.LessOrEqual(t, run[i-1], run[i])
		}
	}
}

func TestEmitsPermutationOfInput(t *testing.T) {
	input := []interface{}{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	src := &sliceSource{values: input}
	g := New(src, 4, intCmp)

	var emitted []int
	for {
		v, _, done := g.Next()
		if done {
			break
		}
		emitted = append(emitted, v.(int))
	}
	assert.ElementsMatch(t, []int{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}, emitted)
	assert.Len(t, emitted, len(input))
}

func TestSortedInputProducesOneRun(t *testing.T) {
	src := &sliceSource{values: []interface{}{1, 2, 3, 4, 5}}
	g := New(src, 2, intCmp)

	runs := drainRuns(g)
	assert.Len(t, runs, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, runs[0])
}
