package recordmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/placement"
	"github.com/xxlcore/xxl/core/tidmgr"
)

func newTestManager(t *testing.T, pageSize uint32, directReserves int) *Manager {
	t.Helper()
	c := container.NewMemoryContainer(pageSize)
	return New(Config{
		Container:              c,
		PageSize:               pageSize,
		Strategy:               placement.NewFirstFitStrategy(),
		TIDManager:             tidmgr.NewLinkManager(container.Uint32IDConverter{}),
		NumberOfDirectReserves: directReserves,
	})
}

// Scenario 1: insert-get round-trip.
func TestInsertGetRoundTrip(t *testing.T) {
	m := newTestManager(t, 512, 4)

	sizes := []int{100, 100, 100, 400}
	ids := make([]tidmgr.PublicID, len(sizes))
	records := make([][]byte, len(sizes))
	for i, s := range sizes {
		records[i] = make([]byte, s)
		for j := range records[i] {
			records[i][j] = byte(i)
		}
		id, err := m.Insert(records[i])
		require.NoError(t, err)
		ids[i] = id
	}

	assert.Equal(t, 4, m.Size())
	assert.Contains(t, []int{1, 2}, m.NumberOfPages())
	for i, id := range ids {
		got, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, records[i], got)
	}
	require.NoError(t, m.CheckConsistency())
}

// Scenario 2: grow-with-link.
func TestGrowWithLink(t *testing.T) {
	m := newTestManager(t, 128, 4)

	a := make([]byte, 50)
	for i := range a {
		a[i] = 'A'
	}
	b := make([]byte, 50)
	for i := range b {
		b[i] = 'B'
	}
	idA, err := m.Insert(a)
	require.NoError(t, err)
	_, err = m.Insert(b)
	require.NoError(t, err)

	grown := make([]byte, 100)
	for i := range grown {
		grown[i] = 'Z'
	}
	require.NoError(t, m.Update(idA, grown))

	got, err := m.Get(idA)
	require.NoError(t, err)
	assert.Equal(t, grown, got)
	assert.Equal(t, 2, m.NumberOfPages())
	require.NoError(t, m.CheckConsistency())
}

// Scenario 3: empty-page reclamation.
func TestEmptyPageReclamation(t *testing.T) {
	m := newTestManager(t, 256, 4)

	id, err := m.Insert([]byte("solo"))
	require.NoError(t, err)
	require.NoError(t, m.Remove(id))

	assert.Equal(t, 0, m.NumberOfPages())
	_, err = m.Get(id)
	assert.Error(t, err)
}

// Scenario 4: reservation materialization. The first record seeds the
// page directly (insert always lands on a real page slot); with K=2
// reservation slots, the two Reserve calls that follow stay purely
// in-memory, and a third forces the on-page fallback path.
func TestReservationMaterialization(t *testing.T) {
	m := newTestManager(t, 512, 2)

	seed := []byte("seed")
	idSeed, err := m.Insert(seed)
	require.NoError(t, err)

	payload1 := []byte("first")
	payload2 := []byte("second")
	payload3 := []byte("third")

	id1, err := m.Reserve(func() []byte { return payload1 })
	require.NoError(t, err)
	id2, err := m.Reserve(func() []byte { return payload2 })
	require.NoError(t, err)
	id3, err := m.Reserve(func() []byte { return payload3 })
	require.NoError(t, err)

	cases := []struct {
		id   tidmgr.PublicID
		want []byte
	}{
		{idSeed, seed}, {id1, payload1}, {id2, payload2}, {id3, payload3},
	}
	for _, c := range cases {
		got, err := m.Get(c.id)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	require.NoError(t, m.CheckConsistency())
}

func TestRemoveUnmaterializedReservation(t *testing.T) {
	m := newTestManager(t, 512, 2)
	seedID, err := m.Insert([]byte("seed"))
	require.NoError(t, err)

	reservedID, err := m.Reserve(func() []byte { return []byte("ephemeral") })
	require.NoError(t, err)

	require.NoError(t, m.Remove(reservedID))
	assert.Equal(t, 1, m.NumberOfPages())
	_, err = m.Get(seedID)
	require.NoError(t, err)
	require.NoError(t, m.CheckConsistency())
}
