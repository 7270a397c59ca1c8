package tidmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxlcore/xxl/core/container"
)

func TestTIDEncodeDecodeRoundTrip(t *testing.T) {
	conv := container.Uint32IDConverter{}
	tid := TID{PageID: 42, RecordNr: -7}
	encoded := Encode(tid, conv)
	assert.Equal(t, Size(conv), len(encoded))
	assert.Equal(t, tid, Decode(encoded, conv))
}

func TestLinkManagerHasNoTable(t *testing.T) {
	m := NewLinkManager(container.Uint32IDConverter{})
	tid := TID{PageID: 3, RecordNr: 5}

	id, err := m.Insert(tid)
	require.NoError(t, err)

	got, ok := m.Query(id)
	require.True(t, ok)
	assert.Equal(t, tid, got)

	assert.True(t, m.UseLinks())
	assert.Nil(t, m.Ids())
}

func TestSyntheticManagerRewritesOnUpdate(t *testing.T) {
	m := NewSyntheticManager(container.Uint32IDConverter{})
	id, err := m.Insert(TID{PageID: 1, RecordNr: 0})
	require.NoError(t, err)

	require.NoError(t, m.Update(id, TID{PageID: 2, RecordNr: 9}))
	got, ok := m.Query(id)
	require.True(t, ok)
	assert.Equal(t, TID{PageID: 2, RecordNr: 9}, got)
	assert.False(t, m.UseLinks())
}

func TestSyntheticManagerIdsIteratesAllLive(t *testing.T) {
	m := NewSyntheticManager(container.Uint32IDConverter{})
	id1, _ := m.Insert(TID{PageID: 1, RecordNr: 0})
	id2, _ := m.Insert(TID{PageID: 1, RecordNr: 1})
	require.NoError(t, m.Remove(id1))

	it := m.Ids()
	require.NotNil(t, it)
	var seen []PublicID
	for it.HasNext() {
		id, err := it.Next()
		require.NoError(t, err)
		seen = append(seen, id)
	}
	assert.Equal(t, []PublicID{PublicID(id2)}, seen)
}

func TestSyntheticManagerReusesFreedID(t *testing.T) {
	m := NewSyntheticManager(container.Uint32IDConverter{})
	id1, _ := m.Insert(TID{PageID: 1, RecordNr: 0})
	require.NoError(t, m.Remove(id1))

	id2, _ := m.Insert(TID{PageID: 1, RecordNr: 1})
	assert.Equal(t, id1, id2)
}
