package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(repeat RepeatMode) *Queue {
	return &Queue{
		ID:         "q1",
		Name:       "Test Queue",
		EpisodeIDs: []string{"a", "b", "c"},
		Repeat:     repeat,
	}
}

func TestQueue_Next_RepeatNone_StopsAtEnd(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 2

	id, ok := q.Next()

	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, 2, q.CurrentIndex, "index must be unchanged at the end")
}

func TestQueue_Next_RepeatAll_WrapsAround(t *testing.T) {
	q := newTestQueue(RepeatAll)
	q.CurrentIndex = 2

	id, ok := q.Next()

	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, 0, q.CurrentIndex)
}

func TestQueue_Next_RepeatOne_AdvancesLikeNone(t *testing.T) {
	// Repeat "one" affects resume-on-end during playback, not manual
	// navigation: Next() must return the episode at the next index.
	q := newTestQueue(RepeatOne)
	q.CurrentIndex = 0

	id, ok := q.Next()

	require.True(t, ok)
	assert.Equal(t, "b", id)
	assert.Equal(t, 1, q.CurrentIndex)

	q.CurrentIndex = 2
	_, ok = q.Next()
	assert.False(t, ok, "repeat one does not wrap at the end")
	assert.Equal(t, 2, q.CurrentIndex)
}

func TestQueue_Next_Midway(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 0

	id, ok := q.Next()

	require.True(t, ok)
	assert.Equal(t, "b", id)
	assert.Equal(t, 1, q.CurrentIndex)
}

func TestQueue_Previous_RepeatNone_StopsAtStart(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 0

	_, ok := q.Previous()

	assert.False(t, ok)
	assert.Equal(t, 0, q.CurrentIndex)
}

func TestQueue_Previous_RepeatAll_WrapsToEnd(t *testing.T) {
	q := newTestQueue(RepeatAll)
	q.CurrentIndex = 0

	id, ok := q.Previous()

	require.True(t, ok)
	assert.Equal(t, "c", id)
	assert.Equal(t, 2, q.CurrentIndex)
}

func TestQueue_Next_EmptyQueue(t *testing.T) {
	q := &Queue{ID: "q1", Name: "empty", Repeat: RepeatAll}

	_, ok := q.Next()

	assert.False(t, ok)
}

func TestQueue_Remove_BeforeCurrentIndex_Decrements(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 2

	removed := q.Remove("a")

	require.True(t, removed)
	assert.Equal(t, []string{"b", "c"}, q.EpisodeIDs)
	assert.Equal(t, 1, q.CurrentIndex, "current episode must remain c")
}

func TestQueue_Remove_AtCurrentIndex_Unchanged(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 1

	removed := q.Remove("b")

	require.True(t, removed)
	assert.Equal(t, []string{"a", "c"}, q.EpisodeIDs)
	assert.Equal(t, 1, q.CurrentIndex)
}

func TestQueue_Remove_AfterCurrentIndex_Unchanged(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 0

	removed := q.Remove("c")

	require.True(t, removed)
	assert.Equal(t, []string{"a", "b"}, q.EpisodeIDs)
	assert.Equal(t, 0, q.CurrentIndex)
}

func TestQueue_Remove_LastEpisode_ClampsIndex(t *testing.T) {
	q := newTestQueue(RepeatNone)
	q.CurrentIndex = 2

	removed := q.Remove("c")

	require.True(t, removed)
	assert.Equal(t, 1, q.CurrentIndex, "index clamps to new length - 1")
}

func TestQueue_Remove_Missing(t *testing.T) {
	q := newTestQueue(RepeatNone)

	assert.False(t, q.Remove("zzz"))
	assert.Len(t, q.EpisodeIDs, 3)
}

func TestQueue_Valid(t *testing.T) {
	q := newTestQueue(RepeatNone)
	assert.True(t, q.Valid())

	q.CurrentIndex = 3
	assert.False(t, q.Valid())

	empty := &Queue{ID: "q2", Name: "empty", Repeat: RepeatNone}
	assert.True(t, empty.Valid())

	empty.Repeat = "bogus"
	assert.False(t, empty.Valid())
}
