package models

import "time"

// RepeatMode controls what happens when navigation reaches the end of a queue
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatOne  RepeatMode = "one"
	RepeatAll  RepeatMode = "all"
)

// Queue is an ordered playback sequence with a pointer to the current
// episode. Invariant: 0 <= CurrentIndex < len(EpisodeIDs) whenever the
// queue is non-empty.
type Queue struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	EpisodeIDs   []string   `json:"episodeIds"`
	CurrentIndex int        `json:"currentIndex"`
	AutoPlayNext bool       `json:"autoPlayNext"`
	Shuffle      bool       `json:"shuffle"`
	Repeat       RepeatMode `json:"repeat"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Valid reports whether the queue satisfies its structural invariants
func (q *Queue) Valid() bool {
	if q.ID == "" || q.Name == "" {
		return false
	}
	switch q.Repeat {
	case RepeatNone, RepeatOne, RepeatAll:
	default:
		return false
	}
	if len(q.EpisodeIDs) == 0 {
		return q.CurrentIndex == 0
	}
	return q.CurrentIndex >= 0 && q.CurrentIndex < len(q.EpisodeIDs)
}

// Current returns the episode ID at the current index
func (q *Queue) Current() (string, bool) {
	if len(q.EpisodeIDs) == 0 {
		return "", false
	}
	return q.EpisodeIDs[q.CurrentIndex], true
}

// Next advances the queue and returns the new current episode ID.
// Repeat "all" wraps past the last episode; "none" stops there with the
// index unchanged. Repeat "one" advances exactly like "none": repeat-one
// only affects resume-on-end during playback, not manual skipping.
func (q *Queue) Next() (string, bool) {
	if len(q.EpisodeIDs) == 0 {
		return "", false
	}

	if q.CurrentIndex >= len(q.EpisodeIDs)-1 {
		if q.Repeat != RepeatAll {
			return "", false
		}
		q.CurrentIndex = 0
		return q.EpisodeIDs[0], true
	}

	q.CurrentIndex++
	return q.EpisodeIDs[q.CurrentIndex], true
}

// Previous moves the queue backwards and returns the new current episode
// ID. Repeat "all" wraps before the first episode; otherwise navigation
// stops with the index unchanged.
func (q *Queue) Previous() (string, bool) {
	if len(q.EpisodeIDs) == 0 {
		return "", false
	}

	if q.CurrentIndex == 0 {
		if q.Repeat != RepeatAll {
			return "", false
		}
		q.CurrentIndex = len(q.EpisodeIDs) - 1
		return q.EpisodeIDs[q.CurrentIndex], true
	}

	q.CurrentIndex--
	return q.EpisodeIDs[q.CurrentIndex], true
}

// Add appends an episode to the end of the queue
func (q *Queue) Add(episodeID string) {
	q.EpisodeIDs = append(q.EpisodeIDs, episodeID)
}

// Remove deletes the first occurrence of the episode from the queue and
// adjusts CurrentIndex: removing before the current position shifts it
// down by one so the currently playing episode stays current; removing at
// or after leaves it, clamped to the new length when it falls off the end.
func (q *Queue) Remove(episodeID string) bool {
	pos := -1
	for i, id := range q.EpisodeIDs {
		if id == episodeID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}

	q.EpisodeIDs = append(q.EpisodeIDs[:pos], q.EpisodeIDs[pos+1:]...)

	if pos < q.CurrentIndex {
		q.CurrentIndex--
	}
	if q.CurrentIndex >= len(q.EpisodeIDs) {
		q.CurrentIndex = len(q.EpisodeIDs) - 1
	}
	if q.CurrentIndex < 0 {
		q.CurrentIndex = 0
	}
	return true
}
