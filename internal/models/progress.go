package models

import "time"

// Completion is derived from proximity to the end of the episode, not from
// position == duration: players rarely report the exact final second.
const completionThresholdSeconds = 15

// PlayProgress tracks playback state for a single episode. One entry per
// episode, keyed by EpisodeID inside the progress aggregate.
type PlayProgress struct {
	EpisodeID    string    `json:"episodeId"`
	PodcastID    string    `json:"podcastId"`
	Position     int       `json:"position"` // seconds elapsed
	Duration     int       `json:"duration"` // seconds
	LastPlayedAt time.Time `json:"lastPlayedAt"`
	Completed    bool      `json:"completed"`
}

// NearEnd reports whether the position is close enough to the end of the
// episode to count as completed: within the threshold of the end, or past
// 99 percent for long episodes
func (p PlayProgress) NearEnd() bool {
	if p.Duration <= 0 {
		return false
	}
	if p.Duration-p.Position <= completionThresholdSeconds {
		return true
	}
	return p.CompletionPercent() >= 99
}

// CompletionPercent returns position/duration as a percentage clamped to
// [0,100]. Returns 0 when duration is not positive.
func (p PlayProgress) CompletionPercent() float64 {
	if p.Duration <= 0 {
		return 0
	}
	pct := float64(p.Position) / float64(p.Duration) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
