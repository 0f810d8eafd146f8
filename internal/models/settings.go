package models

import "time"

// Playback setting bounds. Out-of-range values are clamped, not rejected.
const (
	MinVolume        = 0.0
	MaxVolume        = 1.0
	MinPlaybackSpeed = 0.5
	MaxPlaybackSpeed = 3.0
)

// PlaybackDefaults holds the global playback settings applied to every
// podcast that has no per-podcast override
type PlaybackDefaults struct {
	Volume           float64 `json:"volume"`
	PlaybackSpeed    float64 `json:"playbackSpeed"`
	SkipIntroSeconds int     `json:"skipIntroSeconds"`
	SkipOutroSeconds int     `json:"skipOutroSeconds"`
}

// PluginSettings is the persisted user settings aggregate
type PluginSettings struct {
	DataFolderPath          string           `json:"dataFolderPath"`
	DefaultPlaybackSettings PlaybackDefaults `json:"defaultPlaybackSettings"`
	AutoDownload            bool             `json:"autoDownload"`
	MaxCacheEpisodes        int              `json:"maxCacheEpisodes"`
	FeedUpdateIntervalMs    int64            `json:"feedUpdateInterval"` // milliseconds
	EnableNotifications     bool             `json:"enableNotifications"`
}

// DefaultPluginSettings returns the settings written on first run and used
// to backfill fields missing from older settings files
func DefaultPluginSettings() PluginSettings {
	return PluginSettings{
		DataFolderPath: "podkeep",
		DefaultPlaybackSettings: PlaybackDefaults{
			Volume:           1.0,
			PlaybackSpeed:    1.0,
			SkipIntroSeconds: 0,
			SkipOutroSeconds: 0,
		},
		AutoDownload:         false,
		MaxCacheEpisodes:     50,
		FeedUpdateIntervalMs: 3600000,
		EnableNotifications:  true,
	}
}

// Valid reports whether all settings fall within their documented ranges
func (s PluginSettings) Valid() bool {
	p := s.DefaultPlaybackSettings
	return s.DataFolderPath != "" &&
		p.Volume >= MinVolume && p.Volume <= MaxVolume &&
		p.PlaybackSpeed >= MinPlaybackSpeed && p.PlaybackSpeed <= MaxPlaybackSpeed &&
		p.SkipIntroSeconds >= 0 && p.SkipOutroSeconds >= 0 &&
		s.MaxCacheEpisodes >= 0 && s.FeedUpdateIntervalMs >= 0
}

// ClampVolume clamps a volume to [0,1]
func ClampVolume(v float64) float64 {
	return clamp(v, MinVolume, MaxVolume)
}

// ClampPlaybackSpeed clamps a playback speed to [0.5,3.0]
func ClampPlaybackSpeed(v float64) float64 {
	return clamp(v, MinPlaybackSpeed, MaxPlaybackSpeed)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FeedUpdateInterval returns the refresh interval as a duration, falling
// back to the default when unset
func (s PluginSettings) FeedUpdateInterval() time.Duration {
	if s.FeedUpdateIntervalMs <= 0 {
		return time.Duration(DefaultPluginSettings().FeedUpdateIntervalMs) * time.Millisecond
	}
	return time.Duration(s.FeedUpdateIntervalMs) * time.Millisecond
}

// Normalize clamps all numeric settings to their documented ranges
func (s PluginSettings) Normalize() PluginSettings {
	out := s
	out.DefaultPlaybackSettings.Volume = ClampVolume(out.DefaultPlaybackSettings.Volume)
	out.DefaultPlaybackSettings.PlaybackSpeed = ClampPlaybackSpeed(out.DefaultPlaybackSettings.PlaybackSpeed)
	if out.DefaultPlaybackSettings.SkipIntroSeconds < 0 {
		out.DefaultPlaybackSettings.SkipIntroSeconds = 0
	}
	if out.DefaultPlaybackSettings.SkipOutroSeconds < 0 {
		out.DefaultPlaybackSettings.SkipOutroSeconds = 0
	}
	if out.MaxCacheEpisodes < 0 {
		out.MaxCacheEpisodes = 0
	}
	if out.FeedUpdateIntervalMs < 0 {
		out.FeedUpdateIntervalMs = 0
	}
	return out
}
