package models

import "time"

// Playlist is a user-created, ordered collection of episodes. Duplicate
// episode IDs are rejected by the manager layer, not by the store.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	EpisodeIDs  []string  `json:"episodeIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Valid reports whether the playlist satisfies its structural invariants
func (p *Playlist) Valid() bool {
	return p.ID != "" && p.Name != ""
}

// Contains reports whether the playlist already holds the episode
func (p *Playlist) Contains(episodeID string) bool {
	for _, id := range p.EpisodeIDs {
		if id == episodeID {
			return true
		}
	}
	return false
}

// Remove deletes the first occurrence of the episode from the playlist
func (p *Playlist) Remove(episodeID string) bool {
	for i, id := range p.EpisodeIDs {
		if id == episodeID {
			p.EpisodeIDs = append(p.EpisodeIDs[:i], p.EpisodeIDs[i+1:]...)
			return true
		}
	}
	return false
}
