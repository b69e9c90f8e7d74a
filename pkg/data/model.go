package data

import (
	"encoding/json"
	"time"
)

type Episode struct {
	ID           string
	Title        string
	PodcastID    string
	PodcastTitle string
	Author       string
	PublishedAt  time.Time
	AudioURL     string
	FileType     string
	Size         int64
	Duration     int // seconds
	Starred      bool
	Raw          json.RawMessage // record as returned by the API
}

// Podcast returns the podcast the episode belongs to.
func (e *Episode) Podcast() Podcast {
	return Podcast{ID: e.PodcastID, Title: e.PodcastTitle}
}

type Podcast struct {
	ID         string
	Title      string
	ArtworkURL string
}

// PodcastsOf returns the distinct podcasts of a batch in first-seen order.
func PodcastsOf(episodes []Episode) []Podcast {
	seen := make(map[string]bool)
	var out []Podcast
	for i := range episodes {
		p := episodes[i].Podcast()
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// Download is a history record of an episode written to disk.
type Download struct {
	EpisodeID    string
	PodcastID    string
	PodcastTitle string
	Title        string
	PublishedAt  time.Time
	AudioURL     string
	FilePath     string
	DownloadedAt time.Time
	Tagged       bool
}

// Episode rebuilds the episode fields stored with the download.
func (d *Download) Episode() *Episode {
	return &Episode{
		ID:           d.EpisodeID,
		Title:        d.Title,
		PodcastID:    d.PodcastID,
		PodcastTitle: d.PodcastTitle,
		PublishedAt:  d.PublishedAt,
		AudioURL:     d.AudioURL,
		Starred:      true,
	}
}
