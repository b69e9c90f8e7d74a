package data

import (
	"testing"
	"time"
)

func TestPodcastsOf(t *testing.T) {
	episodes := []Episode{
		{ID: "1", PodcastID: "a", PodcastTitle: "Alpha"},
		{ID: "2", PodcastID: "b", PodcastTitle: "Beta"},
		{ID: "3", PodcastID: "a", PodcastTitle: "Alpha"},
		{ID: "4"},
	}

	podcasts := PodcastsOf(episodes)
	if len(podcasts) != 2 {
		t.Fatalf("Expected 2 podcasts, got %d", len(podcasts))
	}
	if podcasts[0].ID != "a" || podcasts[1].ID != "b" {
		t.Errorf("Expected first-seen order [a b], got [%s %s]", podcasts[0].ID, podcasts[1].ID)
	}
	if podcasts[0].Title != "Alpha" {
		t.Errorf("Expected Title 'Alpha', got '%s'", podcasts[0].Title)
	}
}

func TestDownloadEpisode(t *testing.T) {
	published := time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)
	d := Download{
		EpisodeID:    "ep-1",
		PodcastID:    "pod-1",
		PodcastTitle: "Show",
		Title:        "Pilot",
		PublishedAt:  published,
		AudioURL:     "https://example.com/pilot.mp3",
	}

	ep := d.Episode()
	if ep.ID != "ep-1" || ep.PodcastID != "pod-1" {
		t.Errorf("Unexpected ids: %s / %s", ep.ID, ep.PodcastID)
	}
	if ep.PodcastTitle != "Show" || ep.Title != "Pilot" {
		t.Errorf("Unexpected titles: %s / %s", ep.PodcastTitle, ep.Title)
	}
	if !ep.PublishedAt.Equal(published) {
		t.Errorf("Expected PublishedAt %v, got %v", published, ep.PublishedAt)
	}
}
