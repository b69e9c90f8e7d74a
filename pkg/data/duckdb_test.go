package data

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestSaveAndGetDownload(t *testing.T) {
	repo := setupTestDB(t)

	published := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	d := &Download{
		EpisodeID:    "ep-1",
		PodcastID:    "pod-1",
		PodcastTitle: "The Daily Report",
		Title:        "News",
		PublishedAt:  published,
		AudioURL:     "https://example.com/news.mp3",
		FilePath:     "/downloads/The Daily Report - News.mp3",
	}

	require.NoError(t, repo.SaveDownload(d))
	assert.False(t, d.DownloadedAt.IsZero(), "SaveDownload should stamp DownloadedAt")

	got, err := repo.GetDownload("ep-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, d.EpisodeID, got.EpisodeID)
	assert.Equal(t, d.PodcastTitle, got.PodcastTitle)
	assert.Equal(t, d.Title, got.Title)
	assert.Equal(t, d.FilePath, got.FilePath)
	assert.True(t, published.Equal(got.PublishedAt.UTC()))
	assert.False(t, got.Tagged)
}

func TestSaveDownloadRequiresEpisodeID(t *testing.T) {
	repo := setupTestDB(t)
	assert.Error(t, repo.SaveDownload(&Download{}))
}

func TestSaveDownloadUpsert(t *testing.T) {
	repo := setupTestDB(t)

	d := &Download{EpisodeID: "ep-1", Title: "Original", FilePath: "/a.mp3"}
	require.NoError(t, repo.SaveDownload(d))

	d.Title = "Updated"
	d.FilePath = "/b.mp3"
	d.Tagged = true
	require.NoError(t, repo.SaveDownload(d))

	all, err := repo.ListDownloads()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Updated", all[0].Title)
	assert.Equal(t, "/b.mp3", all[0].FilePath)
	assert.True(t, all[0].Tagged)
}

func TestListDownloadsOrder(t *testing.T) {
	repo := setupTestDB(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		err := repo.SaveDownload(&Download{EpisodeID: id, DownloadedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	all, err := repo.ListDownloads()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].EpisodeID)
	assert.Equal(t, "old", all[2].EpisodeID)
}

func TestMarkTagged(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SaveDownload(&Download{EpisodeID: "ep-1"}))
	require.NoError(t, repo.MarkTagged("ep-1", true))

	got, err := repo.GetDownload("ep-1")
	require.NoError(t, err)
	assert.True(t, got.Tagged)
}

func TestDeleteDownload(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SaveDownload(&Download{EpisodeID: "ep-1"}))
	require.NoError(t, repo.DeleteDownload("ep-1"))

	got, err := repo.GetDownload("ep-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetNonExistentDownload(t *testing.T) {
	repo := setupTestDB(t)

	got, err := repo.GetDownload("non-existent")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != nil {
		t.Error("Expected nil for non-existent episode")
	}
}
