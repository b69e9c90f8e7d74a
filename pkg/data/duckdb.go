package data

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	episode_id    VARCHAR PRIMARY KEY,
	podcast_id    VARCHAR,
	podcast_title VARCHAR,
	title         VARCHAR,
	published_at  TIMESTAMP,
	audio_url     VARCHAR,
	file_path     VARCHAR,
	downloaded_at TIMESTAMP,
	tagged        BOOLEAN DEFAULT false
)`

// InitDuckDB opens the history database at path, creating parent
// directories and the schema when needed.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Repository stores the download history.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveDownload inserts or replaces the record for d.EpisodeID.
func (r *Repository) SaveDownload(d *Download) error {
	if d.EpisodeID == "" {
		return errors.New("download has no episode id")
	}
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO downloads
			(episode_id, podcast_id, podcast_title, title, published_at, audio_url, file_path, downloaded_at, tagged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.EpisodeID, d.PodcastID, d.PodcastTitle, d.Title, nullTime(d.PublishedAt),
		d.AudioURL, d.FilePath, d.DownloadedAt, d.Tagged,
	)
	if err != nil {
		return fmt.Errorf("failed to save download %s: %w", d.EpisodeID, err)
	}
	return nil
}

// GetDownload returns the record for an episode, or nil when none exists.
func (r *Repository) GetDownload(episodeID string) (*Download, error) {
	row := r.db.QueryRow(`
		SELECT episode_id, podcast_id, podcast_title, title, published_at, audio_url, file_path, downloaded_at, tagged
		FROM downloads WHERE episode_id = ?`, episodeID)

	d, err := scanDownload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDownloads returns every record, most recent download first.
func (r *Repository) ListDownloads() ([]*Download, error) {
	rows, err := r.db.Query(`
		SELECT episode_id, podcast_id, podcast_title, title, published_at, audio_url, file_path, downloaded_at, tagged
		FROM downloads ORDER BY downloaded_at DESC, episode_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Download
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) MarkTagged(episodeID string, tagged bool) error {
	_, err := r.db.Exec(`UPDATE downloads SET tagged = ? WHERE episode_id = ?`, tagged, episodeID)
	return err
}

func (r *Repository) DeleteDownload(episodeID string) error {
	_, err := r.db.Exec(`DELETE FROM downloads WHERE episode_id = ?`, episodeID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDownload(s scanner) (*Download, error) {
	var (
		d         Download
		published sql.NullTime
		podcastID sql.NullString
		podcast   sql.NullString
		title     sql.NullString
		audioURL  sql.NullString
		filePath  sql.NullString
	)
	if err := s.Scan(&d.EpisodeID, &podcastID, &podcast, &title, &published, &audioURL, &filePath, &d.DownloadedAt, &d.Tagged); err != nil {
		return nil, err
	}
	d.PodcastID = podcastID.String
	d.PodcastTitle = podcast.String
	d.Title = title.String
	d.AudioURL = audioURL.String
	d.FilePath = filePath.String
	if published.Valid {
		d.PublishedAt = published.Time
	}
	return &d, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
