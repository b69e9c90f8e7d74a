package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kerbaras/pocketdl/pkg/data"
)

// ExportMetadata writes the raw API records of episodes to
// <dir>/metadata_<label>.json and returns the file path.
func ExportMetadata(dir, label string, episodes []data.Episode) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	records := make([]json.RawMessage, 0, len(episodes))
	for i := range episodes {
		raw := episodes[i].Raw
		if len(raw) == 0 {
			var err error
			raw, err = json.Marshal(episodeRecord(&episodes[i]))
			if err != nil {
				return "", fmt.Errorf("failed to encode episode %s: %w", episodes[i].ID, err)
			}
		}
		records = append(records, raw)
	}

	compact, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format metadata: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("metadata_%s.json", label))
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return path, nil
}

// episodeRecord mirrors the API field names for episodes built without a raw record.
func episodeRecord(ep *data.Episode) map[string]any {
	rec := map[string]any{
		"uuid":         ep.ID,
		"title":        ep.Title,
		"podcastUuid":  ep.PodcastID,
		"podcastTitle": ep.PodcastTitle,
		"url":          ep.AudioURL,
	}
	if !ep.PublishedAt.IsZero() {
		rec["published"] = ep.PublishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return rec
}
