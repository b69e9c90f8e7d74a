package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/integrations"
	"github.com/kerbaras/pocketdl/pkg/logging"
	"github.com/kerbaras/pocketdl/pkg/metadata"
)

// maxArtworkBytes bounds how much of an artwork response is read.
const maxArtworkBytes = 20 << 20

// ArtworkStore persists processed artwork per podcast.
type ArtworkStore interface {
	Get(podcastID string) ([]byte, bool)
	Put(podcastID string, data []byte) error
}

// ArtworkFetcher resolves the cover image embedded into episode files.
type ArtworkFetcher struct {
	client    *http.Client
	store     ArtworkStore
	processor *integrations.ArtworkProcessor
	urlFor    func(podcastID string) string
	logger    *slog.Logger
}

func NewArtworkFetcher(client *http.Client, store ArtworkStore, processor *integrations.ArtworkProcessor, urlFor func(string) string, logger *slog.Logger) *ArtworkFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if processor == nil {
		processor = integrations.NewArtworkProcessor(0)
	}
	if logger == nil {
		logger = logging.Null()
	}
	return &ArtworkFetcher{
		client:    client,
		store:     store,
		processor: processor,
		urlFor:    urlFor,
		logger:    logger,
	}
}

// Fetch returns the podcast's artwork from the store, or downloads and
// normalizes it. Failures are reported as *metadata.ArtworkFetchError.
func (f *ArtworkFetcher) Fetch(ctx context.Context, podcast data.Podcast) (*metadata.Picture, error) {
	if podcast.ID != "" && f.store != nil {
		if cached, ok := f.store.Get(podcast.ID); ok {
			return &metadata.Picture{MIMEType: "image/jpeg", Data: cached}, nil
		}
	}

	artURL := podcast.ArtworkURL
	if artURL == "" && f.urlFor != nil && podcast.ID != "" {
		artURL = f.urlFor(podcast.ID)
	}
	fail := func(err error) error {
		return &metadata.ArtworkFetchError{PodcastID: podcast.ID, URL: artURL, Err: err}
	}
	if artURL == "" {
		return nil, fail(fmt.Errorf("no artwork url"))
	}

	raw, err := f.download(ctx, artURL)
	if err != nil {
		return nil, fail(err)
	}

	pic, err := f.processor.Process(raw)
	if err != nil {
		return nil, fail(err)
	}

	if podcast.ID != "" && f.store != nil {
		if err := f.store.Put(podcast.ID, pic.Data); err != nil {
			f.logger.Warn("failed to cache artwork", "podcast", podcast.ID, "error", err)
		}
	}
	return pic, nil
}

func (f *ArtworkFetcher) download(ctx context.Context, artURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status for artwork: %s", resp.Status)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}
	return content, nil
}
