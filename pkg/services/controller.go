package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/kerbaras/pocketdl/pkg/cache"
	"github.com/kerbaras/pocketdl/pkg/config"
	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/integrations"
	"github.com/kerbaras/pocketdl/pkg/logging"
	"github.com/kerbaras/pocketdl/pkg/sources"
	"github.com/kerbaras/pocketdl/pkg/utils"
)

const lockFileName = ".pocketdl.lock"

var (
	// ErrLocked is returned when another run holds the output directory.
	ErrLocked = errors.New("output directory is in use by another pocketdl process")

	// ErrNoHistory is returned for history operations when no database is configured.
	ErrNoHistory = errors.New("download history is disabled")

	// ErrNotRecorded is returned by Forget for episodes missing from the history.
	ErrNotRecorded = errors.New("episode is not in the download history")
)

// Controller wires the source, history, artwork cache and downloader for
// one command invocation.
type Controller struct {
	cfg        *config.Config
	logger     *slog.Logger
	source     sources.Source
	repo       *data.Repository
	cache      *cache.ArtworkCache
	downloader *Downloader
	lock       *flock.Flock
}

type ControllerOption func(*Controller)

// WithSource replaces the Pocket Casts client.
func WithSource(src sources.Source) ControllerOption {
	return func(c *Controller) { c.source = src }
}

// NewController opens the history database and artwork cache configured in
// cfg. Close releases them.
func NewController(cfg *config.Config, logger *slog.Logger, opts ...ControllerOption) (*Controller, error) {
	if logger == nil {
		logger = logging.Null()
	}
	c := &Controller{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(c)
	}

	apiClient := utils.NewHTTPClient(cfg.VerifySSL)
	apiClient.Timeout = cfg.Timeout
	if c.source == nil {
		c.source = sources.NewPocketCasts(cfg.Token,
			sources.WithBaseURL(cfg.APIURL),
			sources.WithStaticURL(cfg.StaticURL),
			sources.WithHTTPClient(apiClient),
		)
	}

	if cfg.Storage.HistoryDB != "" {
		repo, err := data.NewRepository(cfg.Storage.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open download history: %w", err)
		}
		c.repo = repo
	}

	artCache, err := cache.OpenArtworkCache(cfg.Storage.CacheDB)
	if err != nil {
		// artwork is optional
		logger.Warn("artwork cache unavailable, using memory only", "path", cfg.Storage.CacheDB, "error", err)
		artCache, _ = cache.OpenArtworkCache("")
	}
	c.cache = artCache

	// audio files can take much longer than an API call
	downloadClient := utils.NewDownloadClient(cfg.VerifySSL, cfg.Timeout)
	fetcher := NewArtworkFetcher(apiClient, artCache,
		integrations.NewArtworkProcessor(cfg.Download.ArtworkSize),
		c.source.ArtworkURL, logger)

	var repo Repository
	if c.repo != nil {
		repo = c.repo
	}
	c.downloader = NewDownloader(downloadClient, repo, fetcher, Options{
		OutputDir:         cfg.Download.OutputDir,
		OrganizeByPodcast: cfg.Download.OrganizeByPodcast,
		DryRun:            cfg.Download.DryRun,
		WriteTags:         cfg.Download.WriteTags,
		RequestInterval:   cfg.Download.RequestInterval,
	}, logger)

	return c, nil
}

func (c *Controller) Downloader() *Downloader {
	return c.downloader
}

// Starred verifies the token and returns every starred episode.
func (c *Controller) Starred(ctx context.Context) ([]data.Episode, error) {
	if err := c.source.VerifyAuth(ctx); err != nil {
		return nil, err
	}
	return c.source.Starred(ctx)
}

// Select applies the configured year and podcast filters.
func (c *Controller) Select(episodes []data.Episode) []data.Episode {
	if !c.cfg.Download.ShowAll {
		episodes = FilterByYear(episodes, c.cfg.Download.Year)
	}
	return FilterByPodcast(episodes, c.cfg.Download.Podcast)
}

// Download runs the downloader over episodes while holding the output
// directory lock. Dry runs neither lock nor touch the directory.
func (c *Controller) Download(ctx context.Context, episodes []data.Episode) (Summary, error) {
	if !c.cfg.Download.DryRun {
		if err := c.acquire(); err != nil {
			return Summary{}, err
		}
		defer c.release()
	}
	return c.downloader.Run(ctx, episodes), nil
}

// ExportMetadata writes the raw records of episodes into the output directory.
func (c *Controller) ExportMetadata(episodes []data.Episode) (string, error) {
	return ExportMetadata(c.cfg.Download.OutputDir, c.cfg.MetadataLabel(), episodes)
}

// History lists recorded downloads, newest first.
func (c *Controller) History() ([]*data.Download, error) {
	if c.repo == nil {
		return nil, nil
	}
	return c.repo.ListDownloads()
}

// Retag reconciles tags on every file in the download history. With
// refresh set, the token is checked and each record is fetched again from
// the source before tagging.
func (c *Controller) Retag(ctx context.Context, refresh bool) (Summary, error) {
	downloads, err := c.History()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read download history: %w", err)
	}

	var lookup EpisodeLookup
	if refresh && len(downloads) > 0 {
		if err := c.source.VerifyAuth(ctx); err != nil {
			return Summary{}, err
		}
		lookup = c.source.Episode
	}

	if err := c.acquire(); err != nil {
		return Summary{}, err
	}
	defer c.release()
	return c.downloader.Retag(ctx, downloads, lookup), nil
}

// Forget removes an episode from the download history and returns the
// removed record. The file itself is left on disk.
func (c *Controller) Forget(episodeID string) (*data.Download, error) {
	if c.repo == nil {
		return nil, ErrNoHistory
	}
	d, err := c.repo.GetDownload(episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read download history: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRecorded, episodeID)
	}
	if err := c.repo.DeleteDownload(episodeID); err != nil {
		return nil, fmt.Errorf("failed to update download history: %w", err)
	}
	c.logger.Info("forgot download", "episode", episodeID, "path", d.FilePath)
	return d, nil
}

// ClearArtwork drops every cached podcast image so the next run fetches
// them again.
func (c *Controller) ClearArtwork() error {
	if err := c.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear artwork cache: %w", err)
	}
	return nil
}

func (c *Controller) acquire() error {
	dir := c.cfg.Download.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	c.lock = flock.New(filepath.Join(dir, lockFileName))
	ok, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (c *Controller) release() {
	if c.lock == nil {
		return
	}
	if err := c.lock.Unlock(); err != nil {
		c.logger.Warn("failed to release output lock", "error", err)
	}
	c.lock = nil
}

// Close releases the downloader, cache and database.
func (c *Controller) Close() error {
	c.downloader.Close()
	var errs []error
	if c.cache != nil {
		errs = append(errs, c.cache.Close())
	}
	if c.repo != nil {
		errs = append(errs, c.repo.Close())
	}
	return errors.Join(errs...)
}
