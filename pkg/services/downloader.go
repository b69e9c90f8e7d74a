package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/integrations"
	"github.com/kerbaras/pocketdl/pkg/logging"
	"github.com/kerbaras/pocketdl/pkg/metadata"
)

// ErrNoURL is reported for episodes the API returned without an audio URL.
var ErrNoURL = errors.New("no download URL")

// Status is the outcome of processing one episode.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusExisting   Status = "existing"
	StatusPlanned    Status = "planned"
	StatusFailed     Status = "failed"
)

// DownloadProgress represents the progress of a single episode
type DownloadProgress struct {
	EpisodeID string
	Title     string
	Index     int // 1-based position in the batch
	Total     int
	Received  int64
	Size      int64  // 0 when unknown
	Status    string // "downloading", "tagging", "complete", "error"
	Error     error
}

// Result describes what happened to one episode.
type Result struct {
	Episode data.Episode
	Path    string
	Status  Status
	Tagged  bool
	Err     error // fatal for this episode
	TagErr  error // tagging failed but the file is in place
}

// OK reports whether the episode counts as successful.
func (r Result) OK() bool {
	return r.Status != StatusFailed
}

// Summary aggregates the results of a run.
type Summary struct {
	Results    []Result
	Successful int
	Failed     int
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	if r.OK() {
		s.Successful++
	} else {
		s.Failed++
	}
}

// Total is the number of processed episodes.
func (s Summary) Total() int {
	return len(s.Results)
}

// Repository interface needed by downloader
type Repository interface {
	SaveDownload(d *data.Download) error
	MarkTagged(episodeID string, tagged bool) error
}

// ArtworkSource provides the picture embedded into episode files.
type ArtworkSource interface {
	Fetch(ctx context.Context, podcast data.Podcast) (*metadata.Picture, error)
}

// EpisodeLookup fetches the current details of an episode by ID.
type EpisodeLookup func(ctx context.Context, id string) (*data.Episode, error)

// Options controls where and how episodes are written.
type Options struct {
	OutputDir         string
	OrganizeByPodcast bool
	DryRun            bool
	WriteTags         bool
	RequestInterval   time.Duration
}

// Downloader fetches episodes one at a time and keeps their tags in sync.
type Downloader struct {
	client       *http.Client
	repo         Repository
	artwork      ArtworkSource
	opts         Options
	logger       *slog.Logger
	rateLimiter  *time.Ticker
	progressChan chan DownloadProgress
	closeOnce    sync.Once

	// podcasts whose artwork already failed during this run
	artFailed map[string]bool
}

// NewDownloader creates a new Downloader instance. repo and artwork may be nil.
func NewDownloader(client *http.Client, repo Repository, artwork ArtworkSource, opts Options, logger *slog.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Null()
	}
	d := &Downloader{
		client:       client,
		repo:         repo,
		artwork:      artwork,
		opts:         opts,
		logger:       logger,
		progressChan: make(chan DownloadProgress, 100),
		artFailed:    make(map[string]bool),
	}
	if opts.RequestInterval > 0 {
		d.rateLimiter = time.NewTicker(opts.RequestInterval)
	}
	return d
}

// Progress returns the channel for receiving download progress updates.
// Updates are dropped when nobody drains it.
func (d *Downloader) Progress() <-chan DownloadProgress {
	return d.progressChan
}

// Run processes every episode in order. A failing episode is recorded in
// the summary and the batch continues. Cancelling ctx stops before the next
// episode.
func (d *Downloader) Run(ctx context.Context, episodes []data.Episode) Summary {
	var summary Summary
	for i := range episodes {
		if ctx.Err() != nil {
			break
		}
		summary.add(d.ProcessEpisode(ctx, &episodes[i], i+1, len(episodes)))
	}
	return summary
}

// ProcessEpisode dispatches one episode: planned in dry-run mode, retagged
// when the file already exists, downloaded otherwise.
func (d *Downloader) ProcessEpisode(ctx context.Context, ep *data.Episode, index, total int) Result {
	path := EpisodePath(d.opts.OutputDir, ep, d.opts.OrganizeByPodcast)
	res := Result{Episode: *ep, Path: path}

	if ep.AudioURL == "" {
		res.Status = StatusFailed
		res.Err = ErrNoURL
		d.logger.Warn("episode has no download url", "episode", ep.ID, "title", ep.Title)
		return res
	}

	if d.opts.DryRun {
		res.Status = StatusPlanned
		return res
	}

	progress := DownloadProgress{EpisodeID: ep.ID, Title: ep.Title, Index: index, Total: total, Size: ep.Size}

	if _, err := os.Stat(path); err == nil {
		res.Status = StatusExisting
		d.logger.Info("episode already exists", "episode", ep.ID, "path", path)
	} else {
		progress.Status = "downloading"
		d.sendProgress(progress)

		if err := d.fetch(ctx, ep, path, &progress); err != nil {
			res.Status = StatusFailed
			res.Err = err
			progress.Status = "error"
			progress.Error = err
			d.sendProgress(progress)
			d.logger.Error("failed to download episode", "episode", ep.ID, "url", ep.AudioURL, "error", err)
			return res
		}
		res.Status = StatusDownloaded
		d.logger.Info("episode downloaded", "episode", ep.ID, "path", path)
	}

	if d.opts.WriteTags {
		progress.Status = "tagging"
		d.sendProgress(progress)

		tagged, err := d.TagFile(ctx, path, ep)
		res.Tagged = tagged
		if err != nil {
			res.TagErr = err
			d.logger.Warn("failed to update tags", "episode", ep.ID, "path", path, "error", err)
		}
	}

	d.record(ep, path, res.Tagged)

	progress.Status = "complete"
	d.sendProgress(progress)
	return res
}

// Retag reconciles the tags of files recorded in the download history.
// Missing files are reported as failures. When lookup is set each record is
// refreshed through it first, falling back to the stored details.
func (d *Downloader) Retag(ctx context.Context, downloads []*data.Download, lookup EpisodeLookup) Summary {
	var summary Summary
	for i, dl := range downloads {
		if ctx.Err() != nil {
			break
		}
		ep := dl.Episode()
		if lookup != nil {
			d.wait(ctx)
			fresh, err := lookup(ctx, dl.EpisodeID)
			if err != nil {
				d.logger.Warn("using recorded episode details", "episode", dl.EpisodeID, "error", err)
			} else {
				ep = fresh
			}
		}
		res := Result{Episode: *ep, Path: dl.FilePath, Status: StatusExisting}

		if _, err := os.Stat(dl.FilePath); err != nil {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("file not found: %w", err)
			summary.add(res)
			continue
		}

		d.sendProgress(DownloadProgress{EpisodeID: ep.ID, Title: ep.Title, Index: i + 1, Total: len(downloads), Status: "tagging"})

		tagged, err := d.TagFile(ctx, dl.FilePath, ep)
		res.Tagged = tagged
		if err != nil {
			res.TagErr = err
			d.logger.Warn("failed to update tags", "episode", ep.ID, "path", dl.FilePath, "error", err)
		}
		if d.repo != nil && tagged != dl.Tagged {
			if err := d.repo.MarkTagged(dl.EpisodeID, tagged); err != nil {
				d.logger.Warn("failed to update download history", "episode", ep.ID, "error", err)
			}
		}
		summary.add(res)
	}
	return summary
}

// TagFile brings the tags of the file at path up to date with ep. It
// reports whether the file's tags are in the desired state. Files in
// unsupported containers are left alone.
func (d *Downloader) TagFile(ctx context.Context, path string, ep *data.Episode) (bool, error) {
	container, err := integrations.OpenContainer(path)
	if errors.Is(err, integrations.ErrUnsupportedFormat) {
		d.logger.Debug("skipping tags for unsupported container", "path", path)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	existing, err := container.Read()
	if err != nil {
		return false, err
	}

	desired := metadata.DesiredTags(ep, d.artworkFor(ctx, ep.Podcast()))
	writes := metadata.Reconcile(existing, desired)
	if len(writes) == 0 {
		return true, nil
	}

	d.logger.Debug("writing tags", "path", path, "kinds", writes.Kinds())
	if err := container.Write(writes); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Downloader) artworkFor(ctx context.Context, podcast data.Podcast) *metadata.Picture {
	if d.artwork == nil || d.artFailed[podcast.ID] {
		return nil
	}

	d.wait(ctx)
	pic, err := d.artwork.Fetch(ctx, podcast)
	if err != nil {
		d.artFailed[podcast.ID] = true
		d.logger.Warn("artwork unavailable", "podcast", podcast.ID, "error", err)
		return nil
	}
	return pic
}

// fetch streams the episode into a .part file next to path and renames it
// once complete.
func (d *Downloader) fetch(ctx context.Context, ep *data.Episode, path string, progress *DownloadProgress) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	d.wait(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.AudioURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch episode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	if resp.ContentLength > 0 {
		progress.Size = resp.ContentLength
	}

	partPath := path + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	body := &progressReader{r: resp.Body, onRead: func(n int64) {
		progress.Received = n
		d.sendProgress(*progress)
	}}
	_, copyErr := io.Copy(out, body)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to write episode: %w", copyErr)
	}

	if err := os.Rename(partPath, path); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to finalize file: %w", err)
	}
	return nil
}

func (d *Downloader) record(ep *data.Episode, path string, tagged bool) {
	if d.repo == nil {
		return
	}
	err := d.repo.SaveDownload(&data.Download{
		EpisodeID:    ep.ID,
		PodcastID:    ep.PodcastID,
		PodcastTitle: ep.PodcastTitle,
		Title:        ep.Title,
		PublishedAt:  ep.PublishedAt,
		AudioURL:     ep.AudioURL,
		FilePath:     path,
		Tagged:       tagged,
	})
	if err != nil {
		d.logger.Warn("failed to record download", "episode", ep.ID, "error", err)
	}
}

// wait paces network requests when a request interval is configured.
func (d *Downloader) wait(ctx context.Context) {
	if d.rateLimiter == nil {
		return
	}
	select {
	case <-d.rateLimiter.C:
	case <-ctx.Done():
	}
}

// sendProgress sends a progress update (non-blocking)
func (d *Downloader) sendProgress(progress DownloadProgress) {
	select {
	case d.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close stops the rate limiter and closes the progress channel.
func (d *Downloader) Close() {
	d.closeOnce.Do(func() {
		if d.rateLimiter != nil {
			d.rateLimiter.Stop()
		}
		close(d.progressChan)
	})
}

// progressReader reports the running byte count after every read.
type progressReader struct {
	r      io.Reader
	n      int64
	onRead func(total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.n += int64(n)
		p.onRead(p.n)
	}
	return n, err
}
