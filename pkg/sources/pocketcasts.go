package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/utils"
)

const (
	DefaultBaseURL   = "https://api.pocketcasts.com"
	DefaultStaticURL = "https://static.pocketcasts.com"

	artworkSize = 400
)

// Episode is the wire form of an episode record.
type Episode struct {
	UUID          string  `json:"uuid"`
	URL           string  `json:"url"`
	Published     string  `json:"published"`
	Duration      flexInt `json:"duration"`
	FileType      string  `json:"fileType"`
	Title         string  `json:"title"`
	Size          flexInt `json:"size"`
	PodcastUUID   string  `json:"podcastUuid"`
	PodcastTitle  string  `json:"podcastTitle"`
	Author        string  `json:"author"`
	Starred       bool    `json:"starred"`
	EpisodeType   string  `json:"episodeType"`
	EpisodeSeason int     `json:"episodeSeason"`
	EpisodeNumber int     `json:"episodeNumber"`
}

// flexInt accepts numbers encoded either as JSON numbers or as strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

func (e *Episode) ToEpisode(raw json.RawMessage) *data.Episode {
	return &data.Episode{
		ID:           e.UUID,
		Title:        e.Title,
		PodcastID:    e.PodcastUUID,
		PodcastTitle: e.PodcastTitle,
		Author:       e.Author,
		PublishedAt:  ParsePublished(e.Published),
		AudioURL:     e.URL,
		FileType:     e.FileType,
		Size:         int64(e.Size),
		Duration:     int(e.Duration),
		Starred:      e.Starred,
		Raw:          raw,
	}
}

// ParsePublished parses the API's publication timestamp. Unparsable or
// empty values yield the zero time.
func ParsePublished(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type PocketCasts struct {
	api       *utils.API
	staticURL string
}

type Option func(*options)

type options struct {
	baseURL   string
	staticURL string
	client    *http.Client
}

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithStaticURL(u string) Option {
	return func(o *options) { o.staticURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func NewPocketCasts(token string, opts ...Option) *PocketCasts {
	o := options{baseURL: DefaultBaseURL, staticURL: DefaultStaticURL}
	for _, opt := range opts {
		opt(&o)
	}
	return &PocketCasts{
		api:       utils.NewAPI(o.baseURL, token, o.client),
		staticURL: o.staticURL,
	}
}

// HTTPClient exposes the underlying client so downloads share its TLS settings.
func (p *PocketCasts) HTTPClient() *http.Client {
	return p.api.Client()
}

// VerifyAuth checks that the token is accepted.
func (p *PocketCasts) VerifyAuth(ctx context.Context) error {
	if err := p.api.Post(ctx, "/user/starred", nil, nil); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}

// Starred returns the starred episodes in the order the service lists them.
func (p *PocketCasts) Starred(ctx context.Context) ([]data.Episode, error) {
	var resp struct {
		Episodes []json.RawMessage `json:"episodes"`
	}
	if err := p.api.Post(ctx, "/user/starred", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get starred episodes: %w", err)
	}

	out := make([]data.Episode, 0, len(resp.Episodes))
	for i, raw := range resp.Episodes {
		var ep Episode
		if err := json.Unmarshal(raw, &ep); err != nil {
			return nil, fmt.Errorf("failed to decode starred episode %d: %w", i, err)
		}
		out = append(out, *ep.ToEpisode(raw))
	}
	return out, nil
}

func (p *PocketCasts) Episode(ctx context.Context, uuid string) (*data.Episode, error) {
	var raw json.RawMessage
	if err := p.api.Post(ctx, "/user/episode", map[string]string{"uuid": uuid}, &raw); err != nil {
		return nil, fmt.Errorf("failed to get episode %s: %w", uuid, err)
	}
	var ep Episode
	if err := json.Unmarshal(raw, &ep); err != nil {
		return nil, fmt.Errorf("failed to decode episode %s: %w", uuid, err)
	}
	return ep.ToEpisode(raw), nil
}

func (p *PocketCasts) ArtworkURL(podcastID string) string {
	if podcastID == "" {
		return ""
	}
	return fmt.Sprintf("%s/discover/images/%d/%s.jpg", p.staticURL, artworkSize, podcastID)
}
