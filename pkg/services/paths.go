package services

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/kerbaras/pocketdl/pkg/data"
)

const (
	defaultExtension = ".mp3"
	unknownTitle     = "Unknown"
	unknownPodcast   = "Unknown Podcast"
)

var filenameReplacer = strings.NewReplacer(
	"|", "-",
	":", " -",
	"<", "",
	">", "",
	`"`, "",
	"/", "",
	`\`, "",
	"?", "",
	"*", "",
)

// SanitizeFilename removes characters that are invalid in filenames
func SanitizeFilename(name string) string {
	name = filenameReplacer.Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// Extensions for the fileType values the API reports, used when the audio
// URL carries none.
var fileTypeExtensions = map[string]string{
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/mp4":   ".m4a",
	"audio/m4a":   ".m4a",
	"audio/x-m4a": ".m4a",
	"audio/x-m4b": ".m4b",
	"video/mp4":   ".mp4",
}

// EpisodeExtension returns the file extension of the audio URL's last path
// segment. Without one it falls back to the MIME file type, then to .mp3.
func EpisodeExtension(rawURL, fileType string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	ext := path.Ext(path.Base(p))
	if ext != "" && ext != "." {
		return ext
	}

	mediaType, _, _ := strings.Cut(fileType, ";")
	if ext, ok := fileTypeExtensions[strings.ToLower(strings.TrimSpace(mediaType))]; ok {
		return ext
	}
	return defaultExtension
}

// EpisodePath returns where an episode is stored below dir. With organize
// set, files go into one directory per podcast.
func EpisodePath(dir string, ep *data.Episode, organize bool) string {
	title := ep.Title
	if strings.TrimSpace(title) == "" {
		title = unknownTitle
	}
	podcast := ep.PodcastTitle
	if strings.TrimSpace(podcast) == "" {
		podcast = unknownPodcast
	}
	ext := EpisodeExtension(ep.AudioURL, ep.FileType)

	if organize {
		return filepath.Join(dir, pathSegment(podcast, unknownPodcast), pathSegment(title, unknownTitle)+ext)
	}
	return filepath.Join(dir, SanitizeFilename(podcast+" - "+title)+ext)
}

// pathSegment sanitizes name for use as a single path element. Names that
// sanitize to nothing or to a relative directory reference use fallback.
func pathSegment(name, fallback string) string {
	switch s := SanitizeFilename(name); s {
	case "", ".", "..":
		return fallback
	default:
		return s
	}
}
