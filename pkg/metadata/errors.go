package metadata

import "fmt"

// TagReadError reports that an existing tag container could not be parsed.
// The file is left alone and the run moves on.
type TagReadError struct {
	Path string
	Err  error
}

func (e *TagReadError) Error() string {
	return fmt.Sprintf("read tags from %s: %v", e.Path, e.Err)
}

func (e *TagReadError) Unwrap() error { return e.Err }

// TagWriteError reports that a write-set could not be stored in a file.
type TagWriteError struct {
	Path string
	Err  error
}

func (e *TagWriteError) Error() string {
	return fmt.Sprintf("write tags to %s: %v", e.Path, e.Err)
}

func (e *TagWriteError) Unwrap() error { return e.Err }

// ArtworkFetchError reports that podcast artwork could not be retrieved.
// It is never fatal: AlbumArt is left out of the write-set.
type ArtworkFetchError struct {
	PodcastID string
	URL       string
	Err       error
}

func (e *ArtworkFetchError) Error() string {
	return fmt.Sprintf("fetch artwork for podcast %s (%s): %v", e.PodcastID, e.URL, e.Err)
}

func (e *ArtworkFetchError) Unwrap() error { return e.Err }
