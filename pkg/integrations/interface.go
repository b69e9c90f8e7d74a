package integrations

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/kerbaras/pocketdl/pkg/metadata"
)

// ErrUnsupportedFormat is returned for files whose tag container is not handled.
var ErrUnsupportedFormat = errors.New("unsupported audio container")

// Container reads and writes the tags embedded in one audio file.
//
// Read fails with *metadata.TagReadError when the container cannot be parsed.
// Write stores only the kinds present in the write-set and fails with
// *metadata.TagWriteError.
type Container interface {
	Read() (metadata.TagSet, error)
	Write(writes metadata.TagSet) error
}

// OpenContainer picks the container implementation for path by extension.
func OpenContainer(path string) (Container, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return NewID3Container(path), nil
	case ".m4a", ".m4b", ".mp4":
		return NewMP4Container(path), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
