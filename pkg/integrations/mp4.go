package integrations

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	mp4tag "github.com/Sorrow446/go-mp4tag"
	"github.com/dhowden/tag"
	"github.com/kerbaras/pocketdl/pkg/metadata"
)

const mp4Prefix = "mp4:"

// Atoms mapped onto fixed kinds.
var mp4Handled = map[string]bool{
	"\xa9nam": true, "\xa9ART": true, "\xa9art": true, "\xa9alb": true, "\xa9day": true, "\xa9gen": true,
	"gnre": true, "covr": true,
}

// MP4Container handles iTunes-style atom tags in M4A/M4B/MP4 files.
type MP4Container struct {
	path string
}

func NewMP4Container(path string) *MP4Container {
	return &MP4Container{path: path}
}

func (c *MP4Container) Read() (metadata.TagSet, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, &metadata.TagReadError{Path: c.path, Err: err}
	}
	defer f.Close()

	// ReadFrom reports unrecognised bytes as ErrNoTagsFound, which must not
	// pass for an untagged file.
	format, _, err := tag.Identify(f)
	if err != nil {
		return nil, &metadata.TagReadError{Path: c.path, Err: err}
	}
	if format != tag.MP4 {
		return nil, &metadata.TagReadError{Path: c.path, Err: fmt.Errorf("not an MP4 container (%s)", format)}
	}

	// An identified container without ilst atoms reads as an empty set.
	m, err := tag.ReadAtoms(f)
	if err != nil {
		return nil, &metadata.TagReadError{Path: c.path, Err: err}
	}

	tags := metadata.TagSet{}
	setText(tags, metadata.Title, m.Title())
	setText(tags, metadata.Artist, m.Artist())
	setText(tags, metadata.Album, m.Album())
	setText(tags, metadata.Genre, m.Genre())
	if y := m.Year(); y > 0 {
		tags.Set(metadata.Year, strconv.Itoa(y))
	}
	if p := m.Picture(); p != nil && len(p.Data) > 0 {
		tags.SetPicture(metadata.AlbumArt, &metadata.Picture{MIMEType: p.MIMEType, Data: p.Data})
	}

	for key, v := range m.Raw() {
		if mp4Handled[key] {
			continue
		}
		if s, ok := v.(string); ok {
			tags.Set(metadata.Kind(mp4Prefix+key), s)
		}
	}

	return tags, nil
}

func (c *MP4Container) Write(writes metadata.TagSet) error {
	if len(writes) == 0 {
		return nil
	}

	// Fields left at their zero value are not touched by the writer.
	tags := &mp4tag.MP4Tags{}
	for kind, v := range writes {
		switch kind {
		case metadata.Title:
			tags.Title = v.Text
		case metadata.Artist:
			tags.Artist = v.Text
		case metadata.Album:
			tags.Album = v.Text
		case metadata.Genre:
			tags.CustomGenre = v.Text
		case metadata.Year:
			year, err := strconv.Atoi(strings.TrimSpace(v.Text))
			if err != nil {
				return &metadata.TagWriteError{Path: c.path, Err: fmt.Errorf("invalid year %q: %w", v.Text, err)}
			}
			tags.Year = int32(year)
		case metadata.AlbumArt:
			if v.Picture != nil && len(v.Picture.Data) > 0 {
				tags.Pictures = []*mp4tag.MP4Picture{{Data: v.Picture.Data}}
			}
		}
	}

	mp4, err := mp4tag.Open(c.path)
	if err != nil {
		return &metadata.TagWriteError{Path: c.path, Err: err}
	}
	defer mp4.Close()

	if err := mp4.Write(tags, []string{}); err != nil {
		return &metadata.TagWriteError{Path: c.path, Err: err}
	}
	return nil
}
