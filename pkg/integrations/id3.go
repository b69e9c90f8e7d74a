package integrations

import (
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/kerbaras/pocketdl/pkg/metadata"
)

const id3Prefix = "id3:"

// Frames mapped onto fixed kinds; everything else is surfaced as id3:<ID>.
var id3Handled = map[string]bool{
	"TIT2": true,
	"TPE1": true,
	"TALB": true,
	"TYER": true,
	"TDRC": true,
	"TCON": true,
	"APIC": true,
}

// ID3Container handles MP3 files with ID3v2.3/2.4 tags.
type ID3Container struct {
	path string
}

func NewID3Container(path string) *ID3Container {
	return &ID3Container{path: path}
}

func (c *ID3Container) Read() (metadata.TagSet, error) {
	tag, err := id3v2.Open(c.path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, &metadata.TagReadError{Path: c.path, Err: err}
	}
	defer tag.Close()

	tags := metadata.TagSet{}
	setText(tags, metadata.Title, tag.Title())
	setText(tags, metadata.Artist, tag.Artist())
	setText(tags, metadata.Album, tag.Album())
	setText(tags, metadata.Year, tag.Year())
	setText(tags, metadata.Genre, tag.Genre())

	if pic := frontCover(tag); pic != nil {
		tags.SetPicture(metadata.AlbumArt, pic)
	}

	for id, frames := range tag.AllFrames() {
		if id3Handled[id] || !strings.HasPrefix(id, "T") {
			continue
		}
		for _, f := range frames {
			if tf, ok := f.(id3v2.TextFrame); ok {
				tags.Set(metadata.Kind(id3Prefix+id), tf.Text)
				break
			}
		}
	}

	return tags, nil
}

func (c *ID3Container) Write(writes metadata.TagSet) error {
	if len(writes) == 0 {
		return nil
	}

	tag, err := id3v2.Open(c.path, id3v2.Options{Parse: true})
	if err != nil {
		return &metadata.TagWriteError{Path: c.path, Err: err}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for kind, v := range writes {
		switch kind {
		case metadata.Title:
			tag.SetTitle(v.Text)
		case metadata.Artist:
			tag.SetArtist(v.Text)
		case metadata.Album:
			tag.SetAlbum(v.Text)
		case metadata.Year:
			tag.SetYear(v.Text)
		case metadata.Genre:
			tag.SetGenre(v.Text)
		case metadata.AlbumArt:
			if v.Picture == nil || len(v.Picture.Data) == 0 {
				continue
			}
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mimeOrDefault(v.Picture.MIMEType),
				PictureType: id3v2.PTFrontCover,
				Description: "Front cover",
				Picture:     v.Picture.Data,
			})
		default:
			if id, ok := strings.CutPrefix(string(kind), id3Prefix); ok && strings.HasPrefix(id, "T") {
				tag.AddTextFrame(id, tag.DefaultEncoding(), v.Text)
			}
		}
	}

	if err := tag.Save(); err != nil {
		return &metadata.TagWriteError{Path: c.path, Err: err}
	}
	return nil
}

// frontCover returns the front cover picture, or the first picture when no
// frame is marked as front cover.
func frontCover(tag *id3v2.Tag) *metadata.Picture {
	var first *metadata.Picture
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pf, ok := f.(id3v2.PictureFrame)
		if !ok || len(pf.Picture) == 0 {
			continue
		}
		pic := &metadata.Picture{MIMEType: pf.MimeType, Data: pf.Picture}
		if pf.PictureType == id3v2.PTFrontCover {
			return pic
		}
		if first == nil {
			first = pic
		}
	}
	return first
}

func setText(tags metadata.TagSet, kind metadata.Kind, text string) {
	if text != "" {
		tags.Set(kind, text)
	}
}

func mimeOrDefault(mime string) string {
	if mime == "" {
		return "image/jpeg"
	}
	return mime
}
