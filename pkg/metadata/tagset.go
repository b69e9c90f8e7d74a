package metadata

import (
	"sort"
	"strings"
)

// Kind identifies a metadata field inside an audio container.
type Kind string

// Fixed tag kinds managed by the reconciler. Any other Kind is an
// unrelated container key and is carried through untouched.
const (
	Title    Kind = "title"
	Artist   Kind = "artist"
	Album    Kind = "album"
	Year     Kind = "year"
	Genre    Kind = "genre"
	AlbumArt Kind = "album_art"
)

// FillKinds are the fixed kinds that are only ever filled in, never replaced.
var FillKinds = []Kind{Artist, Album, Year, Genre, AlbumArt}

// Picture is embedded cover art.
type Picture struct {
	MIMEType string
	Data     []byte
}

// Value is either a text value or a picture.
type Value struct {
	Text    string
	Picture *Picture
}

// IsBlank reports whether the value carries no usable content.
func (v Value) IsBlank() bool {
	if v.Picture != nil && len(v.Picture.Data) > 0 {
		return false
	}
	return strings.TrimSpace(v.Text) == ""
}

// TagSet maps tag kinds to values. It is used both for the tags found on
// disk and for the tags derived from an episode.
type TagSet map[Kind]Value

// Text returns the text value stored under k, or "".
func (t TagSet) Text(k Kind) string {
	return t[k].Text
}

// Has reports whether k is present with a non-blank value.
func (t TagSet) Has(k Kind) bool {
	v, ok := t[k]
	return ok && !v.IsBlank()
}

// Set stores a text value.
func (t TagSet) Set(k Kind, text string) {
	t[k] = Value{Text: text}
}

// SetPicture stores a picture value.
func (t TagSet) SetPicture(k Kind, p *Picture) {
	t[k] = Value{Picture: p}
}

// Picture returns the picture stored under k, or nil.
func (t TagSet) Picture(k Kind) *Picture {
	return t[k].Picture
}

// Clone returns a shallow copy of the set. Picture bytes are shared.
func (t TagSet) Clone() TagSet {
	out := make(TagSet, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Apply returns a copy of t with every key in writes stored over it.
func (t TagSet) Apply(writes TagSet) TagSet {
	out := t.Clone()
	for k, v := range writes {
		out[k] = v
	}
	return out
}

// Kinds returns the keys of the set in sorted order.
func (t TagSet) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t))
	for k := range t {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
