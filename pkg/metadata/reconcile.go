package metadata

import (
	"strconv"

	"github.com/kerbaras/pocketdl/pkg/data"
)

// DefaultGenre is written to every episode that has no genre yet.
const DefaultGenre = "Podcast"

// Reconcile computes the minimal write-set that brings existing up to date
// with desired.
//
// Artist, Album, Year, Genre and AlbumArt are only filled in when missing or
// blank on disk. Title is passed through EnhanceTitle, using the podcast
// name carried in desired Album (or Artist), and written only when the
// result differs from what is stored. Keys outside the fixed kinds are never
// part of the write-set.
func Reconcile(existing, desired TagSet) TagSet {
	writes := TagSet{}

	for _, k := range FillKinds {
		if existing.Has(k) || !desired.Has(k) {
			continue
		}
		writes[k] = desired[k]
	}

	base := existing.Text(Title)
	if !existing.Has(Title) {
		base = desired.Text(Title)
	}
	if !(Value{Text: base}).IsBlank() {
		enhanced := EnhanceTitle(base, podcastName(desired))
		if enhanced != existing.Text(Title) {
			writes.Set(Title, enhanced)
		}
	}

	return writes
}

func podcastName(desired TagSet) string {
	if desired.Has(Album) {
		return desired.Text(Album)
	}
	return desired.Text(Artist)
}

// DesiredTags derives the tags an episode file should carry. art may be nil
// when artwork could not be fetched.
func DesiredTags(ep *data.Episode, art *Picture) TagSet {
	tags := TagSet{}
	tags.Set(Title, ep.Title)
	tags.Set(Album, ep.PodcastTitle)

	artist := ep.Author
	if artist == "" {
		artist = ep.PodcastTitle
	}
	tags.Set(Artist, artist)

	if !ep.PublishedAt.IsZero() {
		tags.Set(Year, strconv.Itoa(ep.PublishedAt.Year()))
	}
	tags.Set(Genre, DefaultGenre)

	if art != nil && len(art.Data) > 0 {
		tags.SetPicture(AlbumArt, art)
	}
	return tags
}
