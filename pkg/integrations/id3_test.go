package integrations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kerbaras/pocketdl/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAudio stands in for MPEG frames; the tag library never inspects them.
var fakeAudio = []byte("\xff\xfb\x90\x64 not really audio but close enough for tagging")

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestID3Container_ReadUntagged(t *testing.T) {
	path := writeFile(t, "episode.mp3", fakeAudio)

	tags, err := NewID3Container(path).Read()
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestID3Container_WriteAndRead(t *testing.T) {
	path := writeFile(t, "episode.mp3", fakeAudio)
	c := NewID3Container(path)

	writes := metadata.TagSet{}
	writes.Set(metadata.Title, "The Daily Report: News")
	writes.Set(metadata.Artist, "The Daily Report")
	writes.Set(metadata.Album, "The Daily Report")
	writes.Set(metadata.Year, "2024")
	writes.Set(metadata.Genre, "Podcast")
	writes.SetPicture(metadata.AlbumArt, &metadata.Picture{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}})
	require.NoError(t, c.Write(writes))

	tags, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "The Daily Report: News", tags.Text(metadata.Title))
	assert.Equal(t, "The Daily Report", tags.Text(metadata.Artist))
	assert.Equal(t, "The Daily Report", tags.Text(metadata.Album))
	assert.Equal(t, "2024", tags.Text(metadata.Year))
	assert.Equal(t, "Podcast", tags.Text(metadata.Genre))
	require.NotNil(t, tags.Picture(metadata.AlbumArt))
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, tags.Picture(metadata.AlbumArt).Data)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeAudio, raw[len(raw)-len(fakeAudio):], "audio payload must survive tagging")
}

func TestID3Container_PreservesUnrelatedFrames(t *testing.T) {
	path := writeFile(t, "episode.mp3", fakeAudio)
	c := NewID3Container(path)

	seed := metadata.TagSet{}
	seed.Set("id3:TCOM", "Composer Name")
	seed.Set(metadata.Genre, "Talk")
	require.NoError(t, c.Write(seed))

	existing, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "Composer Name", existing.Text("id3:TCOM"))

	desired := metadata.TagSet{}
	desired.Set(metadata.Title, "News")
	desired.Set(metadata.Album, "Show X")
	desired.Set(metadata.Genre, "Podcast")
	require.NoError(t, c.Write(metadata.Reconcile(existing, desired)))

	after, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "Composer Name", after.Text("id3:TCOM"))
	assert.Equal(t, "Talk", after.Text(metadata.Genre))
	assert.Equal(t, "Show X", after.Text(metadata.Album))
	assert.Equal(t, "Show X: News", after.Text(metadata.Title))
}

func TestID3Container_UnsupportedTag(t *testing.T) {
	// ID3v2.2 header followed by junk
	content := append([]byte("ID3\x02\x00\x00\x00\x00\x00\x10"), fakeAudio...)
	path := writeFile(t, "old.mp3", content)
	c := NewID3Container(path)

	_, err := c.Read()
	require.Error(t, err)
	var readErr *metadata.TagReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, path, readErr.Path)

	err = c.Write(metadata.TagSet{metadata.Title: {Text: "x"}})
	var writeErr *metadata.TagWriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestID3Container_EmptyWriteIsNoop(t *testing.T) {
	path := writeFile(t, "episode.mp3", fakeAudio)
	require.NoError(t, NewID3Container(path).Write(metadata.TagSet{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeAudio, raw)
}

func TestOpenContainer(t *testing.T) {
	c, err := OpenContainer("/x/episode.MP3")
	require.NoError(t, err)
	assert.IsType(t, &ID3Container{}, c)

	for _, ext := range []string{".m4a", ".m4b", ".mp4"} {
		c, err := OpenContainer("/x/episode" + ext)
		require.NoError(t, err)
		assert.IsType(t, &MP4Container{}, c)
	}

	_, err = OpenContainer("/x/episode.ogg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = OpenContainer("/x/episode.wav")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
