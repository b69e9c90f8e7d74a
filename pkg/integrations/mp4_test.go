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

// copyFixture copies one of the sample files in testdata into a temp dir.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return writeFile(t, "episode.m4a", content)
}

func TestMP4Container_ReadUntagged(t *testing.T) {
	tags, err := NewMP4Container(copyFixture(t, "untagged.m4a")).Read()
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestMP4Container_Read(t *testing.T) {
	tags, err := NewMP4Container(copyFixture(t, "tagged.m4a")).Read()
	require.NoError(t, err)

	assert.Equal(t, "Test Title", tags.Text(metadata.Title))
	assert.Equal(t, "Test Artist", tags.Text(metadata.Artist))
	assert.Equal(t, "Test Album", tags.Text(metadata.Album))
	assert.Equal(t, "2000", tags.Text(metadata.Year))
	assert.Equal(t, "Jazz", tags.Text(metadata.Genre))
	assert.Equal(t, "Test Composer", tags.Text("mp4:\xa9wrt"))
	assert.Equal(t, "Test AlbumArtist", tags.Text("mp4:aART"))
	assert.False(t, tags.Has("mp4:\xa9nam"), "mapped atoms are not repeated as raw kinds")
}

func TestMP4Container_WriteAndRead(t *testing.T) {
	path := copyFixture(t, "untagged.m4a")
	c := NewMP4Container(path)

	writes := metadata.TagSet{}
	writes.Set(metadata.Title, "The Daily Report: News")
	writes.Set(metadata.Artist, "The Daily Report")
	writes.Set(metadata.Album, "The Daily Report")
	writes.Set(metadata.Year, "2024")
	writes.Set(metadata.Genre, "Podcast")
	require.NoError(t, c.Write(writes))

	tags, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "The Daily Report: News", tags.Text(metadata.Title))
	assert.Equal(t, "The Daily Report", tags.Text(metadata.Artist))
	assert.Equal(t, "The Daily Report", tags.Text(metadata.Album))
	assert.Equal(t, "2024", tags.Text(metadata.Year))
	assert.Equal(t, "Podcast", tags.Text(metadata.Genre))
}

func TestMP4Container_PreservesUnrelatedAtoms(t *testing.T) {
	c := NewMP4Container(copyFixture(t, "tagged.m4a"))

	existing, err := c.Read()
	require.NoError(t, err)

	desired := metadata.TagSet{}
	desired.Set(metadata.Title, "News")
	desired.Set(metadata.Album, "Show X")
	desired.Set(metadata.Genre, "Podcast")
	require.NoError(t, c.Write(metadata.Reconcile(existing, desired)))

	after, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "News", after.Text(metadata.Title))
	assert.Equal(t, "Show X", after.Text(metadata.Album))
	assert.Equal(t, "Podcast", after.Text(metadata.Genre))
	assert.Equal(t, "Test Artist", after.Text(metadata.Artist))
	assert.Equal(t, "Test Composer", after.Text("mp4:\xa9wrt"))
}

func TestMP4Container_WriteInvalidYear(t *testing.T) {
	path := copyFixture(t, "untagged.m4a")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	writes := metadata.TagSet{}
	writes.Set(metadata.Year, "soon")
	err = NewMP4Container(path).Write(writes)

	var writeErr *metadata.TagWriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Contains(t, err.Error(), "invalid year")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a rejected write leaves the file alone")
}

func TestMP4Container_ReadCorrupt(t *testing.T) {
	for name, content := range map[string][]byte{
		"junk":  []byte("this is not an mp4 file, just some bytes with an m4a extension"),
		"short": []byte("ftyp"),
		"mp3":   append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), fakeAudio...),
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "episode.m4a", content)
			_, err := NewMP4Container(path).Read()

			var readErr *metadata.TagReadError
			assert.True(t, errors.As(err, &readErr), "got %v", err)
		})
	}
}

func TestMP4Container_ReadMissingFile(t *testing.T) {
	_, err := NewMP4Container(filepath.Join(t.TempDir(), "missing.m4a")).Read()
	var readErr *metadata.TagReadError
	assert.True(t, errors.As(err, &readErr))
}
