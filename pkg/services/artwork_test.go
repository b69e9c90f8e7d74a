package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kerbaras/pocketdl/pkg/cache"
	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngArtwork(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestArtworkFetcher_FetchesAndCaches(t *testing.T) {
	art := pngArtwork(t, 32, 32)
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/discover/images/400/pod-1.jpg", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Write(art)
	}))
	defer server.Close()

	store, err := cache.OpenArtworkCache("")
	require.NoError(t, err)
	defer store.Close()

	urlFor := func(id string) string { return server.URL + "/discover/images/400/" + id + ".jpg" }
	fetcher := NewArtworkFetcher(server.Client(), store, nil, urlFor, nil)

	pic, err := fetcher.Fetch(context.Background(), data.Podcast{ID: "pod-1"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", pic.MIMEType)
	assert.NotEmpty(t, pic.Data)

	again, err := fetcher.Fetch(context.Background(), data.Podcast{ID: "pod-1"})
	require.NoError(t, err)
	assert.Equal(t, pic.Data, again.Data)
	assert.Equal(t, int32(1), hits.Load(), "second fetch is served from the cache")
}

func TestArtworkFetcher_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/garbage.jpg" {
			w.Write([]byte("not an image"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewArtworkFetcher(server.Client(), nil, nil, nil, nil)

	tests := map[string]data.Podcast{
		"not found": {ID: "pod-1", ArtworkURL: server.URL + "/missing.jpg"},
		"bad image": {ID: "pod-2", ArtworkURL: server.URL + "/garbage.jpg"},
		"no url":    {ID: "pod-3"},
	}
	for name, podcast := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fetcher.Fetch(context.Background(), podcast)
			var fetchErr *metadata.ArtworkFetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, podcast.ID, fetchErr.PodcastID)
		})
	}
}
