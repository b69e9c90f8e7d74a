package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnhanceTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		podcast string
		want    string
	}{
		{"short title gets prefixed", "News", "The Daily Report", "The Daily Report: News"},
		{"long title mentioning podcast", "The Daily Report Episode 42 — Market Update", "The Daily Report", "The Daily Report Episode 42 — Market Update"},
		{"long generic title", "Interview with a marine biologist", "Deep Dive", "Deep Dive: Interview with a marine biologist"},
		{"long title mentions podcast mid-sentence", "Best of Deep Dive, volume two", "Deep Dive", "Best of Deep Dive, volume two"},
		{"case-insensitive mention", "this week on the daily report: rates", "The Daily Report", "this week on the daily report: rates"},
		{"short form without article", "Daily Report special: election night", "The Daily Report", "Daily Report special: election night"},
		{"short form without trailing podcast word", "Welcome back to Tech Talk number 100", "Tech Talk Podcast", "Welcome back to Tech Talk number 100"},
		{"already prefixed", "The Daily Report: News", "The Daily Report", "The Daily Report: News"},
		{"already prefixed different case", "the daily report - news", "The Daily Report", "the daily report - news"},
		{"title equals podcast", "The Daily Report", "The Daily Report", "The Daily Report"},
		{"prefix needs word boundary", "Showtime", "Show", "Show: Showtime"},
		{"diacritics ignored", "Épisode spécial du Café Crème", "Cafe Creme", "Épisode spécial du Café Crème"},
		{"empty title", "", "The Daily Report", "The Daily Report"},
		{"blank title", "   ", "The Daily Report", "The Daily Report"},
		{"empty title and podcast", "", "", UntitledEpisode},
		{"empty podcast", "News", "", "News"},
		{"punctuation-only podcast", "News", "!!!", "!!!: News"},
		{"punctuation-only podcast already prefixed", "!!!: News", "!!!", "!!!: News"},
		{"punctuation-only podcast mentioned", "Live from the !!! tour", "!!!", "Live from the !!! tour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnhanceTitle(tt.title, tt.podcast))
		})
	}
}

var titleCorpus = []struct{ title, podcast string }{
	{"News", "The Daily Report"},
	{"The Daily Report Episode 42 — Market Update", "The Daily Report"},
	{"", "The Daily Report"},
	{"", ""},
	{"   ", ""},
	{"Ep. 5", ""},
	{"Ep. 5", "!!!"},
	{"???", "Show"},
	{"Showtime", "Show"},
	{"Show", "Show"},
	{"show: part two", "Show"},
	{"Interview with a marine biologist", "Deep Dive"},
	{"Bonus", "Tech Talk Podcast"},
	{"Straße", "STRASSE"},
	{"  padded title  ", "Padded"},
	{"Café", "Café Crème"},
	{"A very long title that has nothing to do with anything", "The Show"},
	{"Naïve Questions", "Naive"},
}

func TestEnhanceTitleIdempotent(t *testing.T) {
	for _, c := range titleCorpus {
		once := EnhanceTitle(c.title, c.podcast)
		twice := EnhanceTitle(once, c.podcast)
		assert.Equal(t, once, twice, "title=%q podcast=%q", c.title, c.podcast)
	}
}

func TestEnhanceTitleShortTitlesStartWithPodcast(t *testing.T) {
	podcast := "The Daily Report"
	for _, title := range []string{"News", "Ep. 1", "Bonus", "Q&A", "x", "Friday recap"} {
		got := EnhanceTitle(title, podcast)
		assert.True(t, strings.HasPrefix(got, podcast), "got %q", got)
	}
}

func TestEnhanceTitleLongTitlesContainingPodcastUnchanged(t *testing.T) {
	podcast := "Deep Dive"
	titles := []string{
		"Deep Dive into the ocean floor",
		"Our 100th Deep Dive celebration",
		"Listener mail: Deep Dive (part 2)",
	}
	for _, title := range titles {
		assert.Equal(t, title, EnhanceTitle(title, podcast))
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "the daily report", normalize("  The   Daily—Report!! "))
	assert.Equal(t, "cafe creme", normalize("Café Crème"))
	assert.Equal(t, "strasse", normalize("STRASSE"))
	assert.Equal(t, "", normalize("?!"))
}

func TestShortForms(t *testing.T) {
	assert.Equal(t, []string{"the daily report", "daily report"}, shortForms("The Daily Report"))
	assert.Equal(t, []string{"the tech podcast", "tech podcast", "tech"}, shortForms("The Tech Podcast"))
	assert.Equal(t, []string{"the show", "show"}, shortForms("The Show"))
	assert.Equal(t, []string{"radio"}, shortForms("Radio"))
}
