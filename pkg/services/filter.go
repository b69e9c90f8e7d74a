package services

import (
	"sort"
	"strings"

	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// YearCount is the number of episodes published in one year. Year 0 groups
// episodes without a usable publication date.
type YearCount struct {
	Year  int
	Count int
}

// FilterByYear keeps episodes published in year. Episodes without a
// publication date never match.
func FilterByYear(episodes []data.Episode, year int) []data.Episode {
	var out []data.Episode
	for _, ep := range episodes {
		if ep.PublishedAt.IsZero() {
			continue
		}
		if ep.PublishedAt.Year() == year {
			out = append(out, ep)
		}
	}
	return out
}

// CountByYear groups episodes by publication year, newest first. Undated
// episodes are counted last under year 0.
func CountByYear(episodes []data.Episode) []YearCount {
	counts := make(map[int]int)
	for _, ep := range episodes {
		year := 0
		if !ep.PublishedAt.IsZero() {
			year = ep.PublishedAt.Year()
		}
		counts[year]++
	}

	out := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year == 0 || out[j].Year == 0 {
			return out[j].Year == 0 && out[i].Year != 0
		}
		return out[i].Year > out[j].Year
	})
	return out
}

// FilterByPodcast keeps episodes whose podcast title fuzzily matches query,
// ignoring case and diacritics. An empty query keeps everything.
func FilterByPodcast(episodes []data.Episode, query string) []data.Episode {
	query = strings.TrimSpace(query)
	if query == "" {
		return episodes
	}

	var out []data.Episode
	for _, ep := range episodes {
		if fuzzy.MatchNormalizedFold(query, ep.PodcastTitle) {
			out = append(out, ep)
		}
	}
	return out
}
