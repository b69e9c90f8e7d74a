package metadata

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinTitleLength is the rune count below which a title is always prefixed.
	MinTitleLength = 15

	// UntitledEpisode is used when both the title and the podcast name are empty.
	UntitledEpisode = "Untitled Episode"

	titleSeparator = ": "
)

var (
	folder = cases.Fold()

	leadingArticles = []string{"the", "a", "an"}
	trailingWords   = []string{"podcast", "show", "radio"}
)

// EnhanceTitle prefixes short or generic episode titles with the podcast
// name so they stay recognisable outside the podcast app.
//
// A title is enhanced when it is shorter than MinTitleLength runes or does
// not mention the podcast. Titles that already begin with the podcast name
// are returned as-is, which makes the function idempotent.
func EnhanceTitle(title, podcast string) string {
	trimmed := strings.TrimSpace(title)
	podcast = strings.TrimSpace(podcast)

	normPodcast := normalize(podcast)
	if trimmed == "" {
		if podcast == "" {
			return UntitledEpisode
		}
		return podcast
	}
	if normPodcast == "" {
		// Names without letters or digits are matched verbatim.
		if strings.HasPrefix(trimmed, podcast) ||
			(utf8.RuneCountInString(title) >= MinTitleLength && strings.Contains(trimmed, podcast)) {
			return title
		}
		return podcast + titleSeparator + trimmed
	}

	normTitle := normalize(trimmed)
	if startsWithWord(normTitle, normPodcast) {
		return title
	}
	if utf8.RuneCountInString(title) >= MinTitleLength && mentions(normTitle, podcast) {
		return title
	}
	return podcast + titleSeparator + trimmed
}

// mentions reports whether the normalized title contains the podcast name
// or one of its short forms.
func mentions(normTitle, podcast string) bool {
	for _, form := range shortForms(podcast) {
		if strings.Contains(normTitle, form) {
			return true
		}
	}
	return false
}

// shortForms returns the normalized podcast name along with variants that
// drop a leading article or a trailing "podcast"/"show"/"radio".
func shortForms(podcast string) []string {
	full := normalize(podcast)
	forms := []string{full}

	words := strings.Fields(full)
	if len(words) > 1 && contains(leadingArticles, words[0]) {
		words = words[1:]
		forms = append(forms, strings.Join(words, " "))
	}
	if len(words) > 1 && contains(trailingWords, words[len(words)-1]) {
		words = words[:len(words)-1]
		forms = append(forms, strings.Join(words, " "))
	}
	return forms
}

func startsWithWord(s, prefix string) bool {
	return s == prefix || strings.HasPrefix(s, prefix+" ")
}

// normalize folds case, strips diacritics and collapses every run of
// non letter/digit runes into a single space.
func normalize(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	folded := folder.String(stripped)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
