package filter

import (
	"regexp"
	"strings"
	"unicode"

	"go-career-scraper/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Plain substring match: "Tester" and "Latest" are excluded too.
var placeholderRegex = regexp.MustCompile(`test|dummy`)

// normalizeText folds width variants and strips diacritics so "Ｔｅｓｔ" or
// "dümmy" still count.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}

// IsPlaceholderTitle reports titles that look like test or dummy postings.
func IsPlaceholderTitle(title string) bool {
	return placeholderRegex.MatchString(normalizeText(title))
}

// DropPlaceholders returns the listings whose title is not a placeholder.
func DropPlaceholders(listings []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if IsPlaceholderTitle(l.Title) {
			continue
		}
		out = append(out, l)
	}
	return out
}
