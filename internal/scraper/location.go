package scraper

import (
	"strings"

	"go-career-scraper/internal/models"
)

// SplitLocation turns "Lahore, Punjab, Pakistan" into city "Lahore" and
// country "Pakistan". Missing parts fall back to models.NotSpecified.
func SplitLocation(location string) (city, country string) {
	city, country = models.NotSpecified, models.NotSpecified

	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if first := parts[0]; first != "" {
		city = first
	}
	if last := parts[len(parts)-1]; last != "" {
		country = last
	}
	return city, country
}

var quoteStripper = strings.NewReplacer(
	"&quot;", "",
	"&#34;", "",
	"&#x22;", "",
	"&#39;", "",
	"&apos;", "",
	`"`, "",
)

// ParseBracketList extracts the values of a quoted list embedded in an
// attribute such as
//
//	showMoreLocations(this, [&quot;Lahore&quot;,&quot;Karachi&quot;])
//
// Contract: the content between the first '[' and the last ']' is taken,
// HTML-entity and literal double quotes are removed, the rest is split on
// commas and each value trimmed; empty values are dropped. A missing bracket,
// or a ']' that does not follow the '[', yields nil.
func ParseBracketList(raw string) []string {
	open := strings.Index(raw, "[")
	closing := strings.LastIndex(raw, "]")
	if open < 0 || closing < 0 || closing < open {
		return nil
	}

	inner := quoteStripper.Replace(raw[open+1 : closing])

	var out []string
	for _, v := range strings.Split(inner, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// JoinOrDefault joins values for display, or returns the sentinel when empty.
func JoinOrDefault(values []string) string {
	if len(values) == 0 {
		return models.NotSpecified
	}
	return strings.Join(values, ", ")
}
