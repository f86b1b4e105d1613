package models

import "strings"

// NotSpecified is stored when a field cannot be resolved from the page.
const NotSpecified = "Not Specified"

type Source string

const (
	SourceDevsinc    Source = "Devsinc"
	SourceSystemsLtd Source = "Systems Ltd"
)

func (s Source) String() string {
	return string(s)
}

// Listing is one job posting. Link is the identity key in every destination.
type Listing struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  Source `json:"source"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// Valid reports whether the listing carries the two required fields.
func (l Listing) Valid() bool {
	return strings.TrimSpace(l.Title) != "" && strings.TrimSpace(l.Link) != ""
}

// WithDefaults returns a copy with blank location fields set to NotSpecified.
func (l Listing) WithDefaults() Listing {
	if strings.TrimSpace(l.Country) == "" {
		l.Country = NotSpecified
	}
	if strings.TrimSpace(l.City) == "" {
		l.City = NotSpecified
	}
	return l
}

// Row is the spreadsheet/record layout: Title, Link, Source, Country, Cities.
func (l Listing) Row() []string {
	l = l.WithDefaults()
	return []string{l.Title, l.Link, string(l.Source), l.Country, l.City}
}
