package notify

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"

	"go-career-scraper/internal/models"
)

//go:embed templates/digest.html
var templateFS embed.FS

var digestTmpl = template.Must(template.ParseFS(templateFS, "templates/digest.html"))

// Section is one site's listings from this run.
type Section struct {
	Source   models.Source
	Listings []models.Listing
}

// Digest lists every site's extracted listings, in configured site order.
type Digest struct {
	Sections []Section
}

// Notifier delivers a digest to one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, d Digest) error
}

// Total is the number of listings across all sections.
func (d Digest) Total() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Listings)
	}
	return n
}

// Subject names every site, e.g. "New Job Listings - Devsinc & Systems Ltd".
func (d Digest) Subject() string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Source.String())
	}
	if len(names) == 0 {
		return "New Job Listings"
	}
	return "New Job Listings - " + strings.Join(names, " & ")
}

// RenderHTML renders the digest body. Listing fields are escaped.
func (d Digest) RenderHTML() (string, error) {
	sections := make([]Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		rows := make([]models.Listing, 0, len(s.Listings))
		for _, l := range s.Listings {
			rows = append(rows, l.WithDefaults())
		}
		sections = append(sections, Section{Source: s.Source, Listings: rows})
	}

	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, Digest{Sections: sections}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
