package dedup

import (
	"strings"

	"go-career-scraper/internal/models"
)

// LinkIndex is the set of links already present in one destination. It is
// built per save and not safe for concurrent use.
type LinkIndex struct {
	seen map[string]struct{}
}

// NewLinkIndex seeds the index with existing links; blanks are ignored.
func NewLinkIndex(links []string) *LinkIndex {
	idx := &LinkIndex{seen: make(map[string]struct{}, len(links))}
	for _, l := range links {
		if k := key(l); k != "" {
			idx.seen[k] = struct{}{}
		}
	}
	return idx
}

func (li *LinkIndex) Len() int {
	return len(li.seen)
}

// FilterUnseen returns listings whose link is not indexed yet and marks them
// seen, so a batch that repeats a link keeps only its first occurrence.
func (li *LinkIndex) FilterUnseen(listings []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		k := key(l.Link)
		if k == "" {
			continue
		}
		if _, exists := li.seen[k]; exists {
			continue
		}
		li.seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Unique drops repeated links within one extraction, keeping order.
func Unique(listings []models.Listing) []models.Listing {
	return NewLinkIndex(nil).FilterUnseen(listings)
}

func key(link string) string {
	return strings.TrimSpace(link)
}
