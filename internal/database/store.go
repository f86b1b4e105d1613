package database

import (
	"context"

	"go-career-scraper/internal/models"
)

// Store persists listings keyed by link. SaveNew inserts only listings whose
// link is not stored yet and reports how many rows were written. A failure
// mid-batch keeps the rows written before it.
type Store interface {
	SaveNew(ctx context.Context, listings []models.Listing) (int, error)
	Close() error
}
