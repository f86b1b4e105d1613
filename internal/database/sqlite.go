package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS Jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT,
  link TEXT,
  source TEXT,
  country TEXT,
  cities TEXT
);`

type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func Open(path string, logger *zap.Logger) (*SQLiteStore, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Persistence("open sqlite "+path, err)
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.Persistence("ping sqlite "+path, err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, apperrors.Persistence("create Jobs table", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) SaveNew(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	var saveErr error
	for _, l := range listings {
		if !l.Valid() {
			continue
		}
		ok, err := s.insertIfNew(ctx, tx, l.WithDefaults())
		if err != nil {
			saveErr = apperrors.Persistence("save "+l.Link, err)
			break
		}
		if ok {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.Persistence("commit", err)
	}
	if saveErr != nil {
		s.logger.Error("❌ Database batch stopped early", zap.Int("inserted", inserted), zap.Error(saveErr))
		return inserted, saveErr
	}
	s.logger.Info("💾 Saved new jobs to database", zap.Int("inserted", inserted), zap.Int("batch", len(listings)))
	return inserted, nil
}

func (s *SQLiteStore) insertIfNew(ctx context.Context, tx *sql.Tx, l models.Listing) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM Jobs WHERE link = ?`, l.Link).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO Jobs (title, link, source, country, cities) VALUES (?, ?, ?, ?, ?)`,
		l.Title, l.Link, string(l.Source), l.Country, l.City)
	return err == nil, err
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Jobs`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
