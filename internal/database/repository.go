package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
  id BIGSERIAL PRIMARY KEY,
  title TEXT,
  link TEXT,
  source TEXT,
  country TEXT,
  cities TEXT
)`,
	`CREATE INDEX IF NOT EXISTS jobs_link_idx ON jobs (link)`,
}

// Repository is the Postgres store, used when DATABASE_URL is set.
type Repository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func ConnectDB(ctx context.Context, connString string, logger *zap.Logger) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, apperrors.Config("unable to parse database url", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Supabase pooler (PgBouncer in transaction mode) cannot hold prepared
	// statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, apperrors.Persistence("unable to connect to database", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Persistence("database unreachable", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, apperrors.Persistence("create jobs table", err)
		}
	}

	return &Repository{db: pool, logger: logger}, nil
}

func (r *Repository) SaveNew(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, apperrors.Persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	var saveErr error
	for _, l := range listings {
		if !l.Valid() {
			continue
		}
		ok, err := r.insertSavepoint(ctx, tx, l.WithDefaults())
		if err != nil {
			saveErr = apperrors.Persistence("save "+l.Link, err)
			break
		}
		if ok {
			inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperrors.Persistence("commit", err)
	}
	if saveErr != nil {
		r.logger.Error("❌ Database batch stopped early", zap.Int("inserted", inserted), zap.Error(saveErr))
		return inserted, saveErr
	}
	r.logger.Info("💾 Saved new jobs to database", zap.Int("inserted", inserted), zap.Int("batch", len(listings)))
	return inserted, nil
}

// insertSavepoint runs one insert under a savepoint so a failed statement
// does not abort the rows already written in tx.
func (r *Repository) insertSavepoint(ctx context.Context, tx pgx.Tx, l models.Listing) (bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return false, err
	}
	ok, err := insertIfNew(ctx, sp, l)
	if err != nil {
		_ = sp.Rollback(ctx)
		return false, err
	}
	return ok, sp.Commit(ctx)
}

func insertIfNew(ctx context.Context, tx pgx.Tx, l models.Listing) (bool, error) {
	var id int64
	err := tx.QueryRow(ctx, "SELECT id FROM jobs WHERE link = $1", l.Link).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("lookup link: %w", err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO jobs (title, link, source, country, cities) VALUES ($1, $2, $3, $4, $5)",
		l.Title, l.Link, string(l.Source), l.Country, l.City)
	if err != nil {
		return false, fmt.Errorf("insert: %w", err)
	}
	return true, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}
