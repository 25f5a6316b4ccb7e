package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"textorigin/internal/models"
)

// sqlCorpus serves both SQLite and PostgreSQL; queries are written with '?' and
// rebound for the driver.
type sqlCorpus struct {
	db *sqlx.DB
}

// NewSQLCorpus wraps an open database whose schema already exists.
func NewSQLCorpus(db *sqlx.DB) CorpusRepository {
	return &sqlCorpus{db: db}
}

// NewSQLiteCorpus opens a SQLite-backed corpus.
func NewSQLiteCorpus(ctx context.Context, dsn string, logger *zap.Logger) (CorpusRepository, error) {
	db, err := NewSQLiteDB(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	return NewSQLCorpus(db), nil
}

// NewPostgresCorpus connects to PostgreSQL and migrates the schema.
func NewPostgresCorpus(ctx context.Context, dsn string, logger *zap.Logger) (CorpusRepository, error) {
	db, err := NewPostgresDB(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := MigrateDB(db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLCorpus(db), nil
}

const selectSamples = `SELECT id, text, label, trained, created_at FROM corpus_samples`

func (r *sqlCorpus) List(ctx context.Context) ([]models.Sample, error) {
	return r.ListTrainable(ctx, false)
}

func (r *sqlCorpus) ListTrainable(ctx context.Context, onlyUntrained bool) ([]models.Sample, error) {
	query := selectSamples + ` ORDER BY id`
	if onlyUntrained {
		query = selectSamples + ` WHERE NOT trained ORDER BY id`
	}
	samples := []models.Sample{}
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *sqlCorpus) Add(ctx context.Context, s *models.Sample) error {
	s.Trained = false
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO corpus_samples (text, label, trained, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	return r.db.QueryRowxContext(ctx, query, s.Text, string(s.Label), false, s.CreatedAt).Scan(&s.ID)
}

func (r *sqlCorpus) DeleteByText(ctx context.Context, text string) (int64, error) {
	query := r.db.Rebind(`
		DELETE FROM corpus_samples
		WHERE id = (SELECT id FROM corpus_samples WHERE text = ? ORDER BY id LIMIT 1)
		RETURNING id
	`)
	var id int64
	err := r.db.QueryRowxContext(ctx, query, text).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

func (r *sqlCorpus) MarkTrained(ctx context.Context, maxID int64) (int64, error) {
	query := r.db.Rebind(`UPDATE corpus_samples SET trained = ? WHERE NOT trained AND id <= ?`)
	res, err := r.db.ExecContext(ctx, query, true, maxID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sqlCorpus) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM corpus_samples`)
	return n, err
}

func (r *sqlCorpus) Close() error {
	return r.db.Close()
}
