// Package repository persists the labeled training corpus.
package repository

import (
	"context"
	"errors"
	"fmt"

	"textorigin/internal/models"
)

// ErrNotFound is returned when no sample matches a delete request.
var ErrNotFound = errors.New("sample not found")

// CorpusRepository stores labeled samples. List order is insertion order.
type CorpusRepository interface {
	List(ctx context.Context) ([]models.Sample, error)
	// ListTrainable returns the rows a retrain fits on: all rows, or only the ones not
	// yet folded into a model.
	ListTrainable(ctx context.Context, onlyUntrained bool) ([]models.Sample, error)
	Add(ctx context.Context, s *models.Sample) error
	// DeleteByText removes the oldest sample whose text matches exactly and returns its ID.
	DeleteByText(ctx context.Context, text string) (int64, error)
	// MarkTrained flags every untrained sample with ID <= maxID as trained. Rows added
	// while a retrain was running keep trained=false.
	MarkTrained(ctx context.Context, maxID int64) (int64, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// SeedIfEmpty inserts samples only when the corpus holds no rows. It reports how many
// samples were inserted.
func SeedIfEmpty(ctx context.Context, repo CorpusRepository, samples []models.Sample) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count corpus: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i := range samples {
		s := samples[i]
		if err := repo.Add(ctx, &s); err != nil {
			return i, fmt.Errorf("seed sample %d: %w", i, err)
		}
	}
	return len(samples), nil
}

// MaxID returns the highest sample ID in samples.
func MaxID(samples []models.Sample) int64 {
	var hi int64
	for _, s := range samples {
		if s.ID > hi {
			hi = s.ID
		}
	}
	return hi
}
