package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"textorigin/internal/models"
)

type jsonFile struct {
	NextID  int64           `json:"next_id"`
	Samples []models.Sample `json:"samples"`
}

// jsonCorpus keeps the corpus in one JSON document that is rewritten on every mutation.
type jsonCorpus struct {
	mu   sync.RWMutex
	path string
	data jsonFile
}

// NewJSONCorpus opens or creates the corpus file at path.
func NewJSONCorpus(path string) (CorpusRepository, error) {
	r := &jsonCorpus{path: path, data: jsonFile{NextID: 1}}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	if err := json.Unmarshal(raw, &r.data); err != nil {
		return nil, fmt.Errorf("parse corpus file: %w", err)
	}
	if r.data.NextID <= MaxID(r.data.Samples) {
		r.data.NextID = MaxID(r.data.Samples) + 1
	}
	return r, nil
}

func (r *jsonCorpus) List(ctx context.Context) ([]models.Sample, error) {
	return r.ListTrainable(ctx, false)
}

func (r *jsonCorpus) ListTrainable(_ context.Context, onlyUntrained bool) ([]models.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Sample, 0, len(r.data.Samples))
	for _, s := range r.data.Samples {
		if onlyUntrained && s.Trained {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *jsonCorpus) Add(_ context.Context, s *models.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.data.NextID
	s.Trained = false
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.data.NextID++
	r.data.Samples = append(r.data.Samples, *s)
	if err := r.flush(); err != nil {
		r.data.Samples = r.data.Samples[:len(r.data.Samples)-1]
		r.data.NextID--
		return err
	}
	return nil
}

func (r *jsonCorpus) DeleteByText(_ context.Context, text string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.data.Samples {
		if s.Text != text {
			continue
		}
		prev := r.data.Samples
		r.data.Samples = append(append([]models.Sample{}, prev[:i]...), prev[i+1:]...)
		if err := r.flush(); err != nil {
			r.data.Samples = prev
			return 0, err
		}
		return s.ID, nil
	}
	return 0, ErrNotFound
}

func (r *jsonCorpus) MarkTrained(_ context.Context, maxID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed []int
	for i, s := range r.data.Samples {
		if !s.Trained && s.ID <= maxID {
			r.data.Samples[i].Trained = true
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if err := r.flush(); err != nil {
		for _, i := range changed {
			r.data.Samples[i].Trained = false
		}
		return 0, err
	}
	return int64(len(changed)), nil
}

func (r *jsonCorpus) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data.Samples), nil
}

func (r *jsonCorpus) Close() error { return nil }

// flush replaces the file atomically. Callers hold mu.
func (r *jsonCorpus) flush() error {
	raw, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".corpus-*")
	if err != nil {
		return fmt.Errorf("create temp corpus: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace corpus: %w", err)
	}
	return nil
}
