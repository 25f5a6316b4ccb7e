package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"textorigin/internal/metrics"
	"textorigin/internal/models"
	"textorigin/internal/notify"
	"textorigin/internal/repository"
)

// CorpusService validates admin corpus mutations and hands them to the retrain
// scheduler.
type CorpusService struct {
	repo      repository.CorpusRepository
	scheduler *RetrainScheduler
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	topWords  int
	logger    *zap.Logger
}

func NewCorpusService(
	repo repository.CorpusRepository,
	scheduler *RetrainScheduler,
	notifier notify.Notifier,
	m *metrics.Metrics,
	topWords int,
	logger *zap.Logger,
) *CorpusService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &CorpusService{
		repo:      repo,
		scheduler: scheduler,
		notifier:  notifier,
		metrics:   m,
		topWords:  topWords,
		logger:    logger,
	}
}

// Add stores a new untrained sample. The text is kept verbatim.
func (s *CorpusService) Add(ctx context.Context, text, label string) (*models.Sample, *models.RetrainJob, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmptyText
	}
	l, ok := models.ParseLabel(label)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	sample := &models.Sample{Text: text, Label: l}
	if err := s.repo.Add(ctx, sample); err != nil {
		return nil, nil, fmt.Errorf("add sample: %w", err)
	}
	s.logger.Info("Sample added to training queue",
		zap.Int64("id", sample.ID),
		zap.String("label", string(l)),
		zap.String("text", truncate(text, 30)),
	)
	s.notify(ctx, fmt.Sprintf("Neuer Text (%s) hinzugefügt: %s", l, truncate(text, 80)))
	s.refreshGauges(ctx)
	return sample, s.scheduler.Request(ctx, "add_data"), nil
}

// Delete removes the oldest sample with exactly this text.
func (s *CorpusService) Delete(ctx context.Context, text string) (*models.RetrainJob, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	id, err := s.repo.DeleteByText(ctx, text)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Sample deleted", zap.Int64("id", id), zap.String("text", truncate(text, 30)))
	s.notify(ctx, fmt.Sprintf("Text gelöscht: %s", truncate(text, 80)))
	s.refreshGauges(ctx)
	return s.scheduler.Request(ctx, "delete_data"), nil
}

// Snapshot returns all samples together with their statistics.
func (s *CorpusService) Snapshot(ctx context.Context) ([]models.Sample, models.CorpusStats, error) {
	samples, err := s.repo.List(ctx)
	if err != nil {
		return nil, models.CorpusStats{}, fmt.Errorf("list samples: %w", err)
	}
	stats := ComputeStats(samples, s.topWords)
	s.setGauges(stats)
	return samples, stats, nil
}

// Export returns all samples, or only those not yet used for training.
func (s *CorpusService) Export(ctx context.Context, onlyUntrained bool) ([]models.Sample, error) {
	samples, err := s.repo.ListTrainable(ctx, onlyUntrained)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	return samples, nil
}

// Count returns the corpus size.
func (s *CorpusService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *CorpusService) refreshGauges(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if _, _, err := s.Snapshot(ctx); err != nil {
		s.logger.Warn("Failed to refresh corpus gauges", zap.Error(err))
	}
}

func (s *CorpusService) setGauges(st models.CorpusStats) {
	s.metrics.SetCorpusSamples(string(models.LabelHuman), st.SampleCounts.Menschlich)
	s.metrics.SetCorpusSamples(string(models.LabelAI), st.SampleCounts.Ki)
}

func (s *CorpusService) notify(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		s.logger.Warn("Failed to send notification", zap.Error(err))
	}
}
