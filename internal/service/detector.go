package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"textorigin/internal/classifier"
	"textorigin/internal/metrics"
	"textorigin/internal/models"
	"textorigin/internal/notify"
	"textorigin/internal/repository"
)

// ModelHandle is one immutable, fully fitted model version.
type ModelHandle struct {
	Version   int64
	Kind      classifier.Kind
	TrainedAt time.Time
	Samples   int
	Predictor classifier.Predictor
}

// ModelStatus describes the live model for status endpoints.
type ModelStatus struct {
	Loaded    bool            `json:"loaded"`
	Version   int64           `json:"version"`
	Kind      classifier.Kind `json:"kind"`
	TrainedAt *time.Time      `json:"trained_at,omitempty"`
	Samples   int             `json:"samples"`
}

// TrainResult summarizes a successful retrain.
type TrainResult struct {
	Version int64 `json:"model_version"`
	Samples int   `json:"samples"`
	Marked  int64 `json:"marked_trained"`
}

// DetectorConfig configures DetectorService.
type DetectorConfig struct {
	// ArtifactPath is where the live model is mirrored; empty disables persistence.
	ArtifactPath string
}

// DetectorService owns the live model. Predictions read the current handle without
// locking; a retrain builds a new handle and swaps it in atomically.
type DetectorService struct {
	repo     repository.CorpusRepository
	trainer  classifier.Trainer
	cfg      DetectorConfig
	metrics  *metrics.Metrics
	notifier notify.Notifier
	logger   *zap.Logger

	handle atomic.Pointer[ModelHandle]
	group  singleflight.Group
	// runs counts retrains that have started reading the corpus. A caller only joins
	// the run numbered runs+1, which has not read the corpus yet.
	runs atomic.Int64
	// trainMu serializes runs that singleflight does not merge.
	trainMu sync.Mutex
}

func NewDetectorService(
	repo repository.CorpusRepository,
	trainer classifier.Trainer,
	cfg DetectorConfig,
	m *metrics.Metrics,
	notifier notify.Notifier,
	logger *zap.Logger,
) *DetectorService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &DetectorService{
		repo:     repo,
		trainer:  trainer,
		cfg:      cfg,
		metrics:  m,
		notifier: notifier,
		logger:   logger,
	}
}

// Current returns the live model handle or nil.
func (s *DetectorService) Current() *ModelHandle {
	return s.handle.Load()
}

func (s *DetectorService) Status() ModelStatus {
	h := s.handle.Load()
	if h == nil {
		return ModelStatus{Kind: s.trainer.Kind()}
	}
	trainedAt := h.TrainedAt
	return ModelStatus{
		Loaded:    true,
		Version:   h.Version,
		Kind:      h.Kind,
		TrainedAt: &trainedAt,
		Samples:   h.Samples,
	}
}

// Predict classifies text with the live model.
func (s *DetectorService) Predict(ctx context.Context, text string) (models.Prediction, error) {
	start := time.Now()
	pred, err := s.predict(ctx, text)
	s.metrics.RecordPrediction(time.Since(start).Seconds(), err)
	return pred, err
}

func (s *DetectorService) predict(ctx context.Context, text string) (models.Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return models.Prediction{}, ErrEmptyText
	}
	h := s.handle.Load()
	if h == nil {
		return models.Prediction{}, ErrModelUnavailable
	}
	pred, err := h.Predictor.Predict(ctx, text)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("predict with model v%d: %w", h.Version, err)
	}
	s.logger.Debug("Prediction",
		zap.String("text", truncate(text, 30)),
		zap.Int64("model_version", h.Version),
		zap.Float64("menschlich", pred.Menschlich),
		zap.Float64("ki", pred.Ki),
	)
	return pred, nil
}

// Train refits the model on the full corpus. Concurrent calls share a run only if that
// run reads the corpus after the call was made, so a caller never gets a model that
// misses a mutation it completed before calling. On any failure the previous model
// stays live.
func (s *DetectorService) Train(ctx context.Context) (*TrainResult, error) {
	key := strconv.FormatInt(s.runs.Load()+1, 10)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// a disconnecting caller must not abort a run other callers wait on
		return s.train(context.WithoutCancel(ctx))
	})
	if shared {
		s.logger.Debug("Joined running retrain")
	}
	if err != nil {
		return nil, err
	}
	return v.(*TrainResult), nil
}

func (s *DetectorService) train(ctx context.Context) (*TrainResult, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()
	// later callers must wait for the next run
	s.runs.Add(1)

	start := time.Now()
	res, err := s.fit(ctx)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrInsufficientData):
		s.metrics.RecordTraining("skipped", elapsed.Seconds())
		s.logger.Warn("Retrain skipped, keeping previous model", zap.Error(err))
		return nil, err
	case err != nil:
		s.metrics.RecordTraining("error", elapsed.Seconds())
		s.logger.Error("Retrain failed, keeping previous model", zap.Error(err))
		s.notify(ctx, fmt.Sprintf("Neu-Trainieren fehlgeschlagen: %v", err))
		return nil, err
	}

	s.metrics.RecordTraining("success", elapsed.Seconds())
	s.metrics.SetModelVersion(res.Version)
	s.logger.Info("Model retrained",
		zap.Int64("model_version", res.Version),
		zap.Int("samples", res.Samples),
		zap.Int64("marked_trained", res.Marked),
		zap.Duration("duration", elapsed),
	)
	s.notify(ctx, fmt.Sprintf("Modell v%d mit %d Texten trainiert.", res.Version, res.Samples))
	return res, nil
}

func (s *DetectorService) fit(ctx context.Context) (*TrainResult, error) {
	samples, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load training samples: %w", err)
	}
	if err := classifier.CheckTrainable(samples, s.trainer.RequiresBothClasses()); err != nil {
		if errors.Is(err, classifier.ErrNoSamples) || errors.Is(err, classifier.ErrSingleClass) {
			return nil, fmt.Errorf("%w: %w", ErrInsufficientData, err)
		}
		return nil, err
	}

	artifact, err := s.trainer.Fit(ctx, samples)
	if err != nil {
		if errors.Is(err, classifier.ErrEmptyVocabulary) {
			return nil, fmt.Errorf("%w: %w", ErrInsufficientData, err)
		}
		return nil, fmt.Errorf("fit model: %w", err)
	}
	predictor, err := s.trainer.Bind(artifact)
	if err != nil {
		return nil, fmt.Errorf("bind model: %w", err)
	}

	var version int64 = 1
	if cur := s.handle.Load(); cur != nil {
		version = cur.Version + 1
	}
	artifact.Version = version
	artifact.TrainedAt = time.Now().UTC()

	if s.cfg.ArtifactPath != "" {
		if err := classifier.SaveArtifact(s.cfg.ArtifactPath, artifact); err != nil {
			return nil, fmt.Errorf("save model artifact: %w", err)
		}
	}

	s.handle.Store(&ModelHandle{
		Version:   version,
		Kind:      artifact.Kind,
		TrainedAt: artifact.TrainedAt,
		Samples:   artifact.Samples,
		Predictor: predictor,
	})

	marked, err := s.repo.MarkTrained(ctx, repository.MaxID(samples))
	if err != nil {
		// the new model is live; the flags catch up on the next run
		s.logger.Error("Failed to mark samples as trained", zap.Error(err))
	}
	return &TrainResult{Version: version, Samples: len(samples), Marked: marked}, nil
}

// LoadFromDisk installs the persisted artifact. A missing file returns an error
// wrapping os.ErrNotExist.
func (s *DetectorService) LoadFromDisk() error {
	if s.cfg.ArtifactPath == "" {
		return errors.New("no artifact path configured")
	}
	artifact, err := classifier.LoadArtifact(s.cfg.ArtifactPath)
	if err != nil {
		return err
	}
	predictor, err := s.trainer.Bind(artifact)
	if err != nil {
		return fmt.Errorf("bind stored model: %w", err)
	}
	s.handle.Store(&ModelHandle{
		Version:   artifact.Version,
		Kind:      artifact.Kind,
		TrainedAt: artifact.TrainedAt,
		Samples:   artifact.Samples,
		Predictor: predictor,
	})
	s.metrics.SetModelVersion(artifact.Version)
	s.logger.Info("Loaded model from disk",
		zap.String("path", s.cfg.ArtifactPath),
		zap.Int64("model_version", artifact.Version),
		zap.String("kind", string(artifact.Kind)),
	)
	return nil
}

func (s *DetectorService) notify(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		s.logger.Warn("Failed to send notification", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
