package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"textorigin/internal/models"
)

// RetrainMode controls what a corpus mutation does to the model.
type RetrainMode string

const (
	RetrainOff       RetrainMode = "off"       // only explicit retrains
	RetrainSync      RetrainMode = "sync"      // retrain inside the mutating request
	RetrainDebounced RetrainMode = "debounced" // coalesce mutations into one background retrain
)

const maxJobHistory = 50

// Retrainer runs one retrain.
type Retrainer interface {
	Train(ctx context.Context) (*TrainResult, error)
}

// RetrainScheduler decides when mutations lead to a retrain and keeps a bounded
// history of retrain jobs.
type RetrainScheduler struct {
	trainer  Retrainer
	mode     RetrainMode
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	jobs    map[string]*models.RetrainJob
	order   []string
	pending *models.RetrainJob

	requests chan struct{}
	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

func NewRetrainScheduler(trainer Retrainer, mode RetrainMode, debounce time.Duration, logger *zap.Logger) *RetrainScheduler {
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	return &RetrainScheduler{
		trainer:  trainer,
		mode:     mode,
		debounce: debounce,
		logger:   logger,
		jobs:     make(map[string]*models.RetrainJob),
		requests: make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *RetrainScheduler) Mode() RetrainMode { return s.mode }

// Start launches the background worker in debounced mode. It is a no-op otherwise.
func (s *RetrainScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != RetrainDebounced || s.started {
		return
	}
	s.started = true
	go s.loop()
}

// Stop terminates the worker and waits for a running retrain to finish.
func (s *RetrainScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending != nil {
			s.finish(s.pending, models.RetrainFailed, nil, errors.New("scheduler stopped"))
			s.pending = nil
		}
	})
}

// Request reacts to a corpus mutation according to the mode. It returns the job that
// will cover the mutation, or nil in off mode.
func (s *RetrainScheduler) Request(ctx context.Context, trigger string) *models.RetrainJob {
	switch s.mode {
	case RetrainSync:
		job, _, _ := s.RunNow(ctx, trigger)
		return job
	case RetrainDebounced:
		s.mu.Lock()
		if s.pending != nil {
			s.pending.Requests++
			job := *s.pending
			s.mu.Unlock()
			s.signal()
			return &job
		}
		s.pending = s.newJob(trigger)
		job := *s.pending
		s.mu.Unlock()
		s.signal()
		return &job
	}
	return nil
}

// RunNow retrains synchronously and records the run as a job.
func (s *RetrainScheduler) RunNow(ctx context.Context, trigger string) (*models.RetrainJob, *TrainResult, error) {
	s.mu.Lock()
	job := s.newJob(trigger)
	s.mu.Unlock()

	res, err := s.execute(ctx, job)

	s.mu.Lock()
	out := *job
	s.mu.Unlock()
	return &out, res, err
}

// Jobs returns the job history, newest first.
func (s *RetrainScheduler) Jobs() []models.RetrainJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RetrainJob, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.jobs[s.order[i]])
	}
	return out
}

func (s *RetrainScheduler) Job(id string) (models.RetrainJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.RetrainJob{}, ErrJobNotFound
	}
	return *job, nil
}

func (s *RetrainScheduler) signal() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

func (s *RetrainScheduler) loop() {
	defer close(s.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-s.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.requests:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			s.mu.Lock()
			job := s.pending
			s.pending = nil
			s.mu.Unlock()
			if job != nil {
				s.execute(context.Background(), job)
			}
		}
	}
}

// newJob registers a pending job. Callers hold mu.
func (s *RetrainScheduler) newJob(trigger string) *models.RetrainJob {
	job := &models.RetrainJob{
		ID:        uuid.NewString(),
		Status:    models.RetrainPending,
		Trigger:   trigger,
		Requests:  1,
		CreatedAt: time.Now().UTC(),
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.prune()
	return job
}

// prune drops the oldest finished jobs beyond the history limit. Callers hold mu.
func (s *RetrainScheduler) prune() {
	for len(s.order) > maxJobHistory {
		victim := -1
		for i, id := range s.order {
			if st := s.jobs[id].Status; st != models.RetrainPending && st != models.RetrainRunning {
				victim = i
				break
			}
		}
		if victim < 0 {
			return
		}
		delete(s.jobs, s.order[victim])
		s.order = append(s.order[:victim], s.order[victim+1:]...)
	}
}

func (s *RetrainScheduler) execute(ctx context.Context, job *models.RetrainJob) (*TrainResult, error) {
	s.mu.Lock()
	now := time.Now().UTC()
	job.Status = models.RetrainRunning
	job.StartedAt = &now
	s.mu.Unlock()

	res, err := s.trainer.Train(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.Is(err, ErrInsufficientData):
		s.finish(job, models.RetrainSkipped, nil, err)
	case err != nil:
		s.finish(job, models.RetrainFailed, nil, err)
	default:
		s.finish(job, models.RetrainCompleted, res, nil)
	}
	s.logger.Info("Retrain job finished",
		zap.String("job_id", job.ID),
		zap.String("trigger", job.Trigger),
		zap.String("status", string(job.Status)),
		zap.Int("requests", job.Requests),
	)
	return res, err
}

// finish records the outcome. Callers hold mu.
func (s *RetrainScheduler) finish(job *models.RetrainJob, status models.RetrainStatus, res *TrainResult, err error) {
	now := time.Now().UTC()
	job.Status = status
	job.FinishedAt = &now
	if res != nil {
		job.ModelVersion = res.Version
		job.Samples = res.Samples
	}
	if err != nil {
		job.Error = err.Error()
	}
}
