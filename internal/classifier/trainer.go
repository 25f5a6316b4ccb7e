package classifier

import (
	"context"
	"fmt"

	"textorigin/internal/models"
)

// Trainer fits an artifact from corpus samples and turns a stored artifact back into
// a Predictor.
type Trainer interface {
	Kind() Kind
	RequiresBothClasses() bool
	Fit(ctx context.Context, samples []models.Sample) (*Artifact, error)
	Bind(a *Artifact) (Predictor, error)
}

// LocalTrainer fits in-process pipelines.
type LocalTrainer struct {
	kind Kind
	opts Options
}

func NewLocalTrainer(kind Kind, opts Options) (*LocalTrainer, error) {
	if _, err := NewPipeline(kind, opts); err != nil {
		return nil, err
	}
	return &LocalTrainer{kind: kind, opts: opts}, nil
}

func (t *LocalTrainer) Kind() Kind { return t.kind }

func (t *LocalTrainer) RequiresBothClasses() bool { return true }

func (t *LocalTrainer) Fit(ctx context.Context, samples []models.Sample) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := NewPipeline(t.kind, t.opts)
	if err != nil {
		return nil, err
	}
	if err := p.Fit(samples); err != nil {
		return nil, err
	}
	return &Artifact{Kind: t.kind, Samples: len(samples), Pipeline: p}, nil
}

func (t *LocalTrainer) Bind(a *Artifact) (Predictor, error) {
	if a == nil || a.Pipeline == nil {
		return nil, ErrNotFitted
	}
	if a.Kind != t.kind {
		return nil, fmt.Errorf("artifact kind %q does not match configured kind %q", a.Kind, t.kind)
	}
	return a.Pipeline, nil
}
