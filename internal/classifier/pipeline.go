// Package classifier implements the text-to-label pipelines: feature extraction,
// probabilistic classifiers, artifact persistence and the remote transformer client.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"

	"textorigin/internal/models"
)

// Kind selects a pipeline variant.
type Kind string

const (
	KindNaiveBayes  Kind = "nb"          // word n-gram counts + multinomial Naive Bayes
	KindSGD         Kind = "sgd"         // word n-gram TF-IDF + logistic regression
	KindLexical     Kind = "lexical"     // stylometric features + logistic regression
	KindTransformer Kind = "transformer" // remote fine-tuned sequence classifier
)

var (
	ErrNoSamples     = errors.New("corpus has no samples")
	ErrSingleClass   = errors.New("both labels need at least one sample")
	ErrNotFitted     = errors.New("pipeline is not fitted")
	ErrUnknownKind   = errors.New("unknown model kind")
	ErrInvalidSample = errors.New("sample has an invalid label")
)

// Predictor maps one text to a percentage distribution over the labels.
type Predictor interface {
	Predict(ctx context.Context, text string) (models.Prediction, error)
}

// Options carries the hyperparameters of the local pipelines.
type Options struct {
	NGramMin     int
	NGramMax     int
	MinDF        int
	Sublinear    bool
	Alpha        float64
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

// DefaultOptions mirrors the defaults in configs/config.yml.
func DefaultOptions() Options {
	return Options{
		NGramMin:     1,
		NGramMax:     2,
		MinDF:        1,
		Sublinear:    true,
		Alpha:        1,
		Epochs:       30,
		LearningRate: 0.1,
		L2:           1e-4,
		Seed:         42,
	}
}

// Pipeline bundles a feature extractor with a classifier.
type Pipeline struct {
	Kind     Kind
	Features FeatureExtractor
	Model    Model
	fitted   bool
}

// NewPipeline builds an unfitted pipeline for a local kind.
func NewPipeline(kind Kind, opts Options) (*Pipeline, error) {
	p := &Pipeline{Kind: kind}
	switch kind {
	case KindNaiveBayes:
		p.Features = NewCountVectorizer(opts.NGramMin, opts.NGramMax, opts.MinDF)
		p.Model = NewMultinomialNB(opts.Alpha)
	case KindSGD:
		p.Features = NewTFIDFVectorizer(opts.NGramMin, opts.NGramMax, opts.MinDF, opts.Sublinear)
		p.Model = NewSGDClassifier(opts.Epochs, opts.LearningRate, opts.L2, opts.Seed)
	case KindLexical:
		p.Features = NewLexicalExtractor()
		p.Model = NewSGDClassifier(opts.Epochs, opts.LearningRate, opts.L2, opts.Seed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return p, nil
}

// Fit trains extractor and classifier on the samples.
func (p *Pipeline) Fit(samples []models.Sample) error {
	if err := CheckTrainable(samples, true); err != nil {
		return err
	}
	docs := make([]string, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		docs[i] = s.Text
		y[i] = s.Label.Index()
	}

	if err := p.Features.Fit(docs); err != nil {
		return fmt.Errorf("fit features: %w", err)
	}
	X := make([]SparseVector, len(docs))
	for i, d := range docs {
		X[i] = p.Features.Transform(d)
	}
	if err := p.Model.Fit(X, y, p.Features.Dim()); err != nil {
		return fmt.Errorf("fit model: %w", err)
	}
	p.fitted = true
	return nil
}

// Proba returns [p(human), p(ai)] for the text.
func (p *Pipeline) Proba(text string) ([]float64, error) {
	if !p.fitted || p.Features == nil || p.Model == nil {
		return nil, ErrNotFitted
	}
	return p.Model.PredictProba(p.Features.Transform(text)), nil
}

func (p *Pipeline) Predict(ctx context.Context, text string) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}
	proba, err := p.Proba(text)
	if err != nil {
		return models.Prediction{}, err
	}
	return ToPrediction(proba[0]), nil
}

// ToPrediction converts p(human) to percentages with two decimals. The ai share is
// derived from the rounded human share so both always add up to exactly 100.
func ToPrediction(pHuman float64) models.Prediction {
	if math.IsNaN(pHuman) {
		pHuman = 0.5
	}
	pHuman = math.Min(1, math.Max(0, pHuman))
	h := round2(pHuman * 100)
	return models.Prediction{Menschlich: h, Ki: round2(100 - h)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CheckTrainable reports whether samples can be fitted. Bag-of-words pipelines need
// both classes.
func CheckTrainable(samples []models.Sample, bothClasses bool) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	var counts [numClasses]int
	for _, s := range samples {
		i := s.Label.Index()
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidSample, s.Label)
		}
		counts[i]++
	}
	if bothClasses && (counts[0] == 0 || counts[1] == 0) {
		return ErrSingleClass
	}
	return nil
}
