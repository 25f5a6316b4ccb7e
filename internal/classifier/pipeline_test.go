package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textorigin/internal/models"
)

func TestPipelinePredictSumsToHundred(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Ich hab echt keinen Bock mehr auf Regen.",
		"Zudem ist es wichtig, die Vorteile insgesamt zu betonen.",
		"xyzzy",
		"!!!",
	}
	for _, kind := range []Kind{KindNaiveBayes, KindSGD, KindLexical} {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			p, err := NewPipeline(kind, DefaultOptions())
			require.NoError(t, err)
			require.NoError(t, p.Fit(corpus()))

			for _, in := range inputs {
				pred, err := p.Predict(context.Background(), in)
				require.NoError(t, err)
				assert.InDelta(t, 100.0, pred.Menschlich+pred.Ki, 1e-9, in)
				assert.GreaterOrEqual(t, pred.Menschlich, 0.0)
				assert.GreaterOrEqual(t, pred.Ki, 0.0)
				assert.Equal(t, round2(pred.Menschlich), pred.Menschlich)
			}
		})
	}
}

func TestPipelineSeparatesTrainingCorpus(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindNaiveBayes, KindSGD} {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			p, err := NewPipeline(kind, DefaultOptions())
			require.NoError(t, err)
			require.NoError(t, p.Fit(corpus()))

			human, err := p.Predict(context.Background(), "Ich hab echt mal wieder keinen Bock, war aber okay.")
			require.NoError(t, err)
			assert.Greater(t, human.Menschlich, human.Ki)

			ai, err := p.Predict(context.Background(), "Zudem ist es insgesamt wichtig, die Vorteile zu berücksichtigen.")
			require.NoError(t, err)
			assert.Greater(t, ai.Ki, ai.Menschlich)
		})
	}
}

func TestPipelineFitIsDeterministic(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindNaiveBayes, KindSGD, KindLexical} {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			a, err := NewPipeline(kind, DefaultOptions())
			require.NoError(t, err)
			b, err := NewPipeline(kind, DefaultOptions())
			require.NoError(t, err)
			require.NoError(t, a.Fit(corpus()))
			require.NoError(t, b.Fit(corpus()))

			text := "Darüber hinaus war der Zug heute echt pünktlich."
			pa, err := a.Predict(context.Background(), text)
			require.NoError(t, err)
			pb, err := b.Predict(context.Background(), text)
			require.NoError(t, err)
			assert.Equal(t, pa, pb)
		})
	}
}

func TestPipelineFitRejectsUntrainableCorpus(t *testing.T) {
	t.Parallel()

	onlyHuman := []models.Sample{{Text: "nur ein mensch", Label: models.LabelHuman}}

	tests := []struct {
		name    string
		samples []models.Sample
		want    error
	}{
		{"empty", nil, ErrNoSamples},
		{"single class", onlyHuman, ErrSingleClass},
		{"bad label", []models.Sample{{Text: "x", Label: "robot"}}, ErrInvalidSample},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := NewPipeline(KindNaiveBayes, DefaultOptions())
			require.NoError(t, err)
			assert.ErrorIs(t, p.Fit(tt.samples), tt.want)
		})
	}
}

func TestPipelineUnfitted(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(KindSGD, DefaultOptions())
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), "hallo")
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = NewPipeline("bert", DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestToPrediction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    float64
		want models.Prediction
	}{
		{0.5, models.Prediction{Menschlich: 50, Ki: 50}},
		{1, models.Prediction{Menschlich: 100, Ki: 0}},
		{0.123456, models.Prediction{Menschlich: 12.35, Ki: 87.65}},
		{0.66666, models.Prediction{Menschlich: 66.67, Ki: 33.33}},
		{-0.2, models.Prediction{Menschlich: 0, Ki: 100}},
	}
	for _, tt := range tests {
		tt := tt
		got := ToPrediction(tt.p)
		assert.InDelta(t, tt.want.Menschlich, got.Menschlich, 1e-9)
		assert.InDelta(t, tt.want.Ki, got.Ki, 1e-9)
	}
}
