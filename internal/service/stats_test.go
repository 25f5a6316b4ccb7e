package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textorigin/internal/models"
)

func TestComputeStats(t *testing.T) {
	t.Parallel()

	samples := []models.Sample{
		{Text: "Hallo Welt! Wie geht's?", Label: models.LabelHuman},
		{Text: "Die Welt ist groß.", Label: models.LabelAI, Trained: true},
		{Text: "Die Welt.", Label: models.LabelAI},
	}
	st := ComputeStats(samples, 2)

	assert.Equal(t, models.PerLabel[int]{Menschlich: 1, Ki: 2, Total: 3}, st.SampleCounts)
	// "hallo welt wie gehts" / "die welt ist groß" + "die welt"
	assert.Equal(t, models.PerLabel[int]{Menschlich: 4, Ki: 6, Total: 10}, st.WordCounts)
	assert.Equal(t, models.PerLabel[int]{Menschlich: 17, Ki: 21, Total: 38}, st.CharCounts)
	assert.Equal(t, models.PerLabel[int]{Menschlich: 2, Ki: 2, Total: 4}, st.SentenceCounts)
	assert.InDelta(t, 4.0, st.AvgLengths.Menschlich, 1e-9)
	assert.InDelta(t, 3.0, st.AvgLengths.Ki, 1e-9)
	assert.InDelta(t, 10.0/3, st.AvgLengths.Total, 1e-9)
	assert.Equal(t, 2, st.Untrained)

	assert.Equal(t, []models.WordCount{{Word: "die", Count: 2}, {Word: "welt", Count: 2}}, st.FrequentWords.Ki)
	assert.Equal(t, []models.WordCount{{Word: "welt", Count: 3}, {Word: "die", Count: 2}}, st.FrequentWords.Total)
	// ties are broken alphabetically
	assert.Equal(t, []models.WordCount{{Word: "gehts", Count: 1}, {Word: "hallo", Count: 1}}, st.FrequentWords.Menschlich)
}

func TestComputeStatsIsDeterministic(t *testing.T) {
	t.Parallel()

	samples := []models.Sample{
		{Text: "a b c d e f g", Label: models.LabelHuman},
		{Text: "g f e d c b a", Label: models.LabelAI},
	}
	first, err := json.Marshal(ComputeStats(samples, 3))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(ComputeStats(samples, 3))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(again))
	}
}

func TestComputeStatsEmptyCorpus(t *testing.T) {
	t.Parallel()

	st := ComputeStats(nil, 0)
	assert.Zero(t, st.WordCounts.Total)
	assert.Zero(t, st.AvgLengths.Total)
	assert.Empty(t, st.FrequentWords.Total)

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"frequent_words":{"menschlich":[],"ki":[],"total":[]}`)
}

func TestFrequentWordsSerializeAsPairs(t *testing.T) {
	t.Parallel()

	st := ComputeStats([]models.Sample{{Text: "hallo hallo welt", Label: models.LabelHuman}}, 50)
	raw, err := json.Marshal(st.FrequentWords.Menschlich)
	require.NoError(t, err)
	assert.JSONEq(t, `[["hallo",2],["welt",1]]`, string(raw))
}
