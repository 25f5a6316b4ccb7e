package service

import (
	"sort"
	"unicode/utf8"

	"textorigin/internal/models"
	"textorigin/internal/textproc"
)

// DefaultTopWords is the number of frequent words reported per label.
const DefaultTopWords = 50

// ComputeStats aggregates lexical statistics over a corpus snapshot. Words are
// lower-cased with punctuation stripped; character counts sum the lengths of those
// words, so whitespace and punctuation are not counted. AvgLengths is the mean number
// of words per sample.
func ComputeStats(samples []models.Sample, topN int) models.CorpusStats {
	if topN <= 0 {
		topN = DefaultTopWords
	}
	var st models.CorpusStats
	freq := [2]map[string]int{{}, {}}
	total := map[string]int{}

	for _, s := range samples {
		words := textproc.Words(s.Text)
		chars := 0
		for _, w := range words {
			chars += utf8.RuneCountInString(w)
		}
		sentences := len(textproc.Sentences(s.Text))

		var f map[string]int
		switch s.Label {
		case models.LabelHuman:
			st.SampleCounts.Menschlich++
			st.WordCounts.Menschlich += len(words)
			st.CharCounts.Menschlich += chars
			st.SentenceCounts.Menschlich += sentences
			f = freq[0]
		case models.LabelAI:
			st.SampleCounts.Ki++
			st.WordCounts.Ki += len(words)
			st.CharCounts.Ki += chars
			st.SentenceCounts.Ki += sentences
			f = freq[1]
		default:
			continue
		}
		st.SampleCounts.Total++
		st.WordCounts.Total += len(words)
		st.CharCounts.Total += chars
		st.SentenceCounts.Total += sentences
		if !s.Trained {
			st.Untrained++
		}
		for _, w := range words {
			f[w]++
			total[w]++
		}
	}

	st.AvgLengths = models.PerLabel[float64]{
		Menschlich: average(st.WordCounts.Menschlich, st.SampleCounts.Menschlich),
		Ki:         average(st.WordCounts.Ki, st.SampleCounts.Ki),
		Total:      average(st.WordCounts.Total, st.SampleCounts.Total),
	}
	st.FrequentWords = models.PerLabel[[]models.WordCount]{
		Menschlich: topWords(freq[0], topN),
		Ki:         topWords(freq[1], topN),
		Total:      topWords(total, topN),
	}
	return st
}

func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// topWords orders by count descending, then alphabetically.
func topWords(freq map[string]int, n int) []models.WordCount {
	out := make([]models.WordCount, 0, len(freq))
	for w, c := range freq {
		out = append(out, models.WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
