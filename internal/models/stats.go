package models

import (
	"encoding/json"
	"fmt"
)

// PerLabel holds one value per label plus the corpus total.
type PerLabel[T any] struct {
	Menschlich T `json:"menschlich"`
	Ki         T `json:"ki"`
	Total      T `json:"total"`
}

// WordCount is serialized as a [word, count] pair to match the admin panel.
type WordCount struct {
	Word  string
	Count int
}

func (w WordCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{w.Word, w.Count})
}

func (w *WordCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("word count: expected [word, count], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &w.Word); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &w.Count)
}

// CorpusStats aggregates lexical statistics over a corpus snapshot.
type CorpusStats struct {
	SampleCounts   PerLabel[int]         `json:"sample_counts"`
	WordCounts     PerLabel[int]         `json:"word_counts"`
	CharCounts     PerLabel[int]         `json:"char_counts"`
	SentenceCounts PerLabel[int]         `json:"sentence_counts"`
	AvgLengths     PerLabel[float64]     `json:"avg_lengths"`
	FrequentWords  PerLabel[[]WordCount] `json:"frequent_words"`
	Untrained      int                   `json:"untrained"`
}
