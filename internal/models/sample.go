package models

import (
	"strings"
	"time"
)

// Label is the class of a corpus sample.
type Label string

const (
	LabelHuman Label = "menschlich"
	LabelAI    Label = "ki"
)

// Labels lists the closed label set in class-index order.
var Labels = []Label{LabelHuman, LabelAI}

// ParseLabel accepts the canonical labels plus the english aliases "human" and "ai".
func ParseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LabelHuman), "human":
		return LabelHuman, true
	case string(LabelAI), "ai":
		return LabelAI, true
	}
	return "", false
}

// Index returns the class index used by the classifiers (0 human, 1 ai), or -1.
func (l Label) Index() int {
	for i, v := range Labels {
		if v == l {
			return i
		}
	}
	return -1
}

// Sample represents a single labeled text in the training corpus.
// Trained marks samples that are folded into the live model.
type Sample struct {
	ID        int64     `db:"id" json:"id,omitempty"`
	Text      string    `db:"text" json:"text"`
	Label     Label     `db:"label" json:"label"`
	Trained   bool      `db:"trained" json:"trained"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Prediction is a probability distribution over the two labels in percent.
type Prediction struct {
	Menschlich float64 `json:"menschlich"`
	Ki         float64 `json:"ki"`
}
