package classifier

import (
	"errors"
	"math"
	"sort"

	"textorigin/internal/textproc"
)

// ErrEmptyVocabulary is returned when fitting leaves no terms, e.g. all texts are
// punctuation or min_df filtered everything out.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// FeatureExtractor turns raw text into a feature vector.
type FeatureExtractor interface {
	Fit(docs []string) error
	Transform(doc string) SparseVector
	Dim() int
}

// CountVectorizer is a bag of word n-grams with raw term counts.
type CountVectorizer struct {
	NGramMin   int
	NGramMax   int
	MinDF      int
	Vocabulary map[string]int
}

// NewCountVectorizer returns a vectorizer over word n-grams in [ngramMin, ngramMax].
func NewCountVectorizer(ngramMin, ngramMax, minDF int) *CountVectorizer {
	if ngramMin < 1 {
		ngramMin = 1
	}
	if ngramMax < ngramMin {
		ngramMax = ngramMin
	}
	if minDF < 1 {
		minDF = 1
	}
	return &CountVectorizer{NGramMin: ngramMin, NGramMax: ngramMax, MinDF: minDF}
}

func (v *CountVectorizer) terms(doc string) []string {
	return textproc.NGrams(textproc.Words(doc), v.NGramMin, v.NGramMax)
}

// Fit builds the vocabulary. Indices follow lexical term order so the same corpus always
// produces the same vocabulary.
func (v *CountVectorizer) Fit(docs []string) error {
	_, err := v.fitDF(docs)
	return err
}

func (v *CountVectorizer) fitDF(docs []string) (map[string]int, error) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, t := range v.terms(doc) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	kept := make([]string, 0, len(df))
	for t, n := range df {
		if n >= v.MinDF {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, ErrEmptyVocabulary
	}
	sort.Strings(kept)

	v.Vocabulary = make(map[string]int, len(kept))
	for i, t := range kept {
		v.Vocabulary[t] = i
	}
	return df, nil
}

func (v *CountVectorizer) counts(doc string) map[int]float64 {
	out := make(map[int]float64)
	for _, t := range v.terms(doc) {
		if i, ok := v.Vocabulary[t]; ok {
			out[i]++
		}
	}
	return out
}

// Transform counts known terms; unknown terms are ignored.
func (v *CountVectorizer) Transform(doc string) SparseVector {
	return newSparseVector(v.counts(doc))
}

func (v *CountVectorizer) Dim() int { return len(v.Vocabulary) }

// TFIDFVectorizer weights n-gram counts by smoothed inverse document frequency and
// L2-normalizes each document.
type TFIDFVectorizer struct {
	CountVectorizer
	Sublinear bool
	IDF       []float64
}

func NewTFIDFVectorizer(ngramMin, ngramMax, minDF int, sublinear bool) *TFIDFVectorizer {
	return &TFIDFVectorizer{
		CountVectorizer: *NewCountVectorizer(ngramMin, ngramMax, minDF),
		Sublinear:       sublinear,
	}
}

func (v *TFIDFVectorizer) Fit(docs []string) error {
	df, err := v.fitDF(docs)
	if err != nil {
		return err
	}
	n := float64(len(docs))
	v.IDF = make([]float64, len(v.Vocabulary))
	for t, i := range v.Vocabulary {
		v.IDF[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return nil
}

func (v *TFIDFVectorizer) Transform(doc string) SparseVector {
	counts := v.counts(doc)
	vec := newSparseVector(counts)
	norm := 0.0
	for k, i := range vec.Indices {
		tf := vec.Values[k]
		if v.Sublinear {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.IDF[i]
		vec.Values[k] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec
}
