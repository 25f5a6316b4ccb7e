package classifier

import (
	"math"
	"strings"
	"unicode"

	"textorigin/internal/textproc"
)

// Hand-built stylometric features. Order is part of the artifact format.
var lexicalFeatureNames = []string{
	"avg_word_len",
	"avg_sentence_len",
	"sentence_len_sd",
	"type_token_ratio",
	"punct_rate",
	"comma_rate",
	"stopword_rate",
	"long_word_rate",
	"digit_rate",
	"upper_rate",
}

// German and english function words; AI text tends to use them more evenly.
var stopwords = map[string]struct{}{
	"der": {}, "die": {}, "das": {}, "und": {}, "ist": {}, "in": {}, "den": {}, "von": {},
	"zu": {}, "mit": {}, "sich": {}, "des": {}, "auf": {}, "für": {}, "nicht": {}, "es": {},
	"ein": {}, "eine": {}, "als": {}, "auch": {}, "dem": {}, "wird": {}, "an": {}, "dass": {},
	"the": {}, "and": {}, "of": {}, "to": {}, "a": {}, "is": {}, "that": {}, "it": {},
}

// LexicalExtractor maps a text to a standardized dense vector of stylometric features.
type LexicalExtractor struct {
	Mean []float64
	Std  []float64
}

func NewLexicalExtractor() *LexicalExtractor {
	return &LexicalExtractor{}
}

func (e *LexicalExtractor) Dim() int { return len(lexicalFeatureNames) }

// Fit records per-feature mean and standard deviation over the corpus.
func (e *LexicalExtractor) Fit(docs []string) error {
	dim := e.Dim()
	e.Mean = make([]float64, dim)
	e.Std = make([]float64, dim)
	if len(docs) == 0 {
		for i := range e.Std {
			e.Std[i] = 1
		}
		return nil
	}

	rows := make([][]float64, len(docs))
	for i, d := range docs {
		rows[i] = lexicalFeatures(d)
		for j, v := range rows[i] {
			e.Mean[j] += v
		}
	}
	n := float64(len(docs))
	for j := range e.Mean {
		e.Mean[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - e.Mean[j]
			e.Std[j] += d * d
		}
	}
	for j := range e.Std {
		e.Std[j] = math.Sqrt(e.Std[j] / n)
		if e.Std[j] < 1e-9 {
			e.Std[j] = 1
		}
	}
	return nil
}

func (e *LexicalExtractor) Transform(doc string) SparseVector {
	raw := lexicalFeatures(doc)
	v := SparseVector{
		Indices: make([]int, len(raw)),
		Values:  make([]float64, len(raw)),
	}
	for j, x := range raw {
		v.Indices[j] = j
		mean, std := 0.0, 1.0
		if j < len(e.Mean) {
			mean, std = e.Mean[j], e.Std[j]
		}
		v.Values[j] = (x - mean) / std
	}
	return v
}

func lexicalFeatures(text string) []float64 {
	out := make([]float64, len(lexicalFeatureNames))
	words := textproc.Words(text)
	if len(words) == 0 {
		return out
	}
	nWords := float64(len(words))

	letters, long, stop := 0, 0, 0
	types := make(map[string]struct{}, len(words))
	for _, w := range words {
		n := len([]rune(w))
		letters += n
		if n > 8 {
			long++
		}
		if _, ok := stopwords[w]; ok {
			stop++
		}
		types[w] = struct{}{}
	}

	sentences := textproc.Sentences(text)
	lengths := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		lengths = append(lengths, float64(len(strings.Fields(s))))
	}
	mean, sd := meanStd(lengths)

	runes, punct, commas, digits, upper := 0, 0, 0, 0, 0
	for _, r := range text {
		runes++
		switch {
		case r == ',':
			commas++
			punct++
		case unicode.IsPunct(r):
			punct++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsUpper(r):
			upper++
		}
	}
	nRunes := math.Max(1, float64(runes))

	out[0] = float64(letters) / nWords
	out[1] = mean
	out[2] = sd
	out[3] = float64(len(types)) / nWords
	out[4] = float64(punct) / nWords
	out[5] = float64(commas) / nWords
	out[6] = float64(stop) / nWords
	out[7] = float64(long) / nWords
	out[8] = float64(digits) / nRunes
	out[9] = float64(upper) / nRunes
	return out
}

func meanStd(values []float64) (mean, sd float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) == 1 {
		return mean, 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
