package classifier

import (
	"fmt"
	"math"
)

const numClasses = 2

// Model is a binary probabilistic classifier over sparse features.
type Model interface {
	Fit(X []SparseVector, y []int, dim int) error
	// PredictProba returns one probability per class index.
	PredictProba(x SparseVector) []float64
}

// MultinomialNB is a multinomial Naive Bayes classifier with additive smoothing.
type MultinomialNB struct {
	Alpha          float64
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
}

func NewMultinomialNB(alpha float64) *MultinomialNB {
	if alpha <= 0 {
		alpha = 1
	}
	return &MultinomialNB{Alpha: alpha}
}

func (m *MultinomialNB) Fit(X []SparseVector, y []int, dim int) error {
	if len(X) != len(y) {
		return fmt.Errorf("naive bayes: %d rows but %d labels", len(X), len(y))
	}
	classCount := make([]float64, numClasses)
	featureCount := make([][]float64, numClasses)
	for c := range featureCount {
		featureCount[c] = make([]float64, dim)
	}
	for r, x := range X {
		c := y[r]
		if c < 0 || c >= numClasses {
			return fmt.Errorf("naive bayes: invalid class %d", c)
		}
		classCount[c]++
		for k, i := range x.Indices {
			featureCount[c][i] += x.Values[k]
		}
	}

	n := float64(len(X))
	m.ClassLogPrior = make([]float64, numClasses)
	m.FeatureLogProb = make([][]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		if classCount[c] == 0 {
			return fmt.Errorf("naive bayes: class %d has no samples", c)
		}
		m.ClassLogPrior[c] = math.Log(classCount[c] / n)

		total := 0.0
		for _, v := range featureCount[c] {
			total += v + m.Alpha
		}
		m.FeatureLogProb[c] = make([]float64, dim)
		for i, v := range featureCount[c] {
			m.FeatureLogProb[c][i] = math.Log((v + m.Alpha) / total)
		}
	}
	return nil
}

func (m *MultinomialNB) PredictProba(x SparseVector) []float64 {
	jll := make([]float64, numClasses)
	for c := range jll {
		jll[c] = m.ClassLogPrior[c] + x.Dot(m.FeatureLogProb[c])
	}
	return softmax(jll)
}

func softmax(logits []float64) []float64 {
	hi := math.Inf(-1)
	for _, v := range logits {
		if v > hi {
			hi = v
		}
	}
	sum := 0.0
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
