package classifier

import (
	"fmt"
	"math"
	"math/rand"
)

// SGDClassifier is logistic regression trained by plain stochastic gradient descent with
// L2 regularization. The sample order of every epoch comes from a seeded source, so
// refitting on the same data yields identical weights.
type SGDClassifier struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
	Weights      []float64
	Bias         float64
}

func NewSGDClassifier(epochs int, learningRate, l2 float64, seed int64) *SGDClassifier {
	if epochs <= 0 {
		epochs = 20
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}
	if l2 < 0 {
		l2 = 0
	}
	return &SGDClassifier{Epochs: epochs, LearningRate: learningRate, L2: l2, Seed: seed}
}

func (m *SGDClassifier) Fit(X []SparseVector, y []int, dim int) error {
	if len(X) != len(y) {
		return fmt.Errorf("sgd: %d rows but %d labels", len(X), len(y))
	}
	if len(X) == 0 {
		return fmt.Errorf("sgd: no training rows")
	}
	m.Weights = make([]float64, dim)
	m.Bias = 0

	rng := rand.New(rand.NewSource(m.Seed))
	for epoch := 0; epoch < m.Epochs; epoch++ {
		// inverse scaling keeps late epochs from oscillating
		lr := m.LearningRate / (1 + float64(epoch)*0.1)
		for _, r := range rng.Perm(len(X)) {
			x := X[r]
			target := float64(y[r])
			g := sigmoid(x.Dot(m.Weights)+m.Bias) - target
			for k, i := range x.Indices {
				m.Weights[i] -= lr * (g*x.Values[k] + m.L2*m.Weights[i])
			}
			m.Bias -= lr * g
		}
	}
	return nil
}

// PredictProba returns [p(human), p(ai)].
func (m *SGDClassifier) PredictProba(x SparseVector) []float64 {
	p := sigmoid(x.Dot(m.Weights) + m.Bias)
	return []float64{1 - p, p}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
