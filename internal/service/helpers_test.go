package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textorigin/internal/classifier"
	"textorigin/internal/models"
	"textorigin/internal/repository"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, text)
	return nil
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func newRepo(t *testing.T) repository.CorpusRepository {
	t.Helper()
	repo, err := repository.NewJSONCorpus(filepath.Join(t.TempDir(), "corpus.json"))
	require.NoError(t, err)
	return repo
}

func seed(t *testing.T, repo repository.CorpusRepository, samples ...models.Sample) {
	t.Helper()
	for i := range samples {
		require.NoError(t, repo.Add(context.Background(), &samples[i]))
	}
}

func newDetector(t *testing.T, repo repository.CorpusRepository) (*DetectorService, *recordingNotifier) {
	t.Helper()
	trainer, err := classifier.NewLocalTrainer(classifier.KindNaiveBayes, classifier.DefaultOptions())
	require.NoError(t, err)
	n := &recordingNotifier{}
	cfg := DetectorConfig{ArtifactPath: filepath.Join(t.TempDir(), "model.bin")}
	return NewDetectorService(repo, trainer, cfg, nil, n, zap.NewNop()), n
}
