package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textorigin/internal/config"
)

func loadConfig(t *testing.T, dir, extra string) *config.Config {
	t.Helper()
	path := filepath.Join(dir, "config.yml")
	body := fmt.Sprintf(`
storage:
  driver: json
  path: %s
model:
  kind: nb
  artifact_path: %s
%s`, filepath.Join(dir, "corpus.json"), filepath.Join(dir, "model.bin"), extra)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	audit := logrus.New()
	audit.SetOutput(io.Discard)
	a, err := New(context.Background(), cfg, zap.NewNop(), audit)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestSeedAndInitialTraining(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfig(t, dir, "")
	a := newApp(t, cfg)
	ctx := context.Background()

	require.NoError(t, a.Seed(ctx))
	n, err := a.Repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// seeding a non-empty corpus is a no-op
	require.NoError(t, a.Seed(ctx))
	n, err = a.Repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	require.NoError(t, a.InitModel(ctx))
	st := a.Detector.Status()
	assert.True(t, st.Loaded)
	assert.EqualValues(t, 1, st.Version)
	assert.FileExists(t, cfg.Model.ArtifactPath)
	assert.Contains(t, a.statusText(ctx), "Modell v1")
}

func TestInitModelRestoresArtifact(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := newApp(t, loadConfig(t, dir, ""))
	require.NoError(t, first.Seed(ctx))
	require.NoError(t, first.InitModel(ctx))
	first.Close()

	second := newApp(t, loadConfig(t, dir, ""))
	require.NoError(t, second.InitModel(ctx))
	st := second.Detector.Status()
	assert.True(t, st.Loaded)
	assert.EqualValues(t, 1, st.Version)
}

func TestInitModelWithoutData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a := newApp(t, loadConfig(t, dir, ""))
	require.NoError(t, a.InitModel(ctx))
	assert.False(t, a.Detector.Status().Loaded)
	assert.Contains(t, a.statusText(ctx), "Kein Modell")

	strict := newApp(t, loadConfig(t, t.TempDir(), "training:\n  require_initial_model: true\n"))
	assert.Error(t, strict.InitModel(ctx))
}

func TestNewTrainerKinds(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{"nb", "sgd", "lexical"} {
		cfg := loadConfig(t, dir, "")
		cfg.Model.Kind = kind
		tr, err := NewTrainer(cfg)
		require.NoError(t, err, kind)
		assert.EqualValues(t, kind, tr.Kind())
	}

	cfg := loadConfig(t, dir, "")
	cfg.Model.Kind = "transformer"
	cfg.Model.Transformer.URL = "http://localhost:8000"
	tr, err := NewTrainer(cfg)
	require.NoError(t, err)
	assert.False(t, tr.RequiresBothClasses())
}
