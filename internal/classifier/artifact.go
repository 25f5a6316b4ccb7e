package classifier

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

const artifactFormat = 1

func init() {
	gob.Register(&CountVectorizer{})
	gob.Register(&TFIDFVectorizer{})
	gob.Register(&LexicalExtractor{})
	gob.Register(&MultinomialNB{})
	gob.Register(&SGDClassifier{})
}

// Artifact is the persisted, fully derived result of one training run.
type Artifact struct {
	Format        int
	Version       int64
	Kind          Kind
	TrainedAt     time.Time
	Samples       int
	Pipeline      *Pipeline
	RemoteModelID string
}

// pipelineState is the gob form of Pipeline; fitted is implied by presence.
type pipelineState struct {
	Kind     Kind
	Features FeatureExtractor
	Model    Model
}

func (p *Pipeline) GobEncode() ([]byte, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	return gobBytes(pipelineState{Kind: p.Kind, Features: p.Features, Model: p.Model})
}

func (p *Pipeline) GobDecode(b []byte) error {
	var st pipelineState
	if err := gobDecodeBytes(b, &st); err != nil {
		return err
	}
	p.Kind, p.Features, p.Model = st.Kind, st.Features, st.Model
	p.fitted = st.Features != nil && st.Model != nil
	return nil
}

// SaveArtifact writes the artifact zstd-compressed. The file is replaced atomically so
// a crash never leaves a truncated artifact behind.
func SaveArtifact(path string, a *Artifact) error {
	a.Format = artifactFormat
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArtifact(tmp, a); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

func writeArtifact(w io.Writer, a *Artifact) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(a); err != nil {
		zw.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads an artifact written by SaveArtifact. A missing file returns an
// error wrapping os.ErrNotExist.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var a Artifact
	if err := gob.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if a.Format != artifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %d", a.Format)
	}
	return &a, nil
}
