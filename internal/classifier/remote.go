package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"textorigin/internal/models"
)

// RemoteTransformer delegates fine-tuning and inference of the transformer variant to
// an external ML service.
type RemoteTransformer struct {
	baseURL    string
	httpClient *http.Client
	epochs     int
	batchSize  int
	steps      int
}

// TrainRequest is the fine-tuning request body.
type TrainRequest struct {
	Samples   []TrainSample `json:"samples"`
	Epochs    int           `json:"epochs"`
	BatchSize int           `json:"batch_size"`
	Steps     int           `json:"gradient_accumulation_steps,omitempty"`
}

// TrainSample is one labeled text in a TrainRequest.
type TrainSample struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}

// TrainResponse identifies the fine-tuned model.
type TrainResponse struct {
	ModelID string `json:"model_id"`
}

// ClassifyRequest represents a single text classification request
type ClassifyRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// ClassifyResponse carries class probabilities in label index order.
type ClassifyResponse struct {
	Probabilities    []float64 `json:"probabilities"`
	ProcessingTimeMs float64   `json:"processing_time_ms,omitempty"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Device      string `json:"device"`
	Message     string `json:"message"`
}

// NewRemoteTransformer creates a client for the ML service at baseURL.
func NewRemoteTransformer(baseURL string, epochs, batchSize, steps int, timeout time.Duration) *RemoteTransformer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteTransformer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		epochs:     epochs,
		batchSize:  batchSize,
		steps:      steps,
	}
}

func (r *RemoteTransformer) Kind() Kind { return KindTransformer }

// RequiresBothClasses is false: the pretrained head starts from a usable prior.
func (r *RemoteTransformer) RequiresBothClasses() bool { return false }

func (r *RemoteTransformer) Fit(ctx context.Context, samples []models.Sample) (*Artifact, error) {
	if err := CheckTrainable(samples, false); err != nil {
		return nil, err
	}
	body := TrainRequest{
		Samples:   make([]TrainSample, len(samples)),
		Epochs:    r.epochs,
		BatchSize: r.batchSize,
		Steps:     r.steps,
	}
	for i, s := range samples {
		body.Samples[i] = TrainSample{Text: s.Text, Label: s.Label.Index()}
	}

	var result TrainResponse
	if err := r.post(ctx, "/api/v1/train", body, &result); err != nil {
		return nil, err
	}
	if result.ModelID == "" {
		return nil, fmt.Errorf("ML service returned no model id")
	}
	return &Artifact{Kind: KindTransformer, Samples: len(samples), RemoteModelID: result.ModelID}, nil
}

func (r *RemoteTransformer) Bind(a *Artifact) (Predictor, error) {
	if a == nil || a.RemoteModelID == "" {
		return nil, ErrNotFitted
	}
	return &RemoteModel{client: r, modelID: a.RemoteModelID}, nil
}

// Classify returns [p(human), p(ai)] from the given remote model.
func (r *RemoteTransformer) Classify(ctx context.Context, modelID, text string) ([]float64, error) {
	var result ClassifyResponse
	if err := r.post(ctx, "/api/v1/classify/single", ClassifyRequest{Text: text, ModelID: modelID}, &result); err != nil {
		return nil, err
	}
	if len(result.Probabilities) != numClasses {
		return nil, fmt.Errorf("ML service returned %d probabilities, want %d", len(result.Probabilities), numClasses)
	}
	return result.Probabilities, nil
}

// HealthCheck checks if the ML service is healthy
func (r *RemoteTransformer) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var result HealthResponse
	if err := r.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RemoteTransformer) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req, out)
}

func (r *RemoteTransformer) do(req *http.Request, out any) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ML service returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// RemoteModel is a Predictor bound to one fine-tuned remote model.
type RemoteModel struct {
	client  *RemoteTransformer
	modelID string
}

func (m *RemoteModel) Predict(ctx context.Context, text string) (models.Prediction, error) {
	proba, err := m.client.Classify(ctx, m.modelID, text)
	if err != nil {
		return models.Prediction{}, err
	}
	return ToPrediction(proba[0]), nil
}
