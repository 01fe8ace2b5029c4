package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// RemoteModel calls a model server over HTTP.
type RemoteModel struct {
	name   string
	url    string
	client *http.Client
}

func NewRemoteModel(name, url string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteModel{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (m *RemoteModel) Predict(ctx context.Context, batch [][]float64) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: batch})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s model request: %w", m.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%s model returned %d: %s", m.name, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s model response: %w", m.name, err)
	}
	if len(out.Predictions) != len(batch) {
		return nil, fmt.Errorf("%s model returned %d predictions for %d rows", m.name, len(out.Predictions), len(batch))
	}
	return out.Predictions, nil
}
