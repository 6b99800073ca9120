// internal/artifacts/remote.go
package artifacts

import (
	"context"
	"fmt"
	"time"

	commonhttp "premium-workers/internal/common/http"
)

// RemoteModel delegates prediction to a model server speaking
//
//	POST {"features": [...], "rows": [[...]]} -> {"predictions": [...]}
type RemoteModel struct {
	url      string
	features []string
	client   *commonhttp.Client
}

type remoteRequest struct {
	Features []string    `json:"features"`
	Rows     [][]float64 `json:"rows"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

func NewRemoteModel(url string, features []string, timeout time.Duration) *RemoteModel {
	return &RemoteModel{
		url:      url,
		features: features,
		client:   commonhttp.NewClient(timeout),
	}
}

func (m *RemoteModel) Features() []string {
	return append([]string(nil), m.features...)
}

// Predict satisfies premium.Model, which carries no context; the client
// timeout bounds the call.
func (m *RemoteModel) Predict(rows [][]float64) ([]float64, error) {
	return m.PredictContext(context.Background(), rows)
}

func (m *RemoteModel) PredictContext(ctx context.Context, rows [][]float64) ([]float64, error) {
	var resp remoteResponse
	if err := m.client.PostJSON(ctx, m.url, remoteRequest{Features: m.features, Rows: rows}, &resp); err != nil {
		return nil, fmt.Errorf("remote model %s: %w", m.url, err)
	}
	if len(resp.Predictions) != len(rows) {
		return nil, fmt.Errorf("remote model %s returned %d predictions for %d rows", m.url, len(resp.Predictions), len(rows))
	}
	return resp.Predictions, nil
}
