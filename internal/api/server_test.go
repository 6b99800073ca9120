package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"premium-workers/internal/artifacts"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/premium"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedManifest = "../../configs/artifact-manifest.json"

type stubPredictor struct {
	err error
}

func (s stubPredictor) Predict(_ context.Context, raw map[string]interface{}) (*premium.Prediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec := premium.Validate(raw)
	return &premium.Prediction{ID: "pred-1", Band: premium.BandYoung, PolicyVersion: "substring-sum/v3", Premium: 1050.255, Applicant: rec}, nil
}

func (s stubPredictor) Policy() premium.Policy { return premium.DefaultPolicy() }

func quotePayload() map[string]interface{} {
	return map[string]interface{}{
		"age":                  40,
		"number_of_dependants": 2,
		"income_lakhs":         30,
		"genetical_risk":       1,
		"insurance_plan":       "Gold",
		"employment_status":    "Salaried",
		"gender":               "Female",
		"marital_status":       "Married",
		"bmi_category":         "Normal",
		"smoking_status":       "No Smoking",
		"region":               "Northeast",
		"medical_history":      "Diabetes",
	}
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	s, err := New(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postQuote(t *testing.T, srv *httptest.Server, body []byte) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/premium", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestServer_QuoteWithShippedArtifacts(t *testing.T) {
	reg, err := artifacts.Open(shippedManifest, artifacts.RegistryOptions{})
	require.NoError(t, err)
	router, err := premium.NewRouter(premium.RouterOptions{Bundles: reg})
	require.NoError(t, err)

	srv := newTestServer(t, Options{Predictor: router})

	body, _ := json.Marshal(quotePayload())
	resp, out := postQuote(t, srv, body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, 22700.0, out["premium"])
	assert.Equal(t, "₹22,700.00", out["formattedPremium"])
	assert.Equal(t, "adult", out["band"])
	assert.Equal(t, "substring-sum/v3", out["policyVersion"])
	assert.NotEmpty(t, out["predictionId"])
	assert.Nil(t, out["warnings"])
}

func TestServer_QuoteWarnsOutsideFormRanges(t *testing.T) {
	srv := newTestServer(t, Options{Predictor: stubPredictor{}, CurrencySymbol: "$"})

	payload := quotePayload()
	payload["age"] = 120
	payload["number_of_dependants"] = 9
	delete(payload, "region")
	body, _ := json.Marshal(payload)

	resp, out := postQuote(t, srv, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "$1,050.26", out["formattedPremium"])

	warnings, ok := out["warnings"].([]interface{})
	require.True(t, ok)
	joined := fmt.Sprint(warnings...)
	assert.Contains(t, joined, "age")
	assert.Contains(t, joined, "number_of_dependants")
	assert.Contains(t, joined, "region")
}

func TestServer_QuoteRejectsNonObjectBody(t *testing.T) {
	srv := newTestServer(t, Options{Predictor: stubPredictor{}})

	for _, body := range []string{"", "[1,2]", "not json"} {
		resp, out := postQuote(t, srv, []byte(body))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "request body must be a JSON object", out["error"])
	}
}

func TestServer_QuoteBodyLimit(t *testing.T) {
	srv := newTestServer(t, Options{Predictor: stubPredictor{}})

	payload := quotePayload()
	payload["note"] = strings.Repeat("x", 1024)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, out := postQuote(t, srv, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out["formattedPremium"])

	payload["note"] = strings.Repeat("x", maxBodyBytes+1)
	body, err = json.Marshal(payload)
	require.NoError(t, err)
	resp, out = postQuote(t, srv, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "request body must be a JSON object", out["error"])
}

func TestServer_QuoteHidesErrorDetails(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w: adult columns differ", premium.ErrSchemaMismatch), "SCHEMA_MISMATCH"},
		{fmt.Errorf("%w: open /models/adult.json", premium.ErrArtifactLoadFailed), "ARTIFACT_LOAD_FAILED"},
		{fmt.Errorf("%w: NaN", premium.ErrPredictionInvalid), "PREDICTION_INVALID"},
		{fmt.Errorf("dial tcp 10.0.0.5:9000: refused"), "PREDICTION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			srv := newTestServer(t, Options{Predictor: stubPredictor{err: tt.err}})
			body, _ := json.Marshal(quotePayload())

			resp, out := postQuote(t, srv, body)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "prediction unavailable", out["error"])
			assert.Equal(t, tt.code, out["code"])
		})
	}
}

func TestServer_HealthAndReady(t *testing.T) {
	healthy := true
	srv := newTestServer(t, Options{
		Predictor: stubPredictor{},
		ReadyChecks: map[string]Check{
			"artifacts": func(context.Context) error {
				if healthy {
					return nil
				}
				return fmt.Errorf("adult bundle not loaded")
			},
		},
	})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	var ready map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "substring-sum/v3", ready["policy"])

	healthy = false
	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	var unready map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&unready))
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"artifacts": "adult bundle not loaded"}, unready["failures"])
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, Options{Predictor: stubPredictor{}})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, buf.String(), "go_goroutines")
}

func TestServer_Options(t *testing.T) {
	srv := newTestServer(t, Options{Predictor: stubPredictor{}})

	resp, err := http.Get(srv.URL + "/v1/options")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got FormChoices
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got.MedicalHistories, 9)
	assert.Contains(t, got.InsurancePlans, premium.PlanGold)
	assert.Equal(t, Range{Min: 18, Max: 100}, got.Ranges["age"])
	assert.Equal(t, Range{Min: 0, Max: 6}, got.Ranges["number_of_dependants"])
}

func TestRangeWarnings(t *testing.T) {
	assert.Empty(t, RangeWarnings(quotePayload()))

	payload := quotePayload()
	payload["income_lakhs"] = 0.5
	payload["genetical_risk"] = 6
	warnings := RangeWarnings(payload)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "genetical_risk")
	assert.Contains(t, warnings[1], "income_lakhs")
}

func TestNew_RequiresPredictor(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
