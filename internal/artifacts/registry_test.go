package artifacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"premium-workers/internal/common/logger"
	"premium-workers/internal/premium"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedManifest = "../../configs/artifact-manifest.json"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func linearFor(schema *premium.Schema, intercept float64) string {
	coef := map[string]float64{}
	for _, c := range schema.Columns() {
		coef[c] = 0
	}
	data, _ := json.Marshal(map[string]interface{}{
		"features":     schema.Columns(),
		"coefficients": coef,
		"intercept":    intercept,
	})
	return string(data)
}

func manifestJSON(policy, youngModel, adultModel string) string {
	return `{
  "version": "test",
  "policyVersion": "` + policy + `",
  "bands": {
    "young": {"model": {"type": "linear", "path": "` + youngModel + `"}},
    "adult": {"model": {"type": "linear", "path": "` + adultModel + `"}}
  }
}`
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "valid",
			data: manifestJSON(premium.PolicySubstringV3, "y.json", "a.json"),
		},
		{
			name:    "missing adult band",
			data:    `{"version": "1", "policyVersion": "substring-sum/v3", "bands": {"young": {"model": {"type": "linear", "path": "y.json"}}}}`,
			wantErr: premium.ErrArtifactLoadFailed,
		},
		{
			name: "remote without url",
			data: `{"version": "1", "policyVersion": "substring-sum/v3", "bands": {
				"young": {"model": {"type": "remote"}},
				"adult": {"model": {"type": "linear", "path": "a.json"}}}}`,
			wantErr: premium.ErrArtifactLoadFailed,
		},
		{
			name:    "unknown model type",
			data:    `{"version": "1", "policyVersion": "substring-sum/v3", "bands": {"young": {"model": {"type": "svm", "path": "y"}}, "adult": {"model": {"type": "linear", "path": "a"}}}}`,
			wantErr: premium.ErrArtifactLoadFailed,
		},
		{
			name:    "unknown policy",
			data:    manifestJSON("median/v9", "y.json", "a.json"),
			wantErr: premium.ErrSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			_, ok := m.Entry(premium.BandYoung)
			assert.True(t, ok)
		})
	}
}

func TestManifest_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := ParseManifest([]byte(manifestJSON(premium.PolicySubstringV3, "y.json", "a.json")))
	require.NoError(t, err)

	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.Version)
	assert.NotEmpty(t, loaded.LastUpdated)
	assert.Equal(t, filepath.Join(dir, "y.json"), loaded.resolve("y.json"))
}

func TestRegistry_ShippedArtifacts(t *testing.T) {
	reg, err := Open(shippedManifest, RegistryOptions{Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	require.NoError(t, reg.Load(context.Background()))

	young, err := reg.Bundle(context.Background(), premium.BandYoung)
	require.NoError(t, err)
	assert.Equal(t, premium.YoungSchema.Columns(), young.Features)
	assert.Len(t, young.Scaler.ColsToScale, 4)

	adult, err := reg.Bundle(context.Background(), premium.BandAdult)
	require.NoError(t, err)
	assert.Equal(t, premium.AdultSchema.Columns(), adult.Features)

	again, err := reg.Bundle(context.Background(), premium.BandAdult)
	require.NoError(t, err)
	assert.Same(t, adult, again)
}

func TestRegistry_PricesThroughRouter(t *testing.T) {
	reg, err := Open(shippedManifest, RegistryOptions{})
	require.NoError(t, err)

	router, err := premium.NewRouter(premium.RouterOptions{Bundles: reg})
	require.NoError(t, err)

	pred, err := router.Predict(context.Background(), map[string]interface{}{
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
	})
	require.NoError(t, err)
	assert.Equal(t, premium.BandAdult, pred.Band)
	// base 15000, gold +8000, under mean age -1500, score 6 +1200
	assert.Equal(t, 22700.0, pred.Premium)

	young, err := router.Predict(context.Background(), map[string]interface{}{
		"age":             22,
		"insurance_plan":  "Bronze",
		"medical_history": "No Disease",
	})
	require.NoError(t, err)
	assert.Equal(t, premium.BandYoung, young.Band)
	assert.Greater(t, young.Premium, 0.0)
}

func TestRegistry_PolicyMismatch(t *testing.T) {
	m, err := ParseManifest([]byte(manifestJSON(premium.PolicySegmentV2, "y.json", "a.json")))
	require.NoError(t, err)

	_, err = NewRegistry(m, RegistryOptions{Policy: premium.DefaultPolicy()})
	assert.ErrorIs(t, err, premium.ErrSchemaMismatch)

	policy, err := premium.LookupPolicy(premium.PolicySegmentV2)
	require.NoError(t, err)
	_, err = NewRegistry(m, RegistryOptions{Policy: policy})
	assert.NoError(t, err)
}

func TestRegistry_LoadFailureIsRemembered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adult.json", linearFor(premium.AdultSchema, 1000))
	path := writeFile(t, dir, "manifest.json", manifestJSON(premium.PolicySubstringV3, "young.json", "adult.json"))

	reg, err := Open(path, RegistryOptions{})
	require.NoError(t, err)

	_, err = reg.Bundle(context.Background(), premium.BandYoung)
	require.ErrorIs(t, err, premium.ErrArtifactLoadFailed)

	// the file appearing later does not heal the registry
	writeFile(t, dir, "young.json", linearFor(premium.YoungSchema, 1000))
	_, err = reg.Bundle(context.Background(), premium.BandYoung)
	assert.ErrorIs(t, err, premium.ErrArtifactLoadFailed)

	_, err = reg.Bundle(context.Background(), premium.BandAdult)
	assert.NoError(t, err)

	assert.ErrorIs(t, reg.Load(context.Background()), premium.ErrArtifactLoadFailed)
}

func TestRegistry_SchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	// young model trained on the adult layout
	writeFile(t, dir, "young.json", linearFor(premium.AdultSchema, 1000))
	writeFile(t, dir, "adult.json", linearFor(premium.AdultSchema, 1000))
	path := writeFile(t, dir, "manifest.json", manifestJSON(premium.PolicySubstringV3, "young.json", "adult.json"))

	reg, err := Open(path, RegistryOptions{})
	require.NoError(t, err)

	_, err = reg.Bundle(context.Background(), premium.BandYoung)
	assert.ErrorIs(t, err, premium.ErrSchemaMismatch)
}

func TestRegistry_ScalerColumnOutsideSchema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "young.json", linearFor(premium.YoungSchema, 1000))
	writeFile(t, dir, "adult.json", linearFor(premium.AdultSchema, 1000))
	writeFile(t, dir, "scaler.json", `{"cols_to_scale": ["score"], "min_": [0], "scale_": [1]}`)
	path := writeFile(t, dir, "manifest.json", `{
  "version": "test",
  "policyVersion": "substring-sum/v3",
  "bands": {
    "young": {"model": {"type": "linear", "path": "young.json"}, "scaler": {"type": "minmax", "path": "scaler.json"}},
    "adult": {"model": {"type": "linear", "path": "adult.json"}}
  }
}`)

	reg, err := Open(path, RegistryOptions{})
	require.NoError(t, err)

	_, err = reg.Bundle(context.Background(), premium.BandYoung)
	assert.ErrorIs(t, err, premium.ErrSchemaMismatch)
}

func TestRegistry_RemoteModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Rows) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(remoteResponse{Predictions: []float64{float64(len(req.Rows[0])) * 100}})
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, dir, "young.json", linearFor(premium.YoungSchema, 1000))
	path := writeFile(t, dir, "manifest.json", `{
  "version": "test",
  "policyVersion": "substring-sum/v3",
  "bands": {
    "young": {"model": {"type": "linear", "path": "young.json"}},
    "adult": {"model": {"type": "remote", "url": "`+srv.URL+`"}}
  }
}`)

	reg, err := Open(path, RegistryOptions{})
	require.NoError(t, err)

	bundle, err := reg.Bundle(context.Background(), premium.BandAdult)
	require.NoError(t, err)

	out, err := bundle.Model.Predict([][]float64{make([]float64, premium.AdultSchema.Len())})
	require.NoError(t, err)
	assert.Equal(t, []float64{1300}, out)
}

func TestRemoteModel_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRemoteModel(srv.URL, nil, 0).Predict([][]float64{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRegistry_UnknownBand(t *testing.T) {
	m, err := ParseManifest([]byte(manifestJSON(premium.PolicySubstringV3, "y.json", "a.json")))
	require.NoError(t, err)
	reg, err := NewRegistry(m, RegistryOptions{})
	require.NoError(t, err)

	_, err = reg.Bundle(context.Background(), premium.Band("senior"))
	assert.ErrorIs(t, err, premium.ErrSchemaMismatch)
}
