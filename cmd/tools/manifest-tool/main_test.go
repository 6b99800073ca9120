package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premium-workers/internal/artifacts"
	"premium-workers/internal/premium"
)

// copyManifest writes the shipped manifest into a temp dir with artifact paths
// made absolute, so the copy can be edited freely.
func copyManifest(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../../configs/artifact-manifest.json")
	require.NoError(t, err)

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	body := strings.ReplaceAll(string(data), `"../artifacts/`, `"`+filepath.ToSlash(root)+`/artifacts/`)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	path := copyManifest(t)
	var out bytes.Buffer

	require.NoError(t, run([]string{"validate", "-path", path, "-load"}, &out))
	assert.Contains(t, out.String(), "Manifest validation passed.")
}

func TestValidate_BrokenArtifactPath(t *testing.T) {
	path := copyManifest(t)
	require.NoError(t, setModel(path, premium.BandAdult, artifacts.ModelXGBoost, "/does/not/exist.json"))

	var out bytes.Buffer
	require.NoError(t, run([]string{"validate", "-path", path}, &out), "paths are only checked with -load")

	err := run([]string{"validate", "-path", path, "-load"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTIFACT_LOAD_FAILED")
}

func TestShow(t *testing.T) {
	path := copyManifest(t)
	var out bytes.Buffer

	require.NoError(t, run([]string{"show", "-path", path}, &out))
	assert.Contains(t, out.String(), "Policy:       substring-sum/v3")
	assert.Contains(t, out.String(), "adult  model=xgboost")
	assert.Contains(t, out.String(), "young  model=linear")
}

func TestSetPolicy(t *testing.T) {
	path := copyManifest(t)
	var out bytes.Buffer

	require.NoError(t, run([]string{"set-policy", "-path", path, "-version", premium.PolicySegmentV2}, &out))

	m, err := artifacts.LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, premium.PolicySegmentV2, m.PolicyVersion)
	assert.NotEqual(t, "2024-06-01T00:00:00Z", m.LastUpdated)

	err = run([]string{"set-policy", "-path", path, "-version", "made-up/v9"}, &out)
	require.Error(t, err)
}

func TestSetModel_Remote(t *testing.T) {
	path := copyManifest(t)
	var out bytes.Buffer

	args := []string{"set-model", "-path", path, "-band", "young", "-type", "remote", "-location", "http://models.internal/young"}
	require.NoError(t, run(args, &out))

	m, err := artifacts.LoadManifest(path)
	require.NoError(t, err)
	entry, ok := m.Entry(premium.BandYoung)
	require.True(t, ok)
	assert.Equal(t, artifacts.ModelRemote, entry.Model.Type)
	assert.Equal(t, "http://models.internal/young", entry.Model.URL)
	assert.Empty(t, entry.Model.Path)
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"frobnicate"}, &out))
	assert.Error(t, run([]string{"set-model", "-band", "young"}, &out))
	assert.Error(t, run([]string{"set-model", "-path", copyManifest(t), "-band", "senior", "-type", "linear", "-location", "x.json"}, &out))
}
