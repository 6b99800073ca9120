// internal/artifacts/manifest.go
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"premium-workers/internal/common/validation"
	"premium-workers/internal/premium"
)

// Model adapter kinds.
const (
	ModelLinear  = "linear"
	ModelXGBoost = "xgboost"
	ModelRemote  = "remote"
)

// Scaler adapter kinds.
const (
	ScalerMinMax   = "minmax"
	ScalerStandard = "standard"
)

// Manifest lists the fitted artifacts for each band and the encoding policy
// they were trained with.
type Manifest struct {
	Version       string               `json:"version"`
	PolicyVersion string               `json:"policyVersion"`
	LastUpdated   string               `json:"lastUpdated"`
	Bands         map[string]BandEntry `json:"bands"`

	// dir is where relative artifact paths are resolved from.
	dir string
}

type BandEntry struct {
	Model       ModelEntry   `json:"model"`
	Scaler      *ScalerEntry `json:"scaler,omitempty"`
	Description string       `json:"description,omitempty"`
}

type ModelEntry struct {
	Type     string   `json:"type"`
	Path     string   `json:"path,omitempty"`
	URL      string   `json:"url,omitempty"`
	Features []string `json:"features,omitempty"`
}

type ScalerEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read manifest: %v", premium.ErrArtifactLoadFailed, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest validates data against the manifest schema and decodes it.
// Relative paths resolve against the working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	res, err := manifestSchema.ValidateJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", premium.ErrArtifactLoadFailed, err)
	}
	if !res.Valid {
		return nil, fmt.Errorf("%w: manifest invalid: %s", premium.ErrArtifactLoadFailed, res.Error())
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", premium.ErrArtifactLoadFailed, err)
	}
	if _, err := premium.LookupPolicy(m.PolicyVersion); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", premium.ErrSchemaMismatch, err)
	}
	return &m, nil
}

// Save writes the manifest as indented JSON and stamps LastUpdated.
func (m *Manifest) Save(path string) error {
	m.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Entry returns the artifacts for band.
func (m *Manifest) Entry(band premium.Band) (BandEntry, bool) {
	e, ok := m.Bands[string(band)]
	return e, ok
}

func (m *Manifest) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}

var manifestSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["version", "policyVersion", "bands"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "policyVersion": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "bands": {
      "type": "object",
      "required": ["young", "adult"],
      "additionalProperties": false,
      "properties": {
        "young": {"$ref": "#/definitions/band"},
        "adult": {"$ref": "#/definitions/band"}
      }
    }
  },
  "definitions": {
    "band": {
      "type": "object",
      "required": ["model"],
      "properties": {
        "description": {"type": "string"},
        "model": {
          "type": "object",
          "required": ["type"],
          "properties": {
            "type": {"enum": ["linear", "xgboost", "remote"]},
            "path": {"type": "string"},
            "url": {"type": "string"},
            "features": {"type": "array", "items": {"type": "string"}}
          },
          "oneOf": [
            {"properties": {"type": {"enum": ["linear", "xgboost"]}}, "required": ["path"]},
            {"properties": {"type": {"const": "remote"}}, "required": ["url"]}
          ]
        },
        "scaler": {
          "type": "object",
          "required": ["type", "path"],
          "properties": {
            "type": {"enum": ["minmax", "standard"]},
            "path": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`)
