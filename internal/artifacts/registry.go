// internal/artifacts/registry.go
package artifacts

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/metrics"
	"premium-workers/internal/premium"
)

// Registry serves the model bundle for each band. Each bundle is loaded at
// most once; a failed load is remembered and returned on every later call.
type Registry struct {
	manifest      *Manifest
	logger        logger.Logger
	remoteTimeout time.Duration

	young *lazyBundle
	adult *lazyBundle
}

type lazyBundle struct {
	once   sync.Once
	bundle *premium.ModelBundle
	err    error
}

type RegistryOptions struct {
	// Policy is the encoding policy the service runs with. The manifest must
	// have been trained with the same one.
	Policy        premium.Policy
	RemoteTimeout time.Duration
	Logger        logger.Logger
}

// featured is implemented by every adapter in this package.
type featured interface {
	Features() []string
}

func NewRegistry(m *Manifest, opts RegistryOptions) (*Registry, error) {
	policy := opts.Policy
	if policy.Version == "" {
		policy = premium.DefaultPolicy()
	}
	if m.PolicyVersion != policy.Version {
		return nil, fmt.Errorf("%w: artifacts were trained with policy %q, service runs %q",
			premium.ErrSchemaMismatch, m.PolicyVersion, policy.Version)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	timeout := opts.RemoteTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Registry{
		manifest:      m,
		logger:        log.WithFields(map[string]interface{}{"component": "artifacts", "manifest": m.Version}),
		remoteTimeout: timeout,
		young:         &lazyBundle{},
		adult:         &lazyBundle{},
	}, nil
}

// Open loads the manifest at path and builds a Registry for it.
func Open(path string, opts RegistryOptions) (*Registry, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(m, opts)
}

func (r *Registry) Manifest() *Manifest { return r.manifest }

// Bundle implements premium.BundleSource.
func (r *Registry) Bundle(ctx context.Context, band premium.Band) (*premium.ModelBundle, error) {
	var lb *lazyBundle
	switch band {
	case premium.BandYoung:
		lb = r.young
	case premium.BandAdult:
		lb = r.adult
	default:
		return nil, fmt.Errorf("%w: unknown band %q", premium.ErrSchemaMismatch, band)
	}

	lb.once.Do(func() {
		start := time.Now()
		lb.bundle, lb.err = r.load(band)
		if lb.err != nil {
			metrics.ArtifactLoadFailures.WithLabelValues(string(band)).Inc()
			r.logger.Error("artifact load failed", map[string]interface{}{
				"band":  band,
				"error": lb.err.Error(),
			})
			return
		}
		r.logger.Info("artifacts loaded", map[string]interface{}{
			"band":     band,
			"duration": time.Since(start).String(),
		})
	})
	return lb.bundle, lb.err
}

// Load resolves both bands up front so a broken artifact fails startup
// instead of the first request.
func (r *Registry) Load(ctx context.Context) error {
	for _, band := range []premium.Band{premium.BandYoung, premium.BandAdult} {
		if _, err := r.Bundle(ctx, band); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) load(band premium.Band) (*premium.ModelBundle, error) {
	entry, ok := r.manifest.Entry(band)
	if !ok {
		return nil, fmt.Errorf("%w: manifest has no %s band", premium.ErrArtifactLoadFailed, band)
	}

	model, err := r.loadModel(entry.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %s model: %v", premium.ErrArtifactLoadFailed, band, err)
	}

	bundle := &premium.ModelBundle{
		Band:     band,
		Model:    model,
		Features: model.Features(),
	}

	if entry.Scaler != nil {
		data, err := os.ReadFile(r.manifest.resolve(entry.Scaler.Path))
		if err != nil {
			return nil, fmt.Errorf("%w: %s scaler: %v", premium.ErrArtifactLoadFailed, band, err)
		}
		cols, scaler, err := ParseScaler(entry.Scaler.Type, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s scaler: %v", premium.ErrArtifactLoadFailed, band, err)
		}
		schema := premium.SchemaFor(band)
		for _, c := range cols {
			if !schema.Has(c) {
				return nil, fmt.Errorf("%w: %s scaler column %q not in schema", premium.ErrSchemaMismatch, band, c)
			}
		}
		bundle.Scaler = premium.ScalerBundle{ColsToScale: cols, Scaler: scaler}
	}

	if len(bundle.Features) > 0 {
		if err := premium.SchemaFor(band).Matches(bundle.Features); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

type bandModel interface {
	premium.Model
	featured
}

func (r *Registry) loadModel(e ModelEntry) (bandModel, error) {
	if e.Type == ModelRemote {
		return NewRemoteModel(e.URL, e.Features, r.remoteTimeout), nil
	}

	data, err := os.ReadFile(r.manifest.resolve(e.Path))
	if err != nil {
		return nil, err
	}
	switch e.Type {
	case ModelLinear:
		return ParseLinearModel(data)
	case ModelXGBoost:
		return ParseXGBoostModel(data)
	default:
		return nil, fmt.Errorf("unknown model type %q", e.Type)
	}
}
