// internal/premium/router.go
package premium

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prediction is the outcome of one routed prediction.
type Prediction struct {
	ID            string
	Band          Band
	PolicyVersion string
	Premium       float64
	// RiskIndex is the normalized medical risk in [0,1], reported alongside
	// the premium. Neither model consumes it.
	RiskIndex  float64
	Applicant  ApplicantRecord
	Features   FeatureVector
	ModelInput FeatureVector
	CreatedAt  time.Time
}

// AuditRecord is what every prediction leaves behind.
type AuditRecord struct {
	ID            string             `json:"id"`
	Band          Band               `json:"band"`
	PolicyVersion string             `json:"policyVersion"`
	Applicant     ApplicantRecord    `json:"applicant"`
	Features      map[string]float64 `json:"features"`
	ModelInput    map[string]float64 `json:"modelInput"`
	Premium       float64            `json:"premium"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// AuditSink stores audit records. Errors are reported but never fail a
// prediction.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}

type RouterOptions struct {
	Bundles     BundleSource
	Policy      Policy
	YoungMaxAge int
	Audit       AuditSink
	Logger      logger.Logger
	Tracer      trace.Tracer
}

// Router validates applicants, picks the band and runs the band's model.
type Router struct {
	bundles     BundleSource
	policy      Policy
	youngMaxAge int
	encoder     *Encoder
	audit       AuditSink
	logger      logger.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

func NewRouter(opts RouterOptions) (*Router, error) {
	if opts.Bundles == nil {
		return nil, fmt.Errorf("router: bundle source is required")
	}
	policy := opts.Policy
	if policy.Version == "" {
		policy = DefaultPolicy()
	}
	youngMaxAge := opts.YoungMaxAge
	if youngMaxAge == 0 {
		youngMaxAge = DefaultYoungMaxAge
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("premium-workers/premium")
	}

	return &Router{
		bundles:     opts.Bundles,
		policy:      policy,
		youngMaxAge: youngMaxAge,
		encoder:     NewEncoder(NewRiskScorer(policy)),
		audit:       opts.Audit,
		logger:      log.WithFields(map[string]interface{}{"component": "router", "policy": policy.Version}),
		tracer:      tracer,
		now:         time.Now,
	}, nil
}

func (r *Router) Policy() Policy { return r.policy }

// BandFor returns the band for age. The young band includes its upper bound.
func (r *Router) BandFor(age int) Band {
	if age <= r.youngMaxAge {
		return BandYoung
	}
	return BandAdult
}

// Predict validates a raw payload and prices it.
func (r *Router) Predict(ctx context.Context, raw map[string]interface{}) (*Prediction, error) {
	return r.PredictRecord(ctx, Validate(raw))
}

// Encode validates rec and returns the band and unscaled vector it maps to.
func (r *Router) Encode(rec ApplicantRecord) (Band, FeatureVector) {
	return r.encode(ValidateRecord(rec))
}

func (r *Router) encode(rec ApplicantRecord) (Band, FeatureVector) {
	band := r.BandFor(rec.Age)
	if band == BandYoung {
		return band, r.encoder.EncodeYoung(rec)
	}
	return band, r.encoder.EncodeAdult(rec)
}

// PredictRecord prices a typed record. The record is validated again, so
// partially filled records are accepted.
func (r *Router) PredictRecord(ctx context.Context, rec ApplicantRecord) (*Prediction, error) {
	start := r.now()
	rec = ValidateRecord(rec)
	band, features := r.encode(rec)

	ctx, span := r.tracer.Start(ctx, "premium.predict", trace.WithAttributes(
		attribute.String("premium.band", string(band)),
		attribute.String("premium.policy", r.policy.Version),
	))
	defer span.End()

	pred, err := r.run(ctx, rec, band, features)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.PredictionsFailed.WithLabelValues(string(band), errorCode(err)).Inc()
		r.logger.Error("prediction failed", map[string]interface{}{
			"band":  band,
			"error": err.Error(),
		})
		return nil, err
	}

	metrics.PredictionsTotal.WithLabelValues(string(band)).Inc()
	metrics.PredictionDuration.WithLabelValues(string(band)).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Float64("premium.value", pred.Premium))

	r.logger.Info("prediction", map[string]interface{}{
		"predictionId": pred.ID,
		"band":         band,
		"features":     pred.ModelInput.String(),
		"prediction":   fmt.Sprintf("%.2f", pred.Premium),
	})
	r.record(ctx, pred)

	return pred, nil
}

func (r *Router) run(ctx context.Context, rec ApplicantRecord, band Band, features FeatureVector) (*Prediction, error) {
	bundle, err := r.bundles.Bundle(ctx, band)
	if err != nil {
		return nil, err
	}
	if bundle == nil || bundle.Model == nil {
		return nil, fmt.Errorf("%w: no model loaded for %s band", ErrSchemaMismatch, band)
	}
	if len(bundle.Features) > 0 {
		if err := features.Schema().Matches(bundle.Features); err != nil {
			return nil, err
		}
	}

	scaled, err := Scale(features, bundle.Scaler)
	if err != nil {
		return nil, err
	}

	out, err := bundle.Model.Predict([][]float64{scaled.Row()})
	if err != nil {
		if errors.Is(err, ErrSchemaMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s model: %v", ErrPredictionInvalid, band, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: %s model returned %d values for one row", ErrPredictionInvalid, band, len(out))
	}
	value := out[0]
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%w: %s model returned %v", ErrPredictionInvalid, band, value)
	}
	if value < 0 {
		r.logger.Warn("negative prediction clamped to zero", map[string]interface{}{
			"band":  band,
			"value": value,
		})
		value = 0
	}

	return &Prediction{
		ID:            uuid.New().String(),
		Band:          band,
		PolicyVersion: r.policy.Version,
		Premium:       r.policy.finalizePremium(value),
		RiskIndex:     NormalizedRisk(rec.MedicalHistory),
		Applicant:     rec,
		Features:      features,
		ModelInput:    scaled,
		CreatedAt:     r.now().UTC(),
	}, nil
}

func (r *Router) record(ctx context.Context, pred *Prediction) {
	if r.audit == nil {
		return
	}
	err := r.audit.Record(ctx, AuditRecord{
		ID:            pred.ID,
		Band:          pred.Band,
		PolicyVersion: pred.PolicyVersion,
		Applicant:     pred.Applicant,
		Features:      pred.Features.Map(),
		ModelInput:    pred.ModelInput.Map(),
		Premium:       pred.Premium,
		CreatedAt:     pred.CreatedAt,
	})
	if err != nil {
		metrics.AuditWriteFailures.WithLabelValues("router").Inc()
		r.logger.Warn("audit write failed", map[string]interface{}{
			"predictionId": pred.ID,
			"error":        err.Error(),
		})
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrSchemaMismatch):
		return ErrSchemaMismatch.Error()
	case errors.Is(err, ErrPredictionInvalid):
		return ErrPredictionInvalid.Error()
	case errors.Is(err, ErrArtifactLoadFailed):
		return ErrArtifactLoadFailed.Error()
	default:
		return "PREDICTION_FAILED"
	}
}
