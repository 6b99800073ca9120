// internal/workers/pricing/predict-premium/service.go
package predictpremium

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"premium-workers/internal/common/database"
	"premium-workers/internal/common/errors"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/metrics"
	"premium-workers/internal/common/observability"
	"premium-workers/internal/premium"

	"github.com/google/uuid"
)

const selectApplicant = `
	SELECT age, number_of_dependants, income_lakhs, genetical_risk,
	       insurance_plan, bmi_category, smoking_status, employment_status,
	       region, medical_history, gender, marital_status
	FROM applicants
	WHERE id = $1`

type Service struct {
	config    *Config
	predictor Predictor
	db        *sql.DB
	cache     *database.RedisClient
	audit     premium.AuditSink
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config:    config,
		predictor: deps.Predictor,
		db:        deps.DB,
		cache:     deps.Cache,
		audit:     deps.Audit,
		obs:       deps.Observability,
		logger:    log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := GetInputSchema().Validate(input)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error())
	}

	raw := input.Applicant
	if raw == nil {
		raw, err = s.loadApplicant(ctx, input.ApplicantID)
		if err != nil {
			return nil, err
		}
	}
	rec := premium.Validate(raw)
	policy := s.predictor.Policy()

	key, err := cacheKey(policy.Version, rec)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if entry, ok := s.cached(ctx, key); ok {
		metrics.QuoteCacheHits.Inc()
		s.auditCacheHit(ctx, rec, entry)
		s.recordQuote(ctx, entry.Output.Band, "cache")
		return entry.Output, nil
	}

	pred, err := s.predictor.PredictRecord(ctx, rec)
	if err != nil {
		return nil, toStandardError(err)
	}

	out := &Output{
		PredictionID:     pred.ID,
		Premium:          pred.Premium,
		FormattedPremium: premium.FormatPremium(pred.Premium, s.config.CurrencySymbol),
		Band:             string(pred.Band),
		PolicyVersion:    pred.PolicyVersion,
		RiskScore:        pred.RiskIndex,
	}
	s.store(ctx, key, &cachedQuote{
		Output:     out,
		Features:   vectorMap(pred.Features),
		ModelInput: vectorMap(pred.ModelInput),
	})
	s.recordQuote(ctx, out.Band, "model")

	s.logger.Info("premium quoted", map[string]interface{}{
		"applicantId":  input.ApplicantID,
		"predictionId": out.PredictionID,
		"band":         out.Band,
		"premium":      out.FormattedPremium,
	})
	return out, nil
}

func (s *Service) loadApplicant(ctx context.Context, applicantID string) (map[string]interface{}, error) {
	if s.db == nil {
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("applicant store not configured"))
	}

	var (
		age, dependants, geneticRisk                                int
		income                                                      float64
		plan, bmi, smoking, employment, region, history, gender, ms string
	)
	err := s.db.QueryRowContext(ctx, selectApplicant, applicantID).Scan(
		&age, &dependants, &income, &geneticRisk,
		&plan, &bmi, &smoking, &employment,
		&region, &history, &gender, &ms,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewApplicantNotFoundError(applicantID)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return nil, errors.NewQueryTimeoutError("select_applicant")
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select_applicant", err)
	}

	return map[string]interface{}{
		premium.FieldAge:                age,
		premium.FieldNumberOfDependants: dependants,
		premium.FieldIncomeLakhs:        income,
		premium.FieldGeneticalRisk:      geneticRisk,
		premium.FieldInsurancePlan:      plan,
		premium.FieldBMICategory:        bmi,
		premium.FieldSmokingStatus:      smoking,
		premium.FieldEmploymentStatus:   employment,
		premium.FieldRegion:             region,
		premium.FieldMedicalHistory:     history,
		premium.FieldGender:             gender,
		premium.FieldMaritalStatus:      ms,
	}, nil
}

func (s *Service) cached(ctx context.Context, key string) (*cachedQuote, bool) {
	if s.cache == nil || s.config.CacheTTL == 0 {
		return nil, false
	}
	var entry cachedQuote
	if err := s.cache.GetJSON(ctx, key, &entry); err != nil {
		if !stderrors.Is(err, database.ErrCacheMiss) {
			s.logger.Warn("quote cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}
	if entry.Output == nil {
		return nil, false
	}
	entry.Output.Cached = true
	return &entry, true
}

func (s *Service) store(ctx context.Context, key string, entry *cachedQuote) {
	if s.cache == nil || s.config.CacheTTL == 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, entry, s.config.CacheTTL); err != nil {
		s.logger.Warn("quote cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// auditCacheHit records a quote served from the cache. It gets its own id so
// the audit trail holds one row per quote served.
func (s *Service) auditCacheHit(ctx context.Context, rec premium.ApplicantRecord, entry *cachedQuote) {
	if s.audit == nil {
		return
	}
	out := entry.Output
	err := s.audit.Record(ctx, premium.AuditRecord{
		ID:            uuid.New().String(),
		Band:          premium.Band(out.Band),
		PolicyVersion: out.PolicyVersion,
		Applicant:     rec,
		Features:      entry.Features,
		ModelInput:    entry.ModelInput,
		Premium:       out.Premium,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		metrics.AuditWriteFailures.WithLabelValues(TaskType).Inc()
		s.logger.Warn("audit write failed for cached quote", map[string]interface{}{
			"predictionId": out.PredictionID,
			"error":        err.Error(),
		})
	}
}

func vectorMap(v premium.FeatureVector) map[string]float64 {
	if v.Schema() == nil {
		return nil
	}
	return v.Map()
}

func (s *Service) recordQuote(ctx context.Context, band, source string) {
	if s.obs != nil {
		s.obs.RecordQuote(ctx, band, source)
	}
}

// cacheKey is stable for a validated record under one encoding policy.
func cacheKey(policyVersion string, rec premium.ApplicantRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("quote:%s:%s", policyVersion, hex.EncodeToString(sum[:16])), nil
}

func toStandardError(err error) *errors.StandardError {
	switch {
	case stderrors.Is(err, premium.ErrSchemaMismatch):
		return errors.NewSchemaMismatchError(err.Error())
	case stderrors.Is(err, premium.ErrArtifactLoadFailed):
		return errors.NewArtifactLoadFailedError(err)
	case stderrors.Is(err, premium.ErrPredictionInvalid):
		return errors.NewPredictionInvalidError(err.Error())
	default:
		return errors.NewPredictionFailedError(err)
	}
}
