// internal/workers/pricing/predict-premium/models.go
package predictpremium

import (
	"context"
	"database/sql"

	"premium-workers/internal/common/database"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/observability"
	"premium-workers/internal/premium"
)

// Input carries either a stored applicant id or the raw form fields. When
// both are present the inline applicant wins.
type Input struct {
	ApplicantID string                 `json:"applicantId,omitempty"`
	Applicant   map[string]interface{} `json:"applicant,omitempty"`
}

type Output struct {
	PredictionID     string  `json:"predictionId,omitempty"`
	Premium          float64 `json:"premium"`
	FormattedPremium string  `json:"formattedPremium"`
	Band             string  `json:"band"`
	PolicyVersion    string  `json:"policyVersion"`
	RiskScore        float64 `json:"riskScore"`
	Cached           bool    `json:"cached"`
}

// cachedQuote is the Redis entry for a quote. The vectors are kept so a cache
// hit can be audited like a model call.
type cachedQuote struct {
	Output     *Output            `json:"output"`
	Features   map[string]float64 `json:"features,omitempty"`
	ModelInput map[string]float64 `json:"modelInput,omitempty"`
}

// Predictor is the part of premium.Router the worker needs.
type Predictor interface {
	PredictRecord(ctx context.Context, rec premium.ApplicantRecord) (*premium.Prediction, error)
	Policy() premium.Policy
}

type ServiceDependencies struct {
	Predictor     Predictor
	DB            *sql.DB
	Cache         *database.RedisClient
	Audit         premium.AuditSink
	Observability *observability.Observability
	Logger        logger.Logger
}
