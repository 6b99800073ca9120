package errors

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// ERROR CODES
// ============================================================================

type ErrorCode string

const (
	// Prediction
	ErrCodeSchemaMismatch       ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeArtifactLoadFailed   ErrorCode = "ARTIFACT_LOAD_FAILED"
	ErrCodePredictionInvalid    ErrorCode = "PREDICTION_INVALID"
	ErrCodePredictionFailed     ErrorCode = "PREDICTION_FAILED"
	ErrCodeApplicantNotFound    ErrorCode = "APPLICANT_NOT_FOUND"
	ErrCodeInvalidPolicyVersion ErrorCode = "INVALID_POLICY_VERSION"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexFailed                   ErrorCode = "INDEX_FAILED"

	// Notification
	ErrCodeQuoteNotificationFailed ErrorCode = "QUOTE_NOTIFICATION_FAILED"
	ErrCodeInvalidRecipient        ErrorCode = "INVALID_RECIPIENT"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// ============================================================================
// STANDARD ERROR
// ============================================================================

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ============================================================================
// BPMN ERROR
// ============================================================================

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewSchemaMismatchError(details string) *StandardError {
	return newError(ErrCodeSchemaMismatch, "Feature schema does not match model artifact", details, false)
}

func NewArtifactLoadFailedError(err error) *StandardError {
	return newError(ErrCodeArtifactLoadFailed, "Model artifact could not be loaded", err.Error(), false)
}

func NewPredictionInvalidError(details string) *StandardError {
	return newError(ErrCodePredictionInvalid, "Model returned an unusable prediction", details, false)
}

func NewPredictionFailedError(err error) *StandardError {
	return newError(ErrCodePredictionFailed, "Premium prediction failed", err.Error(), true)
}

func NewApplicantNotFoundError(applicantID string) *StandardError {
	return newError(ErrCodeApplicantNotFound, "Applicant not found", fmt.Sprintf("applicantId: %s", applicantID), false)
}

func NewInvalidPolicyVersionError(version string) *StandardError {
	return newError(ErrCodeInvalidPolicyVersion, "Unknown encoding policy version", fmt.Sprintf("policyVersion: %s", version), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

func NewIndexFailedError(indexName string, err error) *StandardError {
	return newError(ErrCodeIndexFailed, "Elasticsearch index request failed",
		fmt.Sprintf("indexName: %s, error: %s", indexName, err.Error()), true)
}

func NewQuoteNotificationFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeQuoteNotificationFailed, "Quote notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewInvalidRecipientError(details string) *StandardError {
	return newError(ErrCodeInvalidRecipient, "Quote recipient is invalid", details, false)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Job input validation failed", details, false)
}

// ============================================================================
// BPMN MAPPING
// ============================================================================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSchemaMismatch:                "SCHEMA_MISMATCH",
	ErrCodeArtifactLoadFailed:            "ARTIFACT_LOAD_FAILED",
	ErrCodePredictionInvalid:             "PREDICTION_INVALID",
	ErrCodePredictionFailed:              "PREDICTION_FAILED",
	ErrCodeApplicantNotFound:             "APPLICANT_NOT_FOUND",
	ErrCodeInvalidPolicyVersion:          "INVALID_POLICY_VERSION",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeIndexFailed:                   "INDEX_FAILED",
	ErrCodeQuoteNotificationFailed:       "QUOTE_NOTIFICATION_FAILED",
	ErrCodeInvalidRecipient:              "INVALID_RECIPIENT",
	ErrCodeInvalidInput:                  "INVALID_INPUT",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeIndexFailed,
		ErrCodeQuoteNotificationFailed,
		ErrCodePredictionFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		// artifact and schema problems do not heal on retry
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "ARTIFACT") ||
		strings.Contains(codeStr, "PREDICTION") || strings.Contains(codeStr, "POLICY"):
		return "MODEL"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "APPLICANT"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "RECIPIENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}
