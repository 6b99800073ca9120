// internal/audit/postgres.go
package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	"premium-workers/internal/common/errors"
	"premium-workers/internal/premium"

	"github.com/google/uuid"
)

const insertPrediction = `
	INSERT INTO premium_predictions
		(id, band, policy_version, applicant, features, model_input, premium, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// PostgresSink stores predictions in the premium_predictions table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Record(ctx context.Context, rec premium.AuditRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		id = uuid.New()
	}

	applicant, err := json.Marshal(rec.Applicant)
	if err != nil {
		return err
	}
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return err
	}
	modelInput, err := json.Marshal(rec.ModelInput)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, insertPrediction,
		id.String(),
		string(rec.Band),
		rec.PolicyVersion,
		applicant,
		features,
		modelInput,
		rec.Premium,
		rec.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
