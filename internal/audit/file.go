// internal/audit/file.go
package audit

import (
	"context"
	"fmt"

	"premium-workers/internal/premium"

	"go.uber.org/zap"
)

// FileSink appends one JSON line per prediction. The line carries the model
// input frame and the premium with two decimals.
type FileSink struct {
	log *zap.Logger
}

func NewFileSink(log *zap.Logger) *FileSink {
	return &FileSink{log: log}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Record(_ context.Context, rec premium.AuditRecord) error {
	s.log.Info("prediction",
		zap.String("predictionId", rec.ID),
		zap.String("band", string(rec.Band)),
		zap.String("policyVersion", rec.PolicyVersion),
		zap.Any("features", rec.ModelInput),
		zap.String("prediction", fmt.Sprintf("%.2f", rec.Premium)),
	)
	return nil
}

// Close flushes buffered entries.
func (s *FileSink) Close() error {
	_ = s.log.Sync()
	return nil
}
