// internal/audit/multi.go
package audit

import (
	"context"
	"io"

	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/metrics"
	"premium-workers/internal/premium"
)

// Sink is an audit destination with a stable name for logs and metrics.
type Sink interface {
	premium.AuditSink
	Name() string
}

// Multi writes every record to all sinks. A failing sink does not stop the
// others. Failures are logged and counted per sink, never returned.
type Multi struct {
	sinks  []Sink
	logger logger.Logger
}

func NewMulti(log logger.Logger, sinks ...Sink) *Multi {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Multi{sinks: sinks, logger: log.WithFields(map[string]interface{}{"component": "audit"})}
}

func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Record(ctx context.Context, rec premium.AuditRecord) error {
	for _, s := range m.sinks {
		if err := s.Record(ctx, rec); err != nil {
			metrics.AuditWriteFailures.WithLabelValues(s.Name()).Inc()
			m.logger.Warn("audit sink failed", map[string]interface{}{
				"sink":         s.Name(),
				"predictionId": rec.ID,
				"error":        err.Error(),
			})
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		c, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
