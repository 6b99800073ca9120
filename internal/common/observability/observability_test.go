package observability

import (
	"context"
	"testing"
	"time"

	"premium-workers/internal/common/config"
	"premium-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordsWithoutPanicking(t *testing.T) {
	obs := New("premium-test", logger.NewTestLogger(t))
	defer obs.Shutdown()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "predict-premium", "completed")
		obs.RecordJobDuration(ctx, "predict-premium", 15*time.Millisecond, "completed")
		obs.RecordQuote(ctx, "young", "model")
	})
}

func TestEnableTracing_Disabled(t *testing.T) {
	obs := &Observability{}
	require.NoError(t, obs.EnableTracing(config.TracingConfig{Enabled: false}, "dev"))
	assert.Nil(t, obs.tracerProvider)
}

func TestEnableTracing_InstallsProvider(t *testing.T) {
	obs := &Observability{}
	err := obs.EnableTracing(config.TracingConfig{
		Enabled:     true,
		Endpoint:    "http://127.0.0.1:14268/api/traces",
		ServiceName: "premium-test",
		SampleRatio: 1,
	}, "dev")
	require.NoError(t, err)
	assert.NotNil(t, obs.tracerProvider)

	obs.Shutdown()
}
