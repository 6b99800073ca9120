// internal/workers/pricing/predict-premium/handler.go
package predictpremium

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"premium-workers/internal/common/camunda"
	"premium-workers/internal/common/config"
	"premium-workers/internal/common/errors"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const TaskType = "predict-premium"

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      *Service
	errorHandler *errors.ErrorHandler
	worker       *camunda.CamundaWorker
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Dependencies ServiceDependencies
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Dependencies.Predictor == nil {
		return nil, fmt.Errorf("%s: predictor is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	deps := opts.Dependencies
	deps.Logger = log

	return &Handler{
		config:       workerConfig,
		logger:       log,
		service:      NewService(deps, workerConfig),
		errorHandler: errors.NewErrorHandler(log).WithMaxRetries(workerConfig.MaxRetries),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return h.fail(ctx, client, job, start, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
	}

	output, err := h.service.Execute(ctx, &input)
	if err != nil {
		return h.fail(ctx, client, job, start, err)
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		return err
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if h.service.obs != nil {
		h.service.obs.RecordJobProcessed(ctx, TaskType, "completed")
		h.service.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) error {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	if h.service.obs != nil {
		h.service.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.service.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	}
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
	return nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":  job.GetKey(),
		"band":    output.Band,
		"premium": output.FormattedPremium,
		"cached":  output.Cached,
	})
	return nil
}

// Register opens the job worker on client. It is a no-op when the worker is
// disabled.
func (h *Handler) Register(client zbc.Client) {
	if !h.config.Enabled {
		h.logger.Info("worker is disabled, skipping registration", nil)
		return
	}
	h.worker = camunda.NewWorker(client, camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}, h, h.logger)

	h.logger.Info("worker registered", map[string]interface{}{
		"maxJobsActive": h.config.MaxJobsActive,
		"timeout":       h.config.Timeout.String(),
	})
}

func (h *Handler) Close() {
	if h.worker != nil {
		h.worker.Stop()
		h.worker = nil
	}
}
