// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"premium-workers/internal/common/logger"
	"premium-workers/internal/premium"

	"github.com/flamego/flamego"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 << 10

// Predictor is the part of premium.Router the API needs.
type Predictor interface {
	Predict(ctx context.Context, raw map[string]interface{}) (*premium.Prediction, error)
	Policy() premium.Policy
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Options struct {
	Predictor      Predictor
	CurrencySymbol string
	// ReadyChecks run on /ready; any failure makes the service unready.
	ReadyChecks map[string]Check
	Logger      logger.Logger
}

type Server struct {
	predictor Predictor
	symbol    string
	checks    map[string]Check
	logger    logger.Logger
	flame     *flamego.Flame
	http      *http.Server
}

type QuoteResponse struct {
	PredictionID     string   `json:"predictionId"`
	Premium          float64  `json:"premium"`
	FormattedPremium string   `json:"formattedPremium"`
	Band             string   `json:"band"`
	PolicyVersion    string   `json:"policyVersion"`
	RiskScore        float64  `json:"riskScore"`
	Warnings         []string `json:"warnings,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func New(opts Options) (*Server, error) {
	if opts.Predictor == nil {
		return nil, fmt.Errorf("api: predictor is required")
	}
	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = premium.DefaultCurrencySymbol
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Server{
		predictor: opts.Predictor,
		symbol:    symbol,
		checks:    opts.ReadyChecks,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(s.accessLog)

	f.Get("/health", s.health)
	f.Get("/ready", s.ready)
	f.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	f.Group("/v1", func() {
		f.Post("/premium", s.quote)
		f.Get("/options", s.options)
	})
	s.flame = f

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.flame }

func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.flame,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.logger.Info("http server listening", map[string]interface{}{"address": addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) accessLog(c flamego.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request", map[string]interface{}{
		"method":   c.Request().Method,
		"path":     c.Request().URL.Path,
		"status":   c.ResponseWriter().Status(),
		"duration": time.Since(start).String(),
	})
}

func (s *Server) health(c flamego.Context) {
	writeJSON(c.ResponseWriter(), http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) ready(c flamego.Context) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		writeJSON(c.ResponseWriter(), http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unready",
			"failures": failures,
		})
		return
	}
	writeJSON(c.ResponseWriter(), http.StatusOK, map[string]string{
		"status": "ready",
		"policy": s.predictor.Policy().Version,
	})
}

func (s *Server) quote(c flamego.Context) {
	w := c.ResponseWriter()

	body, err := io.ReadAll(io.LimitReader(c.Request().Request.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "could not read request body"})
		return
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request body must be a JSON object"})
		return
	}

	pred, err := s.predictor.Predict(c.Request().Context(), raw)
	if err != nil {
		s.logger.Error("quote failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "prediction unavailable",
			Code:  ErrorCode(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, QuoteResponse{
		PredictionID:     pred.ID,
		Premium:          pred.Premium,
		FormattedPremium: premium.FormatPremium(pred.Premium, s.symbol),
		Band:             string(pred.Band),
		PolicyVersion:    pred.PolicyVersion,
		RiskScore:        pred.RiskIndex,
		Warnings:         RangeWarnings(raw),
	})
}

func (s *Server) options(c flamego.Context) {
	writeJSON(c.ResponseWriter(), http.StatusOK, FormOptions())
}

// ErrorCode maps a prediction error to the code shown to clients. Details
// stay in the logs.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, premium.ErrSchemaMismatch):
		return premium.ErrSchemaMismatch.Error()
	case errors.Is(err, premium.ErrArtifactLoadFailed):
		return premium.ErrArtifactLoadFailed.Error()
	case errors.Is(err, premium.ErrPredictionInvalid):
		return premium.ErrPredictionInvalid.Error()
	default:
		return "PREDICTION_FAILED"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
