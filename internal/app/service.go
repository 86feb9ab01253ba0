// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/homeval/internal/domain/model"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"
)

// Service metadata reported on GET /.
const (
	Message = "House Price Prediction API"
	Version = "1.0.0"
)

// Info is the liveness payload.
type Info struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// ModelInfo describes the parameters behind every prediction.
type ModelInfo struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	FeatureNames []string    `json:"feature_names"`
	Coefficients []float64   `json:"coefficients"`
	Intercept    float64     `json:"intercept"`
	Scale        float64     `json:"scale"`
	Defaults     []float64   `json:"defaults"`
	Examples     [][]float64 `json:"examples"`
}

// Service implements the API dependencies for the prediction system.
// The request path touches only atomics.
type Service struct {
	mu sync.Mutex

	predictor *predict.Linear
	logger    logger.Logger
	now       func() time.Time

	started   bool
	startedAt time.Time

	predictions       atomic.Int64
	validationErrors  atomic.Int64
	computationErrors atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPredictor replaces the baked-in linear predictor.
func WithPredictor(p *predict.Linear) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithClock overrides time.Now, for uptime in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		predictor: predict.NewLinear(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready and logs the model in use.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	params := s.predictor.Parameters()
	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "prediction service started",
		logger.String("model", model.Name),
		logger.Floats("coefficients", params.Coefficients().Slice()),
		logger.Float64("intercept", params.Intercept()),
		logger.Float64("scale", s.predictor.Scale()),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped",
		logger.Int64("predictions", s.predictions.Load()))
}

// Predict evaluates the model and accounts for the outcome.
func (s *Service) Predict(ctx context.Context, features []float64) (predict.Result, error) {
	start := time.Now()
	res, err := s.predictor.Predict(ctx, features)
	if err == nil && (math.IsNaN(res.Prediction) || math.IsInf(res.Prediction, 0)) {
		err = &predict.ComputationError{Cause: fmt.Errorf("prediction %v is not a finite number", res.Prediction)}
	}
	if err != nil {
		s.recordFailure(ctx, err)
		return predict.Result{}, err
	}
	s.predictions.Add(1)
	metrics.RecordPrediction(res.Prediction, float64(time.Since(start).Nanoseconds())/1e3)
	if s.logger != nil {
		s.logger.Debug(ctx, "prediction computed",
			logger.Floats("features", res.Features.Slice()),
			logger.Float64("prediction", res.Prediction))
	}
	return res, nil
}

// RecordRejected accounts for input rejected before reaching the model,
// e.g. by request schema validation.
func (s *Service) RecordRejected(ctx context.Context, err error) {
	s.recordFailure(ctx, err)
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	if errors.Is(err, predict.ErrComputation) {
		s.computationErrors.Add(1)
		metrics.RecordComputationError()
		if s.logger != nil {
			s.logger.Error(ctx, "prediction failed", logger.Error(err))
		}
		return
	}
	s.validationErrors.Add(1)
	if s.logger != nil {
		s.logger.Debug(ctx, "prediction input rejected", logger.Error(err))
	}
}

// Info returns the liveness payload.
func (s *Service) Info() Info {
	return Info{
		Message: Message,
		Status:  "running",
		Model:   model.Name + " (no scikit-learn dependency)",
		Version: Version,
	}
}

// Model describes the parameters in use.
func (s *Service) Model() ModelInfo {
	params := s.predictor.Parameters()
	examples := model.Examples()
	rows := make([][]float64, len(examples))
	for i, ex := range examples {
		rows[i] = ex.Slice()
	}
	return ModelInfo{
		Name:         model.Name,
		Description:  model.Description,
		FeatureNames: model.FeatureNames(),
		Coefficients: params.Coefficients().Slice(),
		Intercept:    params.Intercept(),
		Scale:        s.predictor.Scale(),
		Defaults:     model.DefaultFeatures().Slice(),
		Examples:     rows,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started, startedAt := s.started, s.startedAt
	s.mu.Unlock()

	var uptime float64
	if started {
		uptime = s.now().Sub(startedAt).Seconds()
	}
	return map[string]interface{}{
		"started":           started,
		"uptimeSeconds":     uptime,
		"predictions":       s.predictions.Load(),
		"validationErrors":  s.validationErrors.Load(),
		"computationErrors": s.computationErrors.Load(),
	}
}
