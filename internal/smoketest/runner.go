package smoketest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/okian/homeval/pkg/logger"
)

// Run executes the complete smoke test and returns its statistics. A run
// with any failed check returns an error wrapping ErrFailed.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	runID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, runID)
	log := logger.Get().Named("smoke")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("random", config.Random),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int64("seed", int64(config.Seed)))

	client := newHTTPClient(strings.TrimRight(config.BaseURL, "/"), config.Timeout)

	// Step 1: service metadata
	var info InfoResponse
	if err := client.GetJSON(ctx, "/", &info); err != nil {
		return stats, fmt.Errorf("service check failed: %w", err)
	}
	if info.Status != "running" {
		return stats, fmt.Errorf("service check failed: status %q", info.Status)
	}
	log.Info(ctx, "service is running", logger.String("message", info.Message), logger.String("version", info.Version))

	// Step 2: default, examples and random vectors
	cases := append(fixedCases(), randomCases(config.Random, config.Seed)...)
	stats.CasesPlanned = len(cases)
	local := predict.NewLinear()
	stats.CasesSubmitted = submitCases(ctx, config, client, cases, func(o outcome) {
		err := o.err
		if err == nil {
			err = verifyPrediction(local, o.c, o.resp)
		}
		if err != nil {
			stats.fail(err)
			log.Warn(ctx, "check failed", logger.String("case", o.c.ID), logger.Error(err))
			return
		}
		stats.CasesVerified++
		if config.Verbose || o.c.Name != "random" {
			log.Info(ctx, "prediction verified",
				logger.String("case", o.c.Name),
				logger.String("formatted", o.resp.PredictionFormatted),
				logger.Floats("features", o.c.Features))
		}
	})

	// Step 3: malformed inputs
	for _, c := range malformedCases() {
		var resp PredictResponse
		err := client.PostJSON(ctx, "/predict", c.ID, PredictRequest{Data: c.Features}, &resp)
		if err == nil {
			err = verifyRejection(c, resp)
		}
		if err != nil {
			stats.fail(err)
			log.Warn(ctx, "check failed", logger.String("case", c.Name), logger.Error(err))
			continue
		}
		stats.RejectionsOK++
		log.Debug(ctx, "malformed input rejected", logger.String("case", c.Name), logger.String("error", resp.Error))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.CasesFailed > 0 {
		return stats, fmt.Errorf("%w: %d checks failed", ErrFailed, stats.CasesFailed)
	}
	if stats.CasesSubmitted < stats.CasesPlanned {
		return stats, fmt.Errorf("%w: %d of %d cases submitted", ErrFailed, stats.CasesSubmitted, stats.CasesPlanned)
	}
	log.Info(ctx, "smoke test passed")
	return stats, nil
}

func (s *Stats) fail(err error) {
	s.CasesFailed++
	if len(s.FailureMessages) < maxFailureMessages {
		s.FailureMessages = append(s.FailureMessages, err.Error())
	}
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.CasesSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("planned", stats.CasesPlanned),
		logger.Int("submitted", stats.CasesSubmitted),
		logger.Int("verified", stats.CasesVerified),
		logger.Int("failed", stats.CasesFailed),
		logger.Int("rejections", stats.RejectionsOK),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("predictionsPerSecond", perSecond))
}
