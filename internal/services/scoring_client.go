package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

// RetryPolicy describes exponential backoff between scoring attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    20 * time.Second,
	}
}

// Delay returns the wait before attempt+1, given that attempt (1-based) failed.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

type ScoringClient interface {
	// Score sends one scoring request and returns the raw model output.
	Score(ctx context.Context, req models.ScoringRequest) (string, error)
	// Complete runs any prompt through the same retry and rate policy.
	Complete(ctx context.Context, system, prompt string) (string, error)
	Configured() bool
}

type ScoringClientConfig struct {
	Timeout       time.Duration
	Retry         RetryPolicy
	RatePerSecond float64
}

type scoringClient struct {
	generator TextGenerator
	timeout   time.Duration
	retry     RetryPolicy
	limiter   *rate.Limiter
	log       *logging.Logger
}

// NewScoringClient wraps generator with timeout, retry and rate limiting. A
// nil generator yields an unconfigured client that fails every call with
// models.ErrMissingCredentials.
func NewScoringClient(generator TextGenerator, cfg ScoringClientConfig, log *logging.Logger) ScoringClient {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &scoringClient{
		generator: generator,
		timeout:   cfg.Timeout,
		retry:     cfg.Retry,
		limiter:   limiter,
		log:       log.With("component", "scoring_client"),
	}
}

func (c *scoringClient) Configured() bool {
	return c.generator != nil
}

// Score implements ScoringClient.
func (c *scoringClient) Score(ctx context.Context, req models.ScoringRequest) (string, error) {
	return c.Complete(ctx, req.System, req.Prompt)
}

// Complete implements ScoringClient.
func (c *scoringClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		return "", models.ErrMissingCredentials
	}

	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter: %w", err)
			}
		}

		text, err := c.attempt(ctx, system, prompt)
		if err == nil {
			return text, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		svcErr := asServiceError(err)
		if !svcErr.Retryable() || attempt >= c.retry.MaxAttempts {
			return "", svcErr
		}

		delay := c.retry.Delay(attempt)
		c.log.Warn("scoring attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
			"kind", svcErr.Kind,
			"delay", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *scoringClient) attempt(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.generator.GenerateText(ctx, system, prompt)
}

func asServiceError(err error) *models.ServiceError {
	var svcErr *models.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.ServiceError{Kind: models.ServiceTimeout, Err: err}
	}
	return &models.ServiceError{Kind: models.ServiceUnavailable, Err: err}
}
