package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

// fakeGenerator replays scripted responses in order and records every call.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     int
	handler   func(ctx context.Context, system, prompt string) (string, error)
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	handler := f.handler
	var resp fakeResponse
	if handler == nil && len(f.responses) > 0 {
		resp = f.responses[0]
		if len(f.responses) > 1 {
			f.responses = f.responses[1:]
		}
	}
	f.mu.Unlock()

	if handler != nil {
		return handler(ctx, system, prompt)
	}
	return resp.text, resp.err
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 5 * time.Millisecond}
}

func newTestScoringClient(gen TextGenerator, attempts int) ScoringClient {
	return NewScoringClient(gen, ScoringClientConfig{Timeout: time.Second, Retry: fastRetry(attempts)}, logging.NewNop())
}

func TestRetryPolicyDelay(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, 16*time.Second, p.Delay(4))
	assert.Equal(t, 20*time.Second, p.Delay(5))
	assert.Equal(t, 20*time.Second, p.Delay(10))
	assert.Equal(t, 2*time.Second, p.Delay(0))
}

func TestScoreSucceedsFirstAttempt(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{{text: `{"score": 90}`}}}
	client := newTestScoringClient(gen, 3)

	out, err := client.Score(context.Background(), models.ScoringRequest{System: "s", Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, `{"score": 90}`, out)
	assert.Equal(t, 1, gen.Calls())
}

func TestScoreRetriesTransientErrors(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: &models.ServiceError{Kind: models.ServiceUnavailable, Err: errors.New("503")}},
		{err: &models.ServiceError{Kind: models.ServiceTimeout}},
		{text: "ok"},
	}}
	client := newTestScoringClient(gen, 3)

	out, err := client.Score(context.Background(), models.ScoringRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, gen.Calls())
}

func TestScoreGivesUpAfterMaxAttempts(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: &models.ServiceError{Kind: models.ServiceUnavailable, Err: errors.New("503")}},
	}}
	client := newTestScoringClient(gen, 3)

	_, err := client.Score(context.Background(), models.ScoringRequest{Prompt: "p"})

	var svcErr *models.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, models.ServiceUnavailable, svcErr.Kind)
	assert.Equal(t, 3, gen.Calls())
}

func TestScoreDoesNotRetryAuthErrors(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: &models.ServiceError{Kind: models.ServiceAuth, Err: errors.New("401")}},
	}}
	client := newTestScoringClient(gen, 5)

	_, err := client.Score(context.Background(), models.ScoringRequest{Prompt: "p"})

	assert.True(t, models.IsAuthError(err))
	assert.Equal(t, 1, gen.Calls())
}

func TestScoreDoesNotRetryRejectedRequests(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: classifyGenAIError(genai.APIError{Code: 404, Message: "model not found"})},
	}}
	client := newTestScoringClient(gen, 5)

	_, err := client.Score(context.Background(), models.ScoringRequest{Prompt: "p"})

	var svcErr *models.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, models.ServiceRejected, svcErr.Kind)
	assert.Equal(t, 1, gen.Calls())
}

func TestScoreClassifiesUntypedErrors(t *testing.T) {
	gen := &fakeGenerator{handler: func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	client := NewScoringClient(gen, ScoringClientConfig{Timeout: 10 * time.Millisecond, Retry: fastRetry(2)}, logging.NewNop())

	_, err := client.Score(context.Background(), models.ScoringRequest{Prompt: "p"})

	var svcErr *models.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, models.ServiceTimeout, svcErr.Kind)
	assert.Equal(t, 2, gen.Calls())
}

func TestScoreStopsOnParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{handler: func(context.Context, string, string) (string, error) {
		cancel()
		return "", &models.ServiceError{Kind: models.ServiceUnavailable}
	}}
	client := newTestScoringClient(gen, 5)

	_, err := client.Score(ctx, models.ScoringRequest{Prompt: "p"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.Calls())
}

func TestUnconfiguredClient(t *testing.T) {
	client := newTestScoringClient(nil, 3)

	assert.False(t, client.Configured())
	_, err := client.Complete(context.Background(), "s", "p")
	assert.ErrorIs(t, err, models.ErrMissingCredentials)
}

func TestRateLimitedClient(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{{text: "ok"}}}
	client := NewScoringClient(gen, ScoringClientConfig{Retry: fastRetry(1), RatePerSecond: 1000}, logging.NewNop())

	for i := 0; i < 3; i++ {
		_, err := client.Complete(context.Background(), "", "p")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, gen.Calls())
}

func TestClassifyGenAIError(t *testing.T) {
	assert.ErrorIs(t, classifyGenAIError(context.Canceled), context.Canceled)

	var svcErr *models.ServiceError
	require.ErrorAs(t, classifyGenAIError(context.DeadlineExceeded), &svcErr)
	assert.Equal(t, models.ServiceTimeout, svcErr.Kind)

	require.ErrorAs(t, classifyGenAIError(errors.New("connection reset")), &svcErr)
	assert.Equal(t, models.ServiceUnavailable, svcErr.Kind)

	tests := []struct {
		code int
		want models.ServiceErrorKind
	}{
		{401, models.ServiceAuth},
		{403, models.ServiceAuth},
		{400, models.ServiceRejected},
		{404, models.ServiceRejected},
		{408, models.ServiceTimeout},
		{429, models.ServiceUnavailable},
		{500, models.ServiceUnavailable},
		{503, models.ServiceUnavailable},
		{504, models.ServiceTimeout},
	}
	for _, tt := range tests {
		err := classifyGenAIError(fmt.Errorf("generate: %w", genai.APIError{Code: tt.code, Message: "boom"}))
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, tt.want, svcErr.Kind, "code %d", tt.code)
	}
}
