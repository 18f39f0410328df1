package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
	"alfredoptarigan/resume-screener/pkg/logging"
)

func testConfig() *config.Config {
	return &config.Config{
		Gemini: config.GeminiConfig{Backend: config.BackendGeminiAPI},
		Scoring: config.ScoringConfig{
			Timeout:           time.Second,
			RetryMaxAttempts:  2,
			RetryInitialDelay: time.Millisecond,
			RetryMultiplier:   2,
			RetryMaxDelay:     time.Second,
			MaxInFlight:       2,
			MaxResumeChars:    100,
		},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, MaxFiles: 5},
		Email:  config.EmailConfig{InviteThreshold: 70, CompanyName: "Acme", SenderName: "Hiring Team"},
	}
}

func TestNewPipelineWithoutCredentials(t *testing.T) {
	p, err := NewPipeline(context.Background(), testConfig(), logging.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Client.Configured())

	_, err = p.Screening.Screen(context.Background(), services.NewJobDescription("Go engineer"),
		[]models.ResumeDocument{models.NewResumeDocument("a.txt", []byte("Alice"))}, services.Options{})
	assert.ErrorIs(t, err, models.ErrMissingCredentials)

	email := p.Composer.Compose(context.Background(), models.CandidateEvaluation{Filename: "jane_doe.pdf"}, models.DecisionReject, services.EmailOptions{UseAI: true})
	assert.False(t, email.Generated)
	assert.Contains(t, email.Body, "Acme")
}

func TestScoringClientConfig(t *testing.T) {
	cfg := testConfig().Scoring
	cfg.RatePerSecond = 4

	got := ScoringClientConfig(cfg)

	assert.Equal(t, time.Second, got.Timeout)
	assert.Equal(t, 2, got.Retry.MaxAttempts)
	assert.Equal(t, time.Millisecond, got.Retry.BaseDelay)
	assert.Equal(t, 2.0, got.Retry.Multiplier)
	assert.Equal(t, 4.0, got.RatePerSecond)
}
