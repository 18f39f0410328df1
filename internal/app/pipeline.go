package app

import (
	"context"
	"fmt"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/services"
	"alfredoptarigan/resume-screener/pkg/logging"
)

// Pipeline holds the services shared by the HTTP server and the CLI.
type Pipeline struct {
	Client     services.ScoringClient
	Prompts    *services.PromptBuilder
	Composer   services.EmailComposer
	Summarizer services.JDSummarizer
	Screening  services.ScreeningService
}

// NewPipeline wires the screening services from cfg. Without model
// credentials the pipeline is still built; scoring calls then report
// models.ErrMissingCredentials and emails fall back to templates.
func NewPipeline(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Pipeline, error) {
	var generator services.TextGenerator
	if cfg.Gemini.HasCredentials() {
		gen, err := services.NewGeminiService(ctx, cfg.Gemini, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
		}
		generator = gen
	} else {
		log.Warn("AI credentials not configured; scoring is disabled", "backend", cfg.Gemini.Backend)
	}

	client := services.NewScoringClient(generator, ScoringClientConfig(cfg.Scoring), log)
	prompts := services.NewPromptBuilder(cfg.Scoring.MaxResumeChars)
	composer := services.NewEmailComposer(client, prompts, services.EmailOptions{
		CompanyName: cfg.Email.CompanyName,
		SenderName:  cfg.Email.SenderName,
	}, log)

	screening := services.NewScreeningService(
		services.NewDocumentExtractor(cfg.Upload.MaxFileSize),
		prompts,
		client,
		services.NewResponseParser(),
		composer,
		cfg.Scoring.MaxInFlight,
		log,
	)

	return &Pipeline{
		Client:     client,
		Prompts:    prompts,
		Composer:   composer,
		Summarizer: services.NewJDSummarizer(client, prompts, log),
		Screening:  screening,
	}, nil
}

func ScoringClientConfig(cfg config.ScoringConfig) services.ScoringClientConfig {
	return services.ScoringClientConfig{
		Timeout: cfg.Timeout,
		Retry: services.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryInitialDelay,
			Multiplier:  cfg.RetryMultiplier,
			MaxDelay:    cfg.RetryMaxDelay,
		},
		RatePerSecond: cfg.RatePerSecond,
	}
}
