package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

// TextGenerator is a single-shot text completion backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	log         *logging.Logger
}

// NewGeminiService connects to the Gemini API or to Vertex AI depending on
// cfg.Backend.
func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, log *logging.Logger) (TextGenerator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Backend == config.BackendVertexAI {
		clientCfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		log:         log.With("component", "gemini", "model", cfg.Model),
	}, nil
}

// GenerateText implements TextGenerator.
func (g *geminiService) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		classified := classifyGenAIError(err)
		g.log.Warn("gemini request failed", "error", classified)
		return "", classified
	}

	if resp == nil {
		return "", &models.ServiceError{Kind: models.ServiceUnavailable, Err: errors.New("nil response")}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		g.log.Warn("gemini returned no text content", "candidates", len(resp.Candidates))
	}

	return text, nil
}

// classifyGenAIError maps SDK and transport failures onto ServiceError kinds.
// Caller cancellation is passed through untouched.
func classifyGenAIError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.ServiceError{Kind: models.ServiceTimeout, Err: err}
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}

	switch {
	case code == 401 || code == 403:
		return &models.ServiceError{Kind: models.ServiceAuth, Err: err}
	case code == 408 || code == 504:
		return &models.ServiceError{Kind: models.ServiceTimeout, Err: err}
	case code == 429 || code >= 500:
		return &models.ServiceError{Kind: models.ServiceUnavailable, Err: err}
	case code >= 400:
		return &models.ServiceError{Kind: models.ServiceRejected, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &models.ServiceError{Kind: models.ServiceTimeout, Err: err}
	}

	return &models.ServiceError{Kind: models.ServiceUnavailable, Err: err}
}
