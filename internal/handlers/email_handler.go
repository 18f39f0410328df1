package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type EmailHandler struct {
	composer services.EmailComposer
	cfg      config.EmailConfig
}

func NewEmailHandler(composer services.EmailComposer, cfg config.EmailConfig) *EmailHandler {
	return &EmailHandler{
		composer: composer,
		cfg:      cfg,
	}
}

// HandleCompose handles POST /email for a single candidate.
func (h *EmailHandler) HandleCompose(c *fiber.Ctx) error {
	var req models.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.CandidateName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "candidate_name is required",
		})
	}

	if req.Score < models.MinScore || req.Score > models.MaxScore {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "score must be between 0 and 100",
		})
	}

	decision := services.DecisionFor(req.Score, h.cfg.InviteThreshold)
	if req.Decision != "" {
		parsed, err := models.ParseDecision(req.Decision)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "decision must be invite or reject",
			})
		}
		decision = parsed
	}

	missing := req.MissingSkills
	if missing == nil {
		missing = []string{}
	}
	candidate := models.CandidateEvaluation{
		Score:         req.Score,
		MissingSkills: missing,
	}

	email := h.composer.Compose(c.UserContext(), candidate, decision, services.EmailOptions{
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		UseAI:          h.cfg.UseAI,
	})

	return c.JSON(email)
}
