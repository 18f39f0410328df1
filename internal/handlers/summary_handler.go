package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type SummaryHandler struct {
	summarizer services.JDSummarizer
}

func NewSummaryHandler(summarizer services.JDSummarizer) *SummaryHandler {
	return &SummaryHandler{
		summarizer: summarizer,
	}
}

// HandleSummary handles POST /jd/summary. The job description is read from
// a JSON body or a job_description form field.
func (h *SummaryHandler) HandleSummary(c *fiber.Ctx) error {
	var req models.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.JobDescription == "" {
		req.JobDescription = c.FormValue("job_description")
	}

	jd := services.NewJobDescription(req.JobDescription)
	if jd.IsEmpty() {
		return models.ErrEmptyJobDescription
	}

	return c.JSON(h.summarizer.Summarize(c.UserContext(), jd))
}
