package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/export"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
	"alfredoptarigan/resume-screener/pkg/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScreeningHandler struct {
	screening services.ScreeningService
	maxFiles  int
	timeout   time.Duration
	email     config.EmailConfig
	log       *logging.Logger
}

func NewScreeningHandler(
	screening services.ScreeningService,
	maxFiles int,
	timeout time.Duration,
	email config.EmailConfig,
	log *logging.Logger,
) *ScreeningHandler {
	return &ScreeningHandler{
		screening: screening,
		maxFiles:  maxFiles,
		timeout:   timeout,
		email:     email,
		log:       log.With("handler", "screening"),
	}
}

// HandleScreen handles POST /screen
func (h *ScreeningHandler) HandleScreen(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	jd := services.NewJobDescription(c.FormValue("job_description"))
	if jd.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description is required",
		})
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		return models.ErrNoResumes
	}
	if h.maxFiles > 0 && len(files) > h.maxFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("too many resumes. Max files: %d", h.maxFiles),
		})
	}

	opts, err := h.parseOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	docs := make([]models.ResumeDocument, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		docs = append(docs, models.NewResumeDocument(fh.Filename, data))
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.screening.Screen(ctx, jd, docs, opts)
	if err != nil {
		return err
	}
	h.log.Info("screening completed", "batch_id", result.BatchID, "candidates", len(result.Ranked), "partial", result.Partial)

	if strings.EqualFold(c.Query("format"), "xlsx") {
		var buf bytes.Buffer
		meta := export.ReportMeta{JobTitle: opts.Email.JobTitle, JobDescription: jd.Text}
		if err := export.WriteReport(&buf, result, meta); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="screening-%s.xlsx"`, result.BatchID))
		return c.Send(buf.Bytes())
	}

	return c.JSON(result)
}

func (h *ScreeningHandler) parseOptions(c *fiber.Ctx) (services.Options, error) {
	generateEmails, err := formBool(c, "generate_emails", false)
	if err != nil {
		return services.Options{}, err
	}
	allowPartial, err := formBool(c, "partial", false)
	if err != nil {
		return services.Options{}, err
	}

	threshold := h.email.InviteThreshold
	if raw := strings.TrimSpace(c.FormValue("invite_threshold")); raw != "" {
		threshold, err = strconv.Atoi(raw)
		if err != nil || threshold < models.MinScore || threshold > models.MaxScore {
			return services.Options{}, fmt.Errorf("invite_threshold must be an integer between %d and %d", models.MinScore, models.MaxScore)
		}
	}

	return services.Options{
		GenerateEmails:  generateEmails,
		InviteThreshold: threshold,
		AllowPartial:    allowPartial,
		Email: services.EmailOptions{
			JobTitle:       strings.TrimSpace(c.FormValue("job_title")),
			JobDescription: c.FormValue("job_description"),
			CompanyName:    strings.TrimSpace(c.FormValue("company")),
			UseAI:          h.email.UseAI,
		},
	}, nil
}

func formBool(c *fiber.Ctx, key string, fallback bool) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(c.FormValue(key)))
	switch raw {
	case "":
		return fallback, nil
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
