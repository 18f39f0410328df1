package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

const DefaultInviteThreshold = 70

// DecisionFor invites candidates scoring at or above threshold.
func DecisionFor(score, threshold int) models.Decision {
	if score >= threshold {
		return models.DecisionInvite
	}
	return models.DecisionReject
}

type EmailOptions struct {
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	JobDescription string
	CompanyName    string
	SenderName     string
	UseAI          bool
}

type EmailComposer interface {
	// Compose never fails; AI problems fall back to the built-in templates.
	Compose(ctx context.Context, candidate models.CandidateEvaluation, decision models.Decision, opts EmailOptions) models.Email
}

type emailComposer struct {
	client   ScoringClient
	prompts  *PromptBuilder
	defaults EmailOptions
	log      *logging.Logger
}

// NewEmailComposer fills blank company and sender names from defaults.
func NewEmailComposer(client ScoringClient, prompts *PromptBuilder, defaults EmailOptions, log *logging.Logger) EmailComposer {
	return &emailComposer{
		client:   client,
		prompts:  prompts,
		defaults: defaults,
		log:      log.With("component", "email_composer"),
	}
}

// Compose implements EmailComposer.
func (e *emailComposer) Compose(ctx context.Context, candidate models.CandidateEvaluation, decision models.Decision, opts EmailOptions) models.Email {
	opts = e.withDefaults(candidate, opts)

	email := models.Email{
		CandidateID: candidate.CandidateID,
		To:          opts.CandidateEmail,
		Decision:    decision,
	}

	if opts.UseAI && e.client != nil && e.client.Configured() {
		subject, body, err := e.generate(ctx, candidate, decision, opts)
		if err == nil {
			email.Subject = subject
			email.Body = body
			email.Generated = true
			return email
		}
		e.log.Warn("AI email generation failed, using template",
			"candidate", candidate.CandidateID,
			"error", err,
		)
	}

	email.Subject, email.Body = renderTemplate(decision, candidate.MissingSkills, opts)
	return email
}

func (e *emailComposer) withDefaults(candidate models.CandidateEvaluation, opts EmailOptions) EmailOptions {
	if strings.TrimSpace(opts.CandidateName) == "" {
		opts.CandidateName = CandidateNameFromFilename(candidate.Filename)
	}
	if strings.TrimSpace(opts.CompanyName) == "" {
		opts.CompanyName = e.defaults.CompanyName
	}
	if strings.TrimSpace(opts.SenderName) == "" {
		opts.SenderName = e.defaults.SenderName
	}
	if strings.TrimSpace(opts.CompanyName) == "" {
		opts.CompanyName = "our company"
	}
	if strings.TrimSpace(opts.SenderName) == "" {
		opts.SenderName = "The Recruiting Team"
	}
	return opts
}

func (e *emailComposer) generate(ctx context.Context, candidate models.CandidateEvaluation, decision models.Decision, opts EmailOptions) (string, string, error) {
	system, prompt := e.prompts.BuildEmailPrompt(decision, opts.CandidateName, jobTitleOrDefault(opts.JobTitle),
		opts.CompanyName, opts.SenderName, opts.JobDescription, candidate.MissingSkills)

	raw, err := e.client.Complete(ctx, system, prompt)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate email: %w", err)
	}

	obj, ok := locateJSONObject(raw)
	if !ok {
		return "", "", errors.New("email response is not a JSON object")
	}

	subject := strings.TrimSpace(gjson.Get(obj, "subject").String())
	body := strings.TrimSpace(gjson.Get(obj, "body").String())
	if subject == "" || body == "" {
		return "", "", errors.New("email response is missing subject or body")
	}
	return subject, body, nil
}

func renderTemplate(decision models.Decision, missingSkills []string, opts EmailOptions) (subject, body string) {
	title := strings.TrimSpace(opts.JobTitle)
	position := jobTitleOrDefault(title)

	if decision == models.DecisionInvite {
		subject = fmt.Sprintf("Interview invitation from %s", opts.CompanyName)
		if title != "" {
			subject = fmt.Sprintf("Interview invitation: %s at %s", title, opts.CompanyName)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Hi %s,\n\n", opts.CandidateName)
		fmt.Fprintf(&b, "Thank you for applying for the %s position at %s. We enjoyed reviewing your background and would like to invite you to an interview.\n\n", position, opts.CompanyName)
		if len(missingSkills) > 0 {
			fmt.Fprintf(&b, "During the conversation we would also like to hear about your experience with %s.\n\n", strings.Join(missingSkills, ", "))
		}
		b.WriteString("Please reply with a few times that work for you over the next week.\n\n")
		fmt.Fprintf(&b, "Best regards,\n%s\n%s", opts.SenderName, opts.CompanyName)
		return subject, b.String()
	}

	subject = fmt.Sprintf("Your application at %s", opts.CompanyName)
	if title != "" {
		subject = fmt.Sprintf("Your application for %s at %s", title, opts.CompanyName)
	}
	body = fmt.Sprintf("Hi %s,\n\n"+
		"Thank you for your interest in the %s position at %s and for the time you put into your application.\n\n"+
		"After careful review we have decided not to move forward with your application at this time. "+
		"We will keep your details on file and encourage you to apply for future openings that match your experience.\n\n"+
		"Best regards,\n%s\n%s",
		opts.CandidateName, position, opts.CompanyName, opts.SenderName, opts.CompanyName)
	return subject, body
}

func jobTitleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return "open"
}

var filenameNoise = map[string]bool{
	"resume": true, "cv": true, "curriculum": true, "vitae": true, "final": true, "updated": true,
}

// CandidateNameFromFilename guesses a display name from an upload name such
// as "jane_doe-resume.pdf".
func CandidateNameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) || unicode.IsDigit(r)
	})

	var words []string
	for _, p := range parts {
		if filenameNoise[strings.ToLower(p)] {
			continue
		}
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		words = append(words, string(runes))
	}

	if len(words) == 0 {
		return "Candidate"
	}
	return strings.Join(words, " ")
}
