package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	DefaultMaxResumeChars = 12000
	truncationMarker      = "\n[... resume truncated ...]"
)

const scoringSystemPrompt = `You are an experienced technical recruiter screening resumes against a job description.
Score how well the candidate matches the role on a 0-100 scale, where 100 means every requirement is clearly met.
Respond with a single JSON object and nothing else, using exactly these fields:
{"score": <integer 0-100>, "missing_skills": [<required skills absent from the resume>], "remarks": "<one or two sentences explaining the score>"}
Do not wrap the JSON in markdown. Do not add any other keys.`

// PromptBuilder renders the LLM requests. Output depends only on its inputs.
type PromptBuilder struct {
	maxResumeChars int
}

// NewPromptBuilder caps resume text at maxResumeChars runes; values <= 0 use
// DefaultMaxResumeChars.
func NewPromptBuilder(maxResumeChars int) *PromptBuilder {
	if maxResumeChars <= 0 {
		maxResumeChars = DefaultMaxResumeChars
	}
	return &PromptBuilder{maxResumeChars: maxResumeChars}
}

// Build creates the scoring request for one candidate.
func (pb *PromptBuilder) Build(jd models.JobDescription, resume models.ExtractedText) models.ScoringRequest {
	resumeText, truncated := truncateRunes(resume.Text, pb.maxResumeChars, truncationMarker)

	prompt := fmt.Sprintf(`JOB DESCRIPTION:
%s

CANDIDATE RESUME:
%s

Evaluate the resume against the job description and return the JSON object.`,
		jd.Text, resumeText)

	return models.ScoringRequest{
		System:    scoringSystemPrompt,
		Prompt:    prompt,
		Truncated: truncated,
	}
}

// BuildEmailPrompt asks for a recruiter email as {"subject","body"} JSON.
func (pb *PromptBuilder) BuildEmailPrompt(decision models.Decision, candidateName, jobTitle, company, sender, jobDescription string, missingSkills []string) (system, prompt string) {
	system = `You write short, warm and professional recruiting emails.
Respond with a single JSON object {"subject": "<subject line>", "body": "<plain text email body>"} and nothing else.`

	var intent string
	switch decision {
	case models.DecisionInvite:
		intent = "Invite the candidate to an interview and ask them to reply with their availability for the coming week."
		if len(missingSkills) > 0 {
			intent += fmt.Sprintf(" Mention that the interview may cover: %s.", strings.Join(missingSkills, ", "))
		}
	default:
		intent = "Politely inform the candidate that they were not selected to move forward. Thank them and encourage future applications. Do not list their weaknesses."
	}

	jdContext, _ := truncateRunes(jobDescription, 2000, "\n[...]")
	prompt = fmt.Sprintf(`Candidate name: %s
Position: %s
Company: %s
Sign the email as: %s

%s

JOB DESCRIPTION (context only):
%s`, candidateName, jobTitle, company, sender, intent, jdContext)

	return system, prompt
}

// BuildSummaryPrompt asks for a short bullet summary of a job description.
func (pb *PromptBuilder) BuildSummaryPrompt(jd models.JobDescription) (system, prompt string) {
	system = `You summarize job descriptions for recruiters.
Respond with a single JSON object {"bullets": ["<point>", ...]} holding 3 to 5 concise bullet points and nothing else.`

	jdText, _ := truncateRunes(jd.Text, pb.maxResumeChars, "\n[...]")
	prompt = fmt.Sprintf("Summarize the key responsibilities and required skills of this job description:\n\n%s", jdText)

	return system, prompt
}

// truncateRunes keeps the first limit runes and appends marker when it cut anything.
func truncateRunes(text string, limit int, marker string) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + marker, true
}
