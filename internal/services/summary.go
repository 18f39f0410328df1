package services

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

const maxExtractiveSummaryChars = 600

type JDSummarizer interface {
	Summarize(ctx context.Context, jd models.JobDescription) models.SummaryResponse
}

type jdSummarizer struct {
	client  ScoringClient
	prompts *PromptBuilder
	log     *logging.Logger
}

func NewJDSummarizer(client ScoringClient, prompts *PromptBuilder, log *logging.Logger) JDSummarizer {
	return &jdSummarizer{
		client:  client,
		prompts: prompts,
		log:     log.With("component", "jd_summarizer"),
	}
}

// Summarize asks the model for a bullet summary and falls back to the
// leading sentences of the description.
func (s *jdSummarizer) Summarize(ctx context.Context, jd models.JobDescription) models.SummaryResponse {
	if s.client != nil && s.client.Configured() {
		system, prompt := s.prompts.BuildSummaryPrompt(jd)
		text, err := s.client.Complete(ctx, system, prompt)
		if err == nil {
			if summary := cleanSummary(text); summary != "" {
				return models.SummaryResponse{Summary: summary, Generated: true}
			}
		}
		s.log.Warn("AI summary unavailable, using extractive summary", "jd", jd.Fingerprint(), "error", err)
	}

	return models.SummaryResponse{Summary: ExtractiveSummary(jd.Text, maxExtractiveSummaryChars)}
}

// cleanSummary accepts {"bullets": [...]} or {"summary": "..."} and falls
// back to the raw text with any code fence removed.
func cleanSummary(text string) string {
	if obj, ok := locateJSONObject(text); ok {
		root := gjson.Parse(obj)
		var bullets []string
		for _, b := range root.Get("bullets").Array() {
			line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(b.String()), "-*• "))
			if line != "" {
				bullets = append(bullets, "- "+line)
			}
		}
		if len(bullets) > 0 {
			return strings.Join(bullets, "\n")
		}
		return strings.TrimSpace(root.Get("summary").String())
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// ExtractiveSummary returns whole leading sentences of text up to limit runes.
// A first sentence longer than limit is cut and suffixed with "...".
func ExtractiveSummary(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return ""
	}

	var out strings.Builder
	outRunes := 0
	for _, sentence := range splitSentences(flat) {
		n := len([]rune(sentence))
		sep := 0
		if outRunes > 0 {
			sep = 1
		}
		if outRunes+sep+n > limit {
			break
		}
		if sep == 1 {
			out.WriteByte(' ')
		}
		out.WriteString(sentence)
		outRunes += sep + n
	}

	if outRunes == 0 {
		cut, truncated := truncateRunes(flat, limit, "...")
		if !truncated {
			return cut
		}
		return strings.TrimSpace(strings.TrimSuffix(cut, "...")) + "..."
	}
	return out.String()
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' {
				sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
