package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

func newTestSummarizer(gen TextGenerator) JDSummarizer {
	log := logging.NewNop()
	client := NewScoringClient(gen, ScoringClientConfig{Retry: fastRetry(1)}, log)
	return NewJDSummarizer(client, NewPromptBuilder(0), log)
}

func TestSummarizeWithAI(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{text: `{"bullets": ["Build Go services", "- Own Kubernetes deploys", ""]}`},
	}}

	out := newTestSummarizer(gen).Summarize(context.Background(), NewJobDescription("Go engineer needed."))

	assert.True(t, out.Generated)
	assert.Equal(t, "- Build Go services\n- Own Kubernetes deploys", out.Summary)
}

func TestSummarizeAcceptsPlainText(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{{text: "```\n- one\n- two\n```"}}}

	out := newTestSummarizer(gen).Summarize(context.Background(), NewJobDescription("Go engineer needed."))

	assert.True(t, out.Generated)
	assert.Equal(t, "- one\n- two", out.Summary)
}

func TestSummarizeFallsBack(t *testing.T) {
	jd := NewJobDescription("We are hiring a Go engineer. You will build APIs.\nKubernetes is a plus!")

	t.Run("unconfigured", func(t *testing.T) {
		out := newTestSummarizer(nil).Summarize(context.Background(), jd)

		assert.False(t, out.Generated)
		assert.Equal(t, "We are hiring a Go engineer. You will build APIs. Kubernetes is a plus!", out.Summary)
	})

	t.Run("service error", func(t *testing.T) {
		gen := &fakeGenerator{responses: []fakeResponse{{err: &models.ServiceError{Kind: models.ServiceAuth, Err: errors.New("403")}}}}

		out := newTestSummarizer(gen).Summarize(context.Background(), jd)

		assert.False(t, out.Generated)
		assert.True(t, strings.HasPrefix(out.Summary, "We are hiring"))
	})

	t.Run("empty answer", func(t *testing.T) {
		gen := &fakeGenerator{responses: []fakeResponse{{text: "  "}}}

		out := newTestSummarizer(gen).Summarize(context.Background(), jd)

		assert.False(t, out.Generated)
	})
}

func TestExtractiveSummary(t *testing.T) {
	text := "First sentence here. Second one is a bit longer. Third."

	assert.Equal(t, "First sentence here.", ExtractiveSummary(text, 30))
	assert.Equal(t, "First sentence here. Second one is a bit longer.", ExtractiveSummary(text, 50))
	assert.Equal(t, text, ExtractiveSummary(text, 600))
	assert.Equal(t, "", ExtractiveSummary("   ", 600))

	long := strings.Repeat("ü", 700)
	cut := ExtractiveSummary(long, 600)
	assert.True(t, strings.HasSuffix(cut, "..."))
	assert.Equal(t, 603, utf8.RuneCountInString(cut))
}
