package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     DocumentFormat
	}{
		{"jane_doe.pdf", FormatPDF},
		{"JANE_DOE.PDF", FormatPDF},
		{"resume.docx", FormatDOCX},
		{"notes.txt", FormatTXT},
		{"legacy.doc", FormatUnknown},
		{"no-extension", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename))
		})
	}
}

func TestServiceErrorRetryable(t *testing.T) {
	assert.True(t, (&ServiceError{Kind: ServiceTimeout}).Retryable())
	assert.True(t, (&ServiceError{Kind: ServiceUnavailable}).Retryable())
	assert.False(t, (&ServiceError{Kind: ServiceAuth}).Retryable())
	assert.False(t, (&ServiceError{Kind: ServiceRejected}).Retryable())
}

func TestIsAuthError(t *testing.T) {
	auth := &ServiceError{Kind: ServiceAuth, Err: errors.New("401")}

	assert.True(t, IsAuthError(auth))
	assert.True(t, IsAuthError(fmt.Errorf("scoring: %w", auth)))
	assert.False(t, IsAuthError(&ServiceError{Kind: ServiceTimeout}))
	assert.False(t, IsAuthError(nil))
}

func TestExtractionErrorUnwrap(t *testing.T) {
	cause := errors.New("malformed xref")
	err := fmt.Errorf("read: %w", &ExtractionError{Reason: ReasonCorruptFile, Err: cause})

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
	assert.Equal(t, ReasonCorruptFile, extErr.Reason)
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, extErr.Remark())
}

func TestJobDescriptionNormalization(t *testing.T) {
	jd := JobDescription{Text: "Senior  Go\tEngineer\n\nKubernetes", Normalized: NormalizeJobText("Senior  Go\tEngineer\n\nKubernetes")}

	assert.Equal(t, "senior go engineer kubernetes", jd.Normalized)
	assert.False(t, jd.IsEmpty())
	assert.Len(t, jd.Fingerprint(), 12)

	other := JobDescription{Normalized: NormalizeJobText("SENIOR go ENGINEER kubernetes")}
	assert.Equal(t, jd.Fingerprint(), other.Fingerprint())
}

func TestParseDecision(t *testing.T) {
	for _, in := range []string{"invite", "INVITE", "interview"} {
		d, err := ParseDecision(in)
		assert.NoError(t, err)
		assert.Equal(t, DecisionInvite, d)
	}
	for _, in := range []string{"reject", "rejection"} {
		d, err := ParseDecision(in)
		assert.NoError(t, err)
		assert.Equal(t, DecisionReject, d)
	}
	_, err := ParseDecision("maybe")
	assert.Error(t, err)
}

func TestFailedEvaluation(t *testing.T) {
	ev := FailedEvaluation(2, "cv.pdf", "CORRUPT_FILE", "unreadable")

	assert.Equal(t, "03-cv.pdf", ev.CandidateID)
	assert.Equal(t, ParseFailed, ev.ParseStatus)
	assert.Equal(t, 0, ev.Score)
	assert.NotNil(t, ev.MissingSkills)
	assert.Empty(t, ev.MissingSkills)
}
