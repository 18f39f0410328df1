package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-screener/internal/models"
)

func sampleResult() *models.ScreeningResult {
	return &models.ScreeningResult{
		BatchID:        uuid.New(),
		JobFingerprint: "abc123def456",
		CreatedAt:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Ranked: models.RankedResult{
			{CandidateID: "02-bob.pdf", Filename: "bob.pdf", Position: 1, Rank: 1, Score: 91, MissingSkills: []string{"Kafka", "gRPC"}, Remarks: "Strong fit", ParseStatus: models.ParseOK},
			{CandidateID: "01-alice.docx", Filename: "alice.docx", Position: 0, Rank: 2, Score: 64, MissingSkills: []string{}, Remarks: "Junior", ParseStatus: models.ParsePartial},
			models.FailedEvaluation(2, "scan.pdf", "EMPTY_RESULT", "No text"),
		},
		Emails: []models.Email{
			{CandidateID: "02-bob.pdf", Subject: "Interview invitation", Body: "Hi Bob", Decision: models.DecisionInvite},
		},
	}
}

func TestWriteReport(t *testing.T) {
	result := sampleResult()
	result.Ranked[2].Rank = 3

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, result, ReportMeta{JobTitle: "Backend Engineer", JobDescription: "Go"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, candidatesSheet, emailsSheet}, f.GetSheetList())

	rows, err := f.GetRows(candidatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Rank", "Candidate ID", "File", "Score", "Status", "Missing Skills", "Remarks", "Failure"}, rows[0])
	assert.Equal(t, []string{"1", "02-bob.pdf", "bob.pdf", "91", "OK", "Kafka, gRPC", "Strong fit"}, rows[1][:7])
	assert.Equal(t, "FAILED", rows[3][4])
	assert.Equal(t, "EMPTY_RESULT", rows[3][7])

	title, err := f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", title)

	avg, err := f.GetCellValue(summarySheet, "B9")
	require.NoError(t, err)
	assert.Equal(t, "77.5", avg)

	emailRows, err := f.GetRows(emailsSheet)
	require.NoError(t, err)
	require.Len(t, emailRows, 2)
	assert.Equal(t, "INVITE", emailRows[1][2])
}

func TestWriteReportWithoutEmails(t *testing.T) {
	result := sampleResult()
	result.Emails = nil

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, result, ReportMeta{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, candidatesSheet}, f.GetSheetList())
}

func TestSaveReportAddsExtension(t *testing.T) {
	path, err := SaveReport(filepath.Join(t.TempDir(), "report"), sampleResult(), ReportMeta{})

	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(candidatesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
