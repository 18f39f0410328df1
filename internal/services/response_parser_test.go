package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantScore  int
		wantSkills []string
		wantRemark string
		wantStatus models.ParseStatus
	}{
		{
			name:       "plain object",
			raw:        `{"score": 72, "missing_skills": ["Go", "gRPC"], "remarks": "Solid backend experience"}`,
			wantScore:  72,
			wantSkills: []string{"Go", "gRPC"},
			wantRemark: "Solid backend experience",
			wantStatus: models.ParseOK,
		},
		{
			name:       "code fence with prose",
			raw:        "Here is the evaluation:\n```json\n{\"score\": 87, \"missing_skills\": [\"Kubernetes\"], \"remarks\": \"Strong fit\"}\n```\nLet me know if you need more.",
			wantScore:  87,
			wantSkills: []string{"Kubernetes"},
			wantRemark: "Strong fit",
			wantStatus: models.ParseOK,
		},
		{
			name:       "braces inside strings",
			raw:        `Result: {"score": 64, "missing_skills": [], "remarks": "Uses {templating} a lot }"} trailing`,
			wantScore:  64,
			wantSkills: []string{},
			wantRemark: "Uses {templating} a lot }",
			wantStatus: models.ParseOK,
		},
		{
			name:       "trailing commas repaired",
			raw:        "{\"score\": 55, \"missing_skills\": [\"AWS\",], \"remarks\": \"ok\",}",
			wantScore:  55,
			wantSkills: []string{"AWS"},
			wantRemark: "ok",
			wantStatus: models.ParseOK,
		},
		{
			name:       "numeric string score",
			raw:        `{"score": "78", "missing_skills": "Terraform", "remarks": "fine"}`,
			wantScore:  78,
			wantSkills: []string{"Terraform"},
			wantRemark: "fine",
			wantStatus: models.ParseOK,
		},
		{
			name:       "fractional score rounds",
			raw:        `{"score": 66.6, "missing_skills": null}`,
			wantScore:  67,
			wantSkills: []string{},
			wantRemark: "",
			wantStatus: models.ParseOK,
		},
		{
			name:       "score above range clamps",
			raw:        `{"score": 140, "missing_skills": [], "remarks": "x"}`,
			wantScore:  100,
			wantSkills: []string{},
			wantRemark: "x",
			wantStatus: models.ParsePartial,
		},
		{
			name:       "negative score clamps",
			raw:        `{"score": -5, "missing_skills": [], "remarks": "x"}`,
			wantScore:  0,
			wantSkills: []string{},
			wantRemark: "x",
			wantStatus: models.ParsePartial,
		},
		{
			name:       "missing score is partial",
			raw:        `{"missing_skills": ["SQL", "", 3], "remarks": "no score given"}`,
			wantScore:  0,
			wantSkills: []string{"SQL", "3"},
			wantRemark: "no score given",
			wantStatus: models.ParsePartial,
		},
		{
			name:       "non numeric score is partial",
			raw:        `{"score": "high", "missing_skills": [], "remarks": "x"}`,
			wantScore:  0,
			wantSkills: []string{},
			wantRemark: "x",
			wantStatus: models.ParsePartial,
		},
		{
			name:       "refusal",
			raw:        "I cannot evaluate this.",
			wantScore:  0,
			wantSkills: []string{},
			wantRemark: "Could not parse AI response.",
			wantStatus: models.ParseFailed,
		},
		{
			name:       "empty",
			raw:        "",
			wantScore:  0,
			wantSkills: []string{},
			wantRemark: "Could not parse AI response.",
			wantStatus: models.ParseFailed,
		},
		{
			name:       "truncated json",
			raw:        `{"score": 80, "missing_skills": ["Go"`,
			wantScore:  0,
			wantSkills: []string{},
			wantRemark: "Could not parse AI response.",
			wantStatus: models.ParseFailed,
		},
		{
			name:       "object inside broken array",
			raw:        `[{"score": 12, "remarks": "junior"}`,
			wantScore:  12,
			wantSkills: []string{},
			wantRemark: "junior",
			wantStatus: models.ParseOK,
		},
	}

	parser := NewResponseParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := parser.Parse(tt.raw, "01-cv.pdf")

			assert.Equal(t, "01-cv.pdf", ev.CandidateID)
			assert.Equal(t, tt.wantScore, ev.Score)
			assert.Equal(t, tt.wantSkills, ev.MissingSkills)
			assert.Equal(t, tt.wantRemark, ev.Remarks)
			assert.Equal(t, tt.wantStatus, ev.ParseStatus)
		})
	}
}

func TestParseResponseUnclosedBraces(t *testing.T) {
	parser := NewResponseParser()

	started := time.Now()
	ev := parser.Parse(strings.Repeat("{", 200000), "01-a.pdf")

	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, models.ParseFailed, ev.ParseStatus)
	assert.Equal(t, 0, ev.Score)

	ev = parser.Parse(`{ note: {"score": 77, "missing_skills": [], "remarks": "ok"}`, "01-a.pdf")
	assert.Equal(t, 77, ev.Score)
	assert.Equal(t, models.ParseOK, ev.ParseStatus)
}

func TestParseResponseScoreAlwaysInRange(t *testing.T) {
	parser := NewResponseParser()
	inputs := []string{
		`{"score": 1e300}`,
		`{"score": -1e300}`,
		`{"score": "999999999999999999999"}`,
		`{"score": true}`,
		`{"score": {"value": 3}}`,
	}

	for _, raw := range inputs {
		ev := parser.Parse(raw, "x")
		assert.GreaterOrEqual(t, ev.Score, models.MinScore, raw)
		assert.LessOrEqual(t, ev.Score, models.MaxScore, raw)
		assert.NotNil(t, ev.MissingSkills, raw)
	}
}

func TestSerializeEvaluationRoundTrip(t *testing.T) {
	original := models.CandidateEvaluation{
		Score:         91,
		MissingSkills: []string{"Rust", "Kafka \"streams\""},
		Remarks:       "Great {fit}, minor gaps",
		ParseStatus:   models.ParseOK,
	}

	ev := NewResponseParser().Parse(SerializeEvaluation(original), "02-a.docx")

	require.Equal(t, models.ParseOK, ev.ParseStatus)
	assert.Equal(t, original.Score, ev.Score)
	assert.Equal(t, original.MissingSkills, ev.MissingSkills)
	assert.Equal(t, original.Remarks, ev.Remarks)
}

func TestSerializeEvaluationNilSkills(t *testing.T) {
	assert.JSONEq(t, `{"score":0,"missing_skills":[],"remarks":""}`, SerializeEvaluation(models.CandidateEvaluation{}))
}
