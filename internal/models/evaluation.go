package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ParseStatus string

const (
	ParseOK      ParseStatus = "OK"
	ParsePartial ParseStatus = "PARTIAL"
	ParseFailed  ParseStatus = "FAILED"
)

const (
	MinScore = 0
	MaxScore = 100
)

type CandidateEvaluation struct {
	CandidateID   string      `json:"candidate_id"`
	Filename      string      `json:"filename"`
	Position      int         `json:"position"`
	Rank          int         `json:"rank"`
	Score         int         `json:"score"`
	MissingSkills []string    `json:"missing_skills"`
	Remarks       string      `json:"remarks"`
	ParseStatus   ParseStatus `json:"parse_status"`
	// Failure holds the extraction or service failure that produced a FAILED
	// evaluation without a scoring response.
	Failure string `json:"failure,omitempty"`
}

// CandidateID ties an evaluation back to its upload slot.
func CandidateID(position int, filename string) string {
	return fmt.Sprintf("%02d-%s", position+1, filename)
}

// FailedEvaluation builds the FAILED slot for a candidate that never reached
// the response parser.
func FailedEvaluation(position int, filename, failure, remarks string) CandidateEvaluation {
	return CandidateEvaluation{
		CandidateID:   CandidateID(position, filename),
		Filename:      filename,
		Position:      position,
		Score:         MinScore,
		MissingSkills: []string{},
		Remarks:       remarks,
		ParseStatus:   ParseFailed,
		Failure:       failure,
	}
}

// RankedResult is ordered by score descending, ties by upload position.
type RankedResult []CandidateEvaluation

type ScreeningResult struct {
	BatchID        uuid.UUID    `json:"batch_id"`
	JobFingerprint string       `json:"job_fingerprint"`
	Ranked         RankedResult `json:"ranked"`
	Emails         []Email      `json:"emails,omitempty"`
	Partial        bool         `json:"partial"`
	CreatedAt      time.Time    `json:"created_at"`
}
