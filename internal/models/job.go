package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// JobDescription keeps the JD text used in prompts alongside a normalized
// form that is only used for matching.
type JobDescription struct {
	Text       string
	Normalized string
}

func NormalizeJobText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func (j JobDescription) IsEmpty() bool {
	return j.Normalized == ""
}

func (j JobDescription) Fingerprint() string {
	sum := sha256.Sum256([]byte(j.Normalized))
	return hex.EncodeToString(sum[:])[:12]
}

type ScoringRequest struct {
	System    string
	Prompt    string
	Truncated bool
}
