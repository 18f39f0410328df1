package models

import (
	"fmt"
	"strings"
)

type Decision string

const (
	DecisionInvite Decision = "INVITE"
	DecisionReject Decision = "REJECT"
)

// ParseDecision accepts the API spellings as well as the original
// "interview"/"rejection" form values.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invite", "interview":
		return DecisionInvite, nil
	case "reject", "rejection":
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("unknown decision %q", s)
	}
}

type Email struct {
	CandidateID string   `json:"candidate_id,omitempty"`
	To          string   `json:"to,omitempty"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Decision    Decision `json:"decision"`
	Generated   bool     `json:"generated"`
}
