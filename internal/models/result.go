package models

type SummaryRequest struct {
	JobDescription string `json:"job_description"`
}

type SummaryResponse struct {
	Summary   string `json:"summary"`
	Generated bool   `json:"generated"`
}

type EmailRequest struct {
	Decision       string   `json:"decision"`
	CandidateName  string   `json:"candidate_name"`
	CandidateEmail string   `json:"candidate_email"`
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description"`
	Score          int      `json:"score"`
	MissingSkills  []string `json:"missing_skills"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
