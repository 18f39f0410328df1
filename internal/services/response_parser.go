package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"alfredoptarigan/resume-screener/internal/models"
)

const unparseableRemark = "Could not parse AI response."

type ResponseParser interface {
	// Parse never fails: unusable output becomes a FAILED evaluation.
	Parse(raw string, candidateID string) models.CandidateEvaluation
}

type responseParser struct{}

func NewResponseParser() ResponseParser {
	return &responseParser{}
}

// Parse implements ResponseParser.
func (p *responseParser) Parse(raw string, candidateID string) models.CandidateEvaluation {
	ev := models.CandidateEvaluation{
		CandidateID:   candidateID,
		MissingSkills: []string{},
		ParseStatus:   models.ParseOK,
	}

	obj, ok := locateJSONObject(raw)
	if !ok {
		ev.ParseStatus = models.ParseFailed
		ev.Remarks = unparseableRemark
		return ev
	}

	root := gjson.Parse(obj)

	score, ok := readScore(root.Get("score"))
	if !ok {
		ev.ParseStatus = models.ParsePartial
	}
	if score < models.MinScore || score > models.MaxScore {
		score = max(models.MinScore, min(models.MaxScore, score))
		ev.ParseStatus = models.ParsePartial
	}
	ev.Score = score

	ev.MissingSkills = readSkills(root.Get("missing_skills"))
	ev.Remarks = readRemarks(root.Get("remarks"))

	return ev
}

// maxObjectStarts caps how many '{' positions recovery scans from, keeping
// the search linear in the response length.
const maxObjectStarts = 64

// locateJSONObject returns the whole response when it is a JSON object,
// otherwise the first balanced {...} span that is (or can be repaired into)
// one.
func locateJSONObject(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isJSONObject(trimmed) {
		return trimmed, true
	}

	tried := 0
	for start := 0; start < len(trimmed) && tried < maxObjectStarts; start++ {
		if trimmed[start] != '{' {
			continue
		}
		tried++
		end := matchingBrace(trimmed, start)
		if end < 0 {
			continue
		}

		candidate := trimmed[start : end+1]
		if isJSONObject(candidate) {
			return candidate, true
		}
		if repaired := removeTrailingCommas(candidate); isJSONObject(repaired) {
			return repaired, true
		}
	}

	return "", false
}

func isJSONObject(s string) bool {
	return s != "" && gjson.Valid(s) && gjson.Parse(s).IsObject()
}

// matchingBrace finds the '}' closing the '{' at start, ignoring braces
// inside JSON strings. Returns -1 when the object never closes.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// removeTrailingCommas drops commas that directly precede '}' or ']'
// outside of strings.
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func readScore(v gjson.Result) (int, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.Str), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// Clamp before converting so huge values cannot overflow int.
	if f < -1 {
		f = -1
	}
	if f > models.MaxScore+1 {
		f = models.MaxScore + 1
	}
	return int(math.Round(f)), true
}

func readSkills(v gjson.Result) []string {
	skills := []string{}

	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return skills
	case v.IsArray():
		for _, item := range v.Array() {
			if s := scalarText(item); s != "" {
				skills = append(skills, s)
			}
		}
	case v.IsObject():
		return skills
	default:
		if s := scalarText(v); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func scalarText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return strings.TrimSpace(v.Str)
	default:
		return strings.TrimSpace(v.Raw)
	}
}

func readRemarks(v gjson.Result) string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return strings.TrimSpace(v.Str)
	default:
		return v.Raw
	}
}

type evaluationPayload struct {
	Score         int      `json:"score"`
	MissingSkills []string `json:"missing_skills"`
	Remarks       string   `json:"remarks"`
}

// SerializeEvaluation renders ev in the response schema the parser reads.
func SerializeEvaluation(ev models.CandidateEvaluation) string {
	skills := ev.MissingSkills
	if skills == nil {
		skills = []string{}
	}

	out, err := json.Marshal(evaluationPayload{
		Score:         ev.Score,
		MissingSkills: skills,
		Remarks:       ev.Remarks,
	})
	if err != nil {
		return "{}"
	}
	return string(out)
}
