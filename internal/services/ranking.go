package services

import (
	"sort"

	"alfredoptarigan/resume-screener/internal/models"
)

// Rank orders evaluations by score descending, ties broken by upload
// position, and assigns 1-based ranks. FAILED evaluations are ranked at
// their score like any other. The input slice is left untouched.
func Rank(evaluations []models.CandidateEvaluation) models.RankedResult {
	ranked := make(models.RankedResult, len(evaluations))
	copy(ranked, evaluations)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Position < ranked[j].Position
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
