package services

import (
	"survey_app_go/models"
)

// SurveyTotals holds the aggregate scores for a whole submission.
type SurveyTotals struct {
	Total       int     `json:"total"`
	MaxPossible int     `json:"max_possible"`
	Percentage  float64 `json:"percentage"`
}

// CategoryOverallScore returns the sum of the given ratings over the
// category's input questions. Missing entries count as 0. This value is
// the category's derived "overall" rating; there is no independently
// entered overall score.
func CategoryOverallScore(category models.Category, answers map[string]int) int {
	total := 0
	for _, q := range category.Questions {
		total += answers[q.ID]
	}
	return total
}

// CategoryMaxScore returns the sum of MaxScore over the category's
// input questions. The caller passes a category whose question list has
// already been visibility-filtered, so the maximum shrinks as questions
// are hidden.
func CategoryMaxScore(category models.Category) int {
	max := 0
	for _, q := range category.Questions {
		max += q.MaxScore
	}
	return max
}

// ComputeSurveyTotals aggregates every category's overall score and
// maximum into survey-wide totals. Percentage is 0 when nothing is
// scorable, never NaN.
func ComputeSurveyTotals(categories []models.Category, scores models.ScoreMap) SurveyTotals {
	totals := SurveyTotals{}
	for _, category := range categories {
		totals.Total += CategoryOverallScore(category, scores[category.ID])
		totals.MaxPossible += CategoryMaxScore(category)
	}
	if totals.MaxPossible > 0 {
		totals.Percentage = 100 * float64(totals.Total) / float64(totals.MaxPossible)
	}
	return totals
}
