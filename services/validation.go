package services

import (
	"fmt"
	"strings"

	"survey_app_go/models"
)

// ValidationError is a client-visible submission error. It blocks the
// write and is surfaced inline to the respondent.
type ValidationError struct {
	Field  string // which part of the submission failed
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewMissingFieldError reports a required identity field left blank.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("%s is required", field),
	}
}

// NewIncompleteCategoryError reports a visible category with unanswered
// questions. A rating of 0 counts as unanswered: valid ratings start at 1.
func NewIncompleteCategoryError(categoryName string) *ValidationError {
	return &ValidationError{
		Field:  "scores",
		Reason: fmt.Sprintf("Please answer all questions in %s", categoryName),
	}
}

// NewInvalidRatingError reports a rating outside the question's
// 1..maxScore range.
func NewInvalidRatingError(categoryName string, maxScore int) *ValidationError {
	return &ValidationError{
		Field:  "scores",
		Reason: fmt.Sprintf("Ratings in %s must be between 1 and %d", categoryName, maxScore),
	}
}

// ValidateResponse checks a submission against the categories visible
// for its survey link. Respondent name and email are optional; the
// company name and an in-range rating for every visible question are
// not. Ratings must stay within 1..maxScore so the recomputed totals
// cannot exceed the survey's maximum. Returns nil when the submission
// is acceptable.
func ValidateResponse(response *models.SurveyResponse, visibleCategories []models.Category) error {
	if strings.TrimSpace(response.CompanyName) == "" {
		return NewMissingFieldError("company name")
	}

	for _, category := range visibleCategories {
		answers := response.Scores[category.ID]
		for _, q := range category.Questions {
			rating := answers[q.ID]
			if rating == 0 {
				return NewIncompleteCategoryError(category.Name)
			}
			if rating < 0 || rating > q.MaxScore {
				return NewInvalidRatingError(category.Name, q.MaxScore)
			}
		}
	}

	return nil
}
