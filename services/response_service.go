package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"survey_app_go/models"
)

// commentPolicy strips dangerous markup from respondent comments while
// keeping harmless formatting.
var commentPolicy = bluemonday.UGCPolicy()

// SubmitResponse runs the full submission pipeline against the
// categories visible for the response's survey link: validate, sanitize
// comments, recompute totals server-side, then insert. Any totals the
// client sent are discarded. Returns a *ValidationError (no store write
// performed) when the submission is incomplete.
func SubmitResponse(db *gorm.DB, response *models.SurveyResponse, overrides []models.QuestionVisibility) error {
	visibleCategories := ResolveVisibleCategories(models.SurveyCategories, overrides)

	if err := ValidateResponse(response, visibleCategories); err != nil {
		return err
	}

	response.CompanyName = strings.TrimSpace(response.CompanyName)
	response.RespondentName = strings.TrimSpace(response.RespondentName)
	response.RespondentEmail = strings.TrimSpace(response.RespondentEmail)

	// Keep only ratings for questions that are actually visible, and
	// store the derived per-category overall alongside them so that
	// exports and the dashboard can read it without re-resolving
	// visibility.
	scores := make(models.ScoreMap, len(visibleCategories))
	for _, category := range visibleCategories {
		answers := response.Scores[category.ID]
		kept := make(map[string]int, len(category.Questions)+1)
		for _, q := range category.Questions {
			if rating := answers[q.ID]; rating != 0 {
				kept[q.ID] = rating
			}
		}
		kept[models.OverallQuestionID] = CategoryOverallScore(category, answers)
		scores[category.ID] = kept
	}
	response.Scores = scores

	comments := make(models.CommentMap, len(response.Comments))
	for _, category := range visibleCategories {
		if comment := strings.TrimSpace(response.Comments[category.ID]); comment != "" {
			comments[category.ID] = commentPolicy.Sanitize(comment)
		}
	}
	response.Comments = comments

	totals := ComputeSurveyTotals(visibleCategories, response.Scores)
	response.TotalScore = totals.Total
	response.MaxPossibleScore = totals.MaxPossible
	response.PercentageScore = totals.Percentage

	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now()
	}

	if err := db.Create(response).Error; err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// ResponseFilters narrows the dashboard listing and exports.
type ResponseFilters struct {
	CompanyName   string
	InstanceID    string
	Quarter       string
	DateFrom      time.Time
	DateTo        time.Time
	MinPercentage float64
	MaxPercentage float64 // 0 means no upper bound
}

func (f ResponseFilters) apply(query *gorm.DB) *gorm.DB {
	if f.CompanyName != "" {
		query = query.Where("company_name LIKE ?", "%"+f.CompanyName+"%")
	}
	if f.InstanceID != "" {
		query = query.Where("instance_id = ?", f.InstanceID)
	}
	if f.Quarter != "" {
		query = query.Where("quarter = ?", f.Quarter)
	}
	if !f.DateFrom.IsZero() {
		query = query.Where("submitted_at >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		query = query.Where("submitted_at <= ?", f.DateTo)
	}
	if f.MinPercentage > 0 {
		query = query.Where("percentage_score >= ?", f.MinPercentage)
	}
	if f.MaxPercentage > 0 {
		query = query.Where("percentage_score <= ?", f.MaxPercentage)
	}
	return query
}

// GetResponses lists stored responses, newest first.
func GetResponses(db *gorm.DB, filters ResponseFilters) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	query := filters.apply(db.Model(&models.SurveyResponse{}))
	err := query.Preload("Instance").Order("submitted_at DESC").Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}
	return responses, nil
}

// GetResponseByID returns one stored response.
func GetResponseByID(db *gorm.DB, id string) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := db.Preload("Instance").First(&response, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteResponse removes a response (administrative dashboard action;
// the survey core itself never mutates stored responses).
func DeleteResponse(db *gorm.DB, id string) error {
	result := db.Delete(&models.SurveyResponse{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DashboardStats summarizes stored responses for the admin dashboard.
type DashboardStats struct {
	ResponseCount     int64              `json:"response_count"`
	CompanyCount      int64              `json:"company_count"`
	InstanceCount     int64              `json:"instance_count"`
	ActiveInstances   int64              `json:"active_instances"`
	AveragePercentage float64            `json:"average_percentage"`
	CategoryAverages  map[string]float64 `json:"category_averages"`
}

// GetDashboardStats computes dashboard aggregates over the filtered
// response set.
func GetDashboardStats(db *gorm.DB, filters ResponseFilters) (*DashboardStats, error) {
	stats := &DashboardStats{CategoryAverages: map[string]float64{}}

	if err := db.Model(&models.Company{}).Count(&stats.CompanyCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	if err := db.Model(&models.SurveyInstance{}).Count(&stats.InstanceCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count instances: %w", err)
	}
	if err := db.Model(&models.SurveyInstance{}).Where("is_active = ?", true).Count(&stats.ActiveInstances).Error; err != nil {
		return nil, fmt.Errorf("failed to count active instances: %w", err)
	}

	responses, err := GetResponses(db, filters)
	if err != nil {
		return nil, err
	}
	stats.ResponseCount = int64(len(responses))
	if len(responses) == 0 {
		return stats, nil
	}

	var percentageSum float64
	categorySums := map[string]int{}
	categoryCounts := map[string]int{}
	for _, r := range responses {
		percentageSum += r.PercentageScore
		for _, category := range models.SurveyCategories {
			if answers, ok := r.Scores[category.ID]; ok {
				categorySums[category.ID] += answers[models.OverallQuestionID]
				categoryCounts[category.ID]++
			}
		}
	}
	stats.AveragePercentage = percentageSum / float64(len(responses))
	for id, count := range categoryCounts {
		if count > 0 {
			stats.CategoryAverages[id] = float64(categorySums[id]) / float64(count)
		}
	}

	return stats, nil
}

// IsValidationError reports whether err came from submission
// validation rather than the store.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
