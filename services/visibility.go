package services

import (
	"fmt"

	"gorm.io/gorm"

	"survey_app_go/models"
)

// The visibility model is default-on: an entity with no override row is
// visible. Every visibility decision in the application goes through
// the resolver functions below rather than ad-hoc row lookups.

// IsCategoryVisible returns the category-level flag for categoryID, or
// true when no category-level row exists.
func IsCategoryVisible(overrides []models.QuestionVisibility, categoryID string) bool {
	for i := range overrides {
		if overrides[i].CategoryID == categoryID && overrides[i].IsCategoryLevel() {
			return overrides[i].IsVisible
		}
	}
	return true
}

// IsQuestionVisible returns the question-level flag for the given
// question, or true when no row exists for it.
func IsQuestionVisible(overrides []models.QuestionVisibility, categoryID, questionID string) bool {
	for i := range overrides {
		if overrides[i].CategoryID == categoryID &&
			overrides[i].QuestionID != nil && *overrides[i].QuestionID == questionID {
			return overrides[i].IsVisible
		}
	}
	return true
}

// ResolveVisibleCategories filters the catalog down to what a given
// override set exposes, in stable catalog order. Hidden categories are
// dropped whole; visible categories have their question lists filtered.
// A category left with zero visible questions cannot be scored and is
// dropped entirely.
func ResolveVisibleCategories(catalog []models.Category, overrides []models.QuestionVisibility) []models.Category {
	visible := make([]models.Category, 0, len(catalog))
	for _, category := range catalog {
		if !IsCategoryVisible(overrides, category.ID) {
			continue
		}

		questions := make([]models.CategoryQuestion, 0, len(category.Questions))
		for _, q := range category.Questions {
			if IsQuestionVisible(overrides, category.ID, q.ID) {
				questions = append(questions, q)
			}
		}
		if len(questions) == 0 {
			continue
		}

		filtered := category
		filtered.Questions = questions
		filtered.OverallQuestion.MaxScore = CategoryMaxScore(filtered)
		visible = append(visible, filtered)
	}
	return visible
}

// ToggleCategory flips the category-level flag and returns the updated
// override set. Hiding a category cascades an explicit isVisible=false
// to every question under it, so that re-showing the category later
// does not silently reveal questions that were never individually
// re-enabled. Showing a category does NOT cascade; the asymmetry is
// intentional and must not be "fixed".
func ToggleCategory(overrides []models.QuestionVisibility, configID, configType, categoryID string) []models.QuestionVisibility {
	currentlyVisible := IsCategoryVisible(overrides, categoryID)

	result := make([]models.QuestionVisibility, 0, len(overrides)+1)
	for _, o := range overrides {
		if o.CategoryID == categoryID && o.IsCategoryLevel() {
			continue
		}
		result = append(result, o)
	}
	result = append(result, models.QuestionVisibility{
		ConfigID:   configID,
		ConfigType: configType,
		CategoryID: categoryID,
		QuestionID: nil,
		IsVisible:  !currentlyVisible,
	})

	if currentlyVisible {
		// Cascade the hide to every question in the category.
		category := models.CategoryByID(categoryID)
		if category != nil {
			for _, q := range category.Questions {
				result = setQuestionOverride(result, configID, configType, categoryID, q.ID, false)
			}
		}
	}

	return result
}

// ToggleQuestion flips one question's flag. The category-level flag is
// untouched.
func ToggleQuestion(overrides []models.QuestionVisibility, configID, configType, categoryID, questionID string) []models.QuestionVisibility {
	currentlyVisible := IsQuestionVisible(overrides, categoryID, questionID)
	return setQuestionOverride(overrides, configID, configType, categoryID, questionID, !currentlyVisible)
}

// setQuestionOverride replaces or appends the row for one question,
// keeping at most one row per key.
func setQuestionOverride(overrides []models.QuestionVisibility, configID, configType, categoryID, questionID string, isVisible bool) []models.QuestionVisibility {
	for i := range overrides {
		if overrides[i].CategoryID == categoryID &&
			overrides[i].QuestionID != nil && *overrides[i].QuestionID == questionID {
			overrides[i].IsVisible = isVisible
			return overrides
		}
	}
	qid := questionID
	return append(overrides, models.QuestionVisibility{
		ConfigID:   configID,
		ConfigType: configType,
		CategoryID: categoryID,
		QuestionID: &qid,
		IsVisible:  isVisible,
	})
}

// GetOverrides loads the override rows for one config.
func GetOverrides(db *gorm.DB, configID, configType string) ([]models.QuestionVisibility, error) {
	var overrides []models.QuestionVisibility
	err := db.Where("config_id = ? AND config_type = ?", configID, configType).
		Order("created_at ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load visibility overrides: %w", err)
	}
	return overrides, nil
}

// ReplaceOverrides atomically swaps the whole override set for one
// config. The delete and insert run inside a single transaction so a
// failure cannot leave the config half-updated (the original
// delete-then-insert sequence had a partial-state window).
func ReplaceOverrides(db *gorm.DB, configID, configType string, overrides []models.QuestionVisibility) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("config_id = ? AND config_type = ?", configID, configType).
			Delete(&models.QuestionVisibility{}).Error; err != nil {
			return fmt.Errorf("failed to clear visibility overrides: %w", err)
		}

		if len(overrides) == 0 {
			return nil
		}

		rows := make([]models.QuestionVisibility, 0, len(overrides))
		for _, o := range overrides {
			rows = append(rows, models.QuestionVisibility{
				ConfigID:   configID,
				ConfigType: configType,
				CategoryID: o.CategoryID,
				QuestionID: o.QuestionID,
				IsVisible:  o.IsVisible,
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert visibility overrides: %w", err)
		}
		return nil
	})
}

// ClearOverrides deletes every override row for one config, restoring
// the default-on state.
func ClearOverrides(db *gorm.DB, configID, configType string) error {
	if err := db.Where("config_id = ? AND config_type = ?", configID, configType).
		Delete(&models.QuestionVisibility{}).Error; err != nil {
		return fmt.Errorf("failed to clear visibility overrides: %w", err)
	}
	return nil
}
