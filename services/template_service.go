package services

import (
	"fmt"

	"gorm.io/gorm"

	"survey_app_go/models"
)

// DefaultTemplateOverrides returns the override set a template gets
// when the caller supplies none: one category-level "visible" row per
// catalog category.
func DefaultTemplateOverrides() []models.QuestionVisibility {
	overrides := make([]models.QuestionVisibility, 0, len(models.SurveyCategories))
	for _, category := range models.SurveyCategories {
		overrides = append(overrides, models.QuestionVisibility{
			CategoryID: category.ID,
			QuestionID: nil,
			IsVisible:  true,
		})
	}
	return overrides
}

// GetTemplates returns all templates, newest first, each with its
// override rows attached.
func GetTemplates(db *gorm.DB) ([]models.SurveyTemplate, error) {
	var templates []models.SurveyTemplate
	if err := db.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}

	// One query for all template overrides, grouped in memory.
	var overrides []models.QuestionVisibility
	if err := db.Where("config_type = ?", models.ConfigTypeTemplate).Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch template overrides: %w", err)
	}

	byConfig := make(map[string][]models.QuestionVisibility)
	for _, o := range overrides {
		byConfig[o.ConfigID] = append(byConfig[o.ConfigID], o)
	}
	for i := range templates {
		templates[i].Visibility = byConfig[templates[i].ID]
	}

	return templates, nil
}

// GetTemplateByID returns one template with its overrides.
func GetTemplateByID(db *gorm.DB, id string) (*models.SurveyTemplate, error) {
	var template models.SurveyTemplate
	if err := db.First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}

	overrides, err := GetOverrides(db, template.ID, models.ConfigTypeTemplate)
	if err != nil {
		return nil, err
	}
	template.Visibility = overrides

	return &template, nil
}

// CreateTemplate creates a template together with its override rows in
// one transaction. When overrides is empty the default all-visible set
// is written.
func CreateTemplate(db *gorm.DB, template *models.SurveyTemplate, overrides []models.QuestionVisibility) error {
	if len(overrides) == 0 {
		overrides = DefaultTemplateOverrides()
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		rows := make([]models.QuestionVisibility, 0, len(overrides))
		for _, o := range overrides {
			rows = append(rows, models.QuestionVisibility{
				ConfigID:   template.ID,
				ConfigType: models.ConfigTypeTemplate,
				CategoryID: o.CategoryID,
				QuestionID: o.QuestionID,
				IsVisible:  o.IsVisible,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create template overrides: %w", err)
		}

		template.Visibility = rows
		return nil
	})
	return err
}

// UpdateTemplate updates name/description and, when overrides is
// non-nil, atomically replaces the template's override set.
func UpdateTemplate(db *gorm.DB, id string, name, description string, overrides []models.QuestionVisibility) (*models.SurveyTemplate, error) {
	var template models.SurveyTemplate
	if err := db.First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if name != "" {
			updates["name"] = name
		}
		updates["description"] = description
		if err := tx.Model(&template).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}

		if overrides != nil {
			if err := ReplaceOverrides(tx, template.ID, models.ConfigTypeTemplate, overrides); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetTemplateByID(db, id)
}

// DeleteTemplate removes a template and its override rows in one
// transaction (overrides first, then the template).
func DeleteTemplate(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("config_id = ? AND config_type = ?", id, models.ConfigTypeTemplate).
			Delete(&models.QuestionVisibility{}).Error; err != nil {
			return fmt.Errorf("failed to delete template overrides: %w", err)
		}
		if err := tx.Delete(&models.SurveyTemplate{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		return nil
	})
}
