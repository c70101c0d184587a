package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"survey_app_go/models"
)

// Resolution errors for the public survey link, mapped to 404 / 410 at
// the HTTP boundary.
var (
	ErrInstanceNotFound = errors.New("survey not found")
	ErrInstanceGone     = errors.New("survey is no longer available")
)

// GetInstances returns all instances, newest first, with template and
// company relations and override rows attached.
func GetInstances(db *gorm.DB) ([]models.SurveyInstance, error) {
	var instances []models.SurveyInstance
	err := db.Preload("Template").Preload("Company").
		Order("created_at DESC").
		Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instances: %w", err)
	}

	var overrides []models.QuestionVisibility
	if err := db.Where("config_type = ?", models.ConfigTypeInstance).Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch instance overrides: %w", err)
	}

	byConfig := make(map[string][]models.QuestionVisibility)
	for _, o := range overrides {
		byConfig[o.ConfigID] = append(byConfig[o.ConfigID], o)
	}
	for i := range instances {
		instances[i].Visibility = byConfig[instances[i].ID]
	}

	return instances, nil
}

// GetInstanceByID returns one instance with relations and overrides.
func GetInstanceByID(db *gorm.DB, id string) (*models.SurveyInstance, error) {
	var instance models.SurveyInstance
	err := db.Preload("Template").Preload("Company").
		First(&instance, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	overrides, err := GetOverrides(db, instance.ID, models.ConfigTypeInstance)
	if err != nil {
		return nil, err
	}
	instance.Visibility = overrides

	return &instance, nil
}

// CreateInstance provisions a shareable survey link from a template:
// mints a random slug and clones every template override row verbatim
// (same categoryId/questionId/isVisible, new configId/configType) in a
// single transaction. An instance whose template had no overrides
// behaves as all-visible.
func CreateInstance(db *gorm.DB, templateID, name string, companyID *string, expiresAt *time.Time) (*models.SurveyInstance, error) {
	var template models.SurveyTemplate
	if err := db.First(&template, "id = ?", templateID).Error; err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	slug, err := GenerateSlug()
	if err != nil {
		return nil, err
	}

	instance := &models.SurveyInstance{
		TemplateID: templateID,
		CompanyID:  companyID,
		URLSlug:    slug,
		Name:       name,
		IsActive:   true,
		ExpiresAt:  expiresAt,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(instance).Error; err != nil {
			return fmt.Errorf("failed to create instance: %w", err)
		}

		templateOverrides, err := GetOverrides(tx, templateID, models.ConfigTypeTemplate)
		if err != nil {
			return err
		}
		if len(templateOverrides) == 0 {
			return nil
		}

		cloned := make([]models.QuestionVisibility, 0, len(templateOverrides))
		for _, o := range templateOverrides {
			cloned = append(cloned, models.QuestionVisibility{
				ConfigID:   instance.ID,
				ConfigType: models.ConfigTypeInstance,
				CategoryID: o.CategoryID,
				QuestionID: o.QuestionID,
				IsVisible:  o.IsVisible,
			})
		}
		if err := tx.Create(&cloned).Error; err != nil {
			return fmt.Errorf("failed to clone template overrides: %w", err)
		}

		instance.Visibility = cloned
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetInstanceByID(db, instance.ID)
}

// ResolveInstanceBySlug resolves a public survey link.
// ErrInstanceNotFound when no instance matches; ErrInstanceGone when
// the instance is deactivated or past its expiry. Expiry is evaluated
// here, at resolution time only: an instance that expires between page
// load and submit is accepted (known gap, kept deliberately).
func ResolveInstanceBySlug(db *gorm.DB, slug string) (*models.SurveyInstance, error) {
	var instance models.SurveyInstance
	err := db.Preload("Template").Preload("Company").
		Where("url_slug = ?", slug).
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to resolve instance: %w", err)
	}

	if !instance.IsResolvable() {
		return nil, ErrInstanceGone
	}

	overrides, err := GetOverrides(db, instance.ID, models.ConfigTypeInstance)
	if err != nil {
		return nil, err
	}
	instance.Visibility = overrides

	return &instance, nil
}

// InstanceUpdate carries the PATCHable instance fields. Pointers
// distinguish "not sent" from zero values; ExpiresAt uses a double
// pointer so the caller can explicitly clear the expiry.
type InstanceUpdate struct {
	Name      *string
	IsActive  *bool
	ExpiresAt **time.Time
}

// UpdateInstance applies a partial update to an instance.
func UpdateInstance(db *gorm.DB, id string, update InstanceUpdate) (*models.SurveyInstance, error) {
	var instance models.SurveyInstance
	if err := db.First(&instance, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil && *update.Name != "" {
		updates["name"] = *update.Name
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}
	if update.ExpiresAt != nil {
		updates["expires_at"] = *update.ExpiresAt
	}

	if len(updates) > 0 {
		if err := db.Model(&instance).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update instance: %w", err)
		}
	}

	return GetInstanceByID(db, id)
}

// DeleteInstance removes an instance and its override rows in one
// transaction. Responses submitted through the instance are kept.
func DeleteInstance(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("config_id = ? AND config_type = ?", id, models.ConfigTypeInstance).
			Delete(&models.QuestionVisibility{}).Error; err != nil {
			return fmt.Errorf("failed to delete instance overrides: %w", err)
		}
		if err := tx.Delete(&models.SurveyInstance{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete instance: %w", err)
		}
		return nil
	})
}
