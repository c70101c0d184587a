package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Config types for visibility overrides
const (
	ConfigTypeTemplate = "template"
	ConfigTypeInstance = "instance"
)

// QuestionVisibility is a show/hide override for one category or one
// question, scoped to a template or a specific instance. A row with a
// nil QuestionID controls the whole category. Absence of a row means
// "visible" (default-on policy). At most one effective row exists per
// (ConfigID, ConfigType, CategoryID, QuestionID): updates replace the
// whole override set for a config rather than editing rows in place.
type QuestionVisibility struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ConfigID   string  `gorm:"type:uuid;not null;index:idx_visibility_config" json:"config_id"`
	ConfigType string  `gorm:"not null;index:idx_visibility_config" json:"config_type"` // template, instance
	CategoryID string  `gorm:"not null" json:"category_id"`
	QuestionID *string `json:"question_id"` // nil = category-level row
	IsVisible  bool    `gorm:"not null;default:true" json:"is_visible"`
}

// BeforeCreate hook to generate UUID
func (qv *QuestionVisibility) BeforeCreate(tx *gorm.DB) error {
	if qv.ID == "" {
		qv.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for QuestionVisibility model
func (QuestionVisibility) TableName() string {
	return "survey_question_visibility"
}

// IsCategoryLevel reports whether the row controls a whole category.
func (qv *QuestionVisibility) IsCategoryLevel() bool {
	return qv.QuestionID == nil || *qv.QuestionID == ""
}

// IsValidConfigType checks if the config type is valid
func IsValidConfigType(configType string) bool {
	return configType == ConfigTypeTemplate || configType == ConfigTypeInstance
}
