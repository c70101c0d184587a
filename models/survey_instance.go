package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SurveyInstance is a single shareable survey link cloned from a
// template. It carries its own copy of the template's visibility
// overrides: later edits to the template do not propagate.
type SurveyInstance struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TemplateID string     `gorm:"type:uuid;not null;index" json:"template_id"`
	CompanyID  *string    `gorm:"type:uuid;index" json:"company_id,omitempty"`
	URLSlug    string     `gorm:"uniqueIndex;not null;type:varchar(21)" json:"url_slug"`
	Name       string     `gorm:"not null" json:"name"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	// Relationships
	Template SurveyTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Company  *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	// Populated by the service layer (see SurveyTemplate.Visibility).
	Visibility []QuestionVisibility `gorm:"-" json:"visibility,omitempty"`
}

// BeforeCreate hook to generate UUID
func (si *SurveyInstance) BeforeCreate(tx *gorm.DB) error {
	if si.ID == "" {
		si.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for SurveyInstance model
func (SurveyInstance) TableName() string {
	return "survey_instances"
}

// IsExpired checks if the instance has passed its expiry timestamp.
// Instances with no expiry never expire.
func (si *SurveyInstance) IsExpired() bool {
	return si.ExpiresAt != nil && time.Now().After(*si.ExpiresAt)
}

// IsResolvable reports whether the public link should still serve the
// survey. Evaluated at resolution time, not submission time.
func (si *SurveyInstance) IsResolvable() bool {
	return si.IsActive && !si.IsExpired()
}
