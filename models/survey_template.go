package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SurveyTemplate is a reusable named configuration of category and
// question visibility. Templates own override rows with
// ConfigType=template; instances clone those rows at creation time.
type SurveyTemplate struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Populated by the service layer; not a GORM association because
	// override rows are shared with instances via (ConfigID, ConfigType).
	Visibility []QuestionVisibility `gorm:"-" json:"visibility,omitempty"`
}

// BeforeCreate hook to generate UUID
func (st *SurveyTemplate) BeforeCreate(tx *gorm.DB) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for SurveyTemplate model
func (SurveyTemplate) TableName() string {
	return "survey_templates"
}
