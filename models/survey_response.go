package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScoreMap stores ratings as category_id -> question_id -> rating,
// serialized to a JSON text column.
type ScoreMap map[string]map[string]int

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

func (m *ScoreMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// CommentMap stores free-text comments as category_id -> comment,
// serialized to a JSON text column.
type CommentMap map[string]string

func (m CommentMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

func (m *CommentMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", value)
	}
}

// SurveyResponse is one completed questionnaire. Responses are
// immutable once stored: the core only creates and reads them
// (administrative deletion is allowed from the dashboard).
type SurveyResponse struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CompanyName     string  `gorm:"not null;index" json:"company_name"`
	RespondentName  string  `json:"respondent_name,omitempty"`
	RespondentEmail string  `json:"respondent_email,omitempty"`
	InstanceID      *string `gorm:"type:uuid;index" json:"instance_id,omitempty"`
	Quarter         string  `json:"quarter,omitempty"`
	PolicyYear      string  `json:"policy_year,omitempty"`

	Scores   ScoreMap   `gorm:"type:text" json:"scores"`
	Comments CommentMap `gorm:"type:text" json:"comments"`

	// Totals are recomputed server-side at submission time; any
	// client-supplied values are ignored.
	TotalScore       int     `gorm:"not null" json:"total_score"`
	MaxPossibleScore int     `gorm:"not null" json:"max_possible_score"`
	PercentageScore  float64 `gorm:"not null" json:"percentage_score"`

	SubmittedAt time.Time `gorm:"not null;index" json:"submitted_at"`

	// Relationships
	Instance *SurveyInstance `gorm:"foreignKey:InstanceID" json:"instance,omitempty"`
}

// BeforeCreate hook to generate UUID
func (sr *SurveyResponse) BeforeCreate(tx *gorm.DB) error {
	if sr.ID == "" {
		sr.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for SurveyResponse model
func (SurveyResponse) TableName() string {
	return "survey_responses"
}

// CategoryScore returns the stored rating for one question, 0 when the
// question was not answered.
func (sr *SurveyResponse) CategoryScore(categoryID, questionID string) int {
	if sr.Scores == nil {
		return 0
	}
	return sr.Scores[categoryID][questionID]
}
