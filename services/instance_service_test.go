package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"survey_app_go/models"
)

func createTestTemplate(t *testing.T, db *gorm.DB, overrides []models.QuestionVisibility) *models.SurveyTemplate {
	template := &models.SurveyTemplate{Name: "Test Template"}
	assert.NoError(t, CreateTemplate(db, template, overrides))
	return template
}

func TestCreateInstanceClonesTemplateOverrides(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, []models.QuestionVisibility{
		{CategoryID: "presentation", QuestionID: nil, IsVisible: false},
		{CategoryID: "service_admin", QuestionID: stringToPtr("accuracy"), IsVisible: false},
	})

	instance, err := CreateInstance(db, template.ID, "Q1 Survey", nil, nil)
	assert.NoError(t, err)
	assert.Len(t, instance.URLSlug, SlugLength)
	assert.True(t, instance.IsActive)

	// Every template row cloned verbatim under the instance's key
	assert.Len(t, instance.Visibility, 2)
	for _, o := range instance.Visibility {
		assert.Equal(t, instance.ID, o.ConfigID)
		assert.Equal(t, models.ConfigTypeInstance, o.ConfigType)
	}
	assert.False(t, IsCategoryVisible(instance.Visibility, "presentation"))
	assert.False(t, IsQuestionVisible(instance.Visibility, "service_admin", "accuracy"))

	// Later template edits do not propagate to the instance
	_, err = UpdateTemplate(db, template.ID, "", "", []models.QuestionVisibility{
		{CategoryID: "claims_admin", QuestionID: nil, IsVisible: false},
	})
	assert.NoError(t, err)

	reloaded, err := GetInstanceByID(db, instance.ID)
	assert.NoError(t, err)
	assert.Len(t, reloaded.Visibility, 2)
	assert.True(t, IsCategoryVisible(reloaded.Visibility, "claims_admin"))
}

func TestCreateInstanceUnknownTemplate(t *testing.T) {
	db := setupTestDB(t)

	_, err := CreateInstance(db, "no-such-template", "Broken", nil, nil)
	assert.Error(t, err)
}

func TestCreateInstanceMintsUniqueSlugs(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		instance, err := CreateInstance(db, template.ID, "Survey", nil, nil)
		assert.NoError(t, err)
		assert.False(t, seen[instance.URLSlug])
		seen[instance.URLSlug] = true
	}
}

func TestResolveInstanceBySlug(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	instance, err := CreateInstance(db, template.ID, "Live Survey", nil, nil)
	assert.NoError(t, err)

	resolved, err := ResolveInstanceBySlug(db, instance.URLSlug)
	assert.NoError(t, err)
	assert.Equal(t, instance.ID, resolved.ID)
}

func TestResolveInstanceBySlugNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := ResolveInstanceBySlug(db, "nope123456")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestResolveInstanceBySlugDeactivated(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	instance, err := CreateInstance(db, template.ID, "Paused Survey", nil, nil)
	assert.NoError(t, err)

	inactive := false
	_, err = UpdateInstance(db, instance.ID, InstanceUpdate{IsActive: &inactive})
	assert.NoError(t, err)

	_, err = ResolveInstanceBySlug(db, instance.URLSlug)
	assert.ErrorIs(t, err, ErrInstanceGone)
}

func TestResolveInstanceBySlugExpired(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	past := time.Now().Add(-time.Hour)
	instance, err := CreateInstance(db, template.ID, "Expired Survey", nil, &past)
	assert.NoError(t, err)

	// Still active, but past expiry: gone, not found
	_, err = ResolveInstanceBySlug(db, instance.URLSlug)
	assert.ErrorIs(t, err, ErrInstanceGone)
}

func TestUpdateInstanceExpiryStates(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	future := time.Now().Add(24 * time.Hour)
	instance, err := CreateInstance(db, template.ID, "Survey", nil, &future)
	assert.NoError(t, err)

	// Absent pointer keeps the expiry
	name := "Renamed Survey"
	updated, err := UpdateInstance(db, instance.ID, InstanceUpdate{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "Renamed Survey", updated.Name)
	assert.NotNil(t, updated.ExpiresAt)

	// Explicit nil clears it
	var cleared *time.Time
	updated, err = UpdateInstance(db, instance.ID, InstanceUpdate{ExpiresAt: &cleared})
	assert.NoError(t, err)
	assert.Nil(t, updated.ExpiresAt)

	// Setting a new timestamp works
	later := time.Now().Add(48 * time.Hour)
	expiry := &later
	updated, err = UpdateInstance(db, instance.ID, InstanceUpdate{ExpiresAt: &expiry})
	assert.NoError(t, err)
	assert.NotNil(t, updated.ExpiresAt)
}

func TestDeleteInstanceKeepsResponses(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	instance, err := CreateInstance(db, template.ID, "Survey", nil, nil)
	assert.NoError(t, err)

	response := &models.SurveyResponse{
		CompanyName: "Acme Insurance",
		InstanceID:  &instance.ID,
		Scores:      fullyAnsweredScores(models.SurveyCategories),
		SubmittedAt: time.Now(),
	}
	assert.NoError(t, db.Create(response).Error)

	assert.NoError(t, DeleteInstance(db, instance.ID))

	// Instance and its overrides are gone
	_, err = GetInstanceByID(db, instance.ID)
	assert.Error(t, err)
	var overrideCount int64
	db.Model(&models.QuestionVisibility{}).Where("config_id = ?", instance.ID).Count(&overrideCount)
	assert.Equal(t, int64(0), overrideCount)

	// The response survives
	var responseCount int64
	db.Model(&models.SurveyResponse{}).Count(&responseCount)
	assert.Equal(t, int64(1), responseCount)
}

func TestCreateInstanceWithCompany(t *testing.T) {
	db := setupTestDB(t)
	template := createTestTemplate(t, db, nil)

	company := &models.Company{Name: "Acme Insurance"}
	assert.NoError(t, db.Create(company).Error)

	instance, err := CreateInstance(db, template.ID, "Acme Q1", &company.ID, nil)
	assert.NoError(t, err)
	assert.NotNil(t, instance.Company)
	assert.Equal(t, "Acme Insurance", instance.Company.Name)
}
