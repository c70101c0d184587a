package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"survey_app_go/config"
	"survey_app_go/db"
	"survey_app_go/models"
	"survey_app_go/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.Company{},
		&models.SurveyTemplate{},
		&models.SurveyInstance{},
		&models.QuestionVisibility{},
		&models.SurveyResponse{},
		&models.AuditLog{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
		AppURL:        "http://localhost:8080",
	})

	return e, c, rec
}

func createTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	hash, err := services.HashPassword("Adm1n!Passw0rd99")
	assert.NoError(t, err)

	user := &models.User{
		Name:     "Test Admin",
		Email:    "admin@test.com",
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

func fullyAnsweredScores() models.ScoreMap {
	scores := models.ScoreMap{}
	for _, category := range models.SurveyCategories {
		answers := map[string]int{}
		for _, q := range category.Questions {
			answers[q.ID] = 4
		}
		scores[category.ID] = answers
	}
	return scores
}

func stringToPtr(s string) *string {
	return &s
}
