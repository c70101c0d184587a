package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"survey_app_go/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "SecretPass123!"

	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, VerifyPassword(hash, password))
	assert.False(t, VerifyPassword(hash, "WrongPass"))
}

func TestGenerateSessionToken(t *testing.T) {
	token1, err := GenerateSessionToken()
	assert.NoError(t, err)
	assert.Len(t, token1, SessionTokenLength*2) // hex encoding

	token2, err := GenerateSessionToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token1, token2)
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)

	user := &models.User{Name: "Admin", Email: "admin@test.com", Password: "x", Role: models.RoleAdmin, IsActive: true}
	assert.NoError(t, db.Create(user).Error)

	session, err := CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
	assert.NoError(t, err)
	assert.NotNil(t, session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), session.ExpiresAt, 10*time.Second)

	validSession, err := ValidateSession(db, session.Token)
	assert.NoError(t, err)
	assert.Equal(t, session.ID, validSession.ID)
	assert.Equal(t, user.Email, validSession.User.Email)

	_, err = ValidateSession(db, "invalid-token")
	assert.Error(t, err)

	assert.NoError(t, DeleteSession(db, session.Token))
	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)
}

func TestValidateSessionExpired(t *testing.T) {
	db := setupTestDB(t)

	user := &models.User{Name: "Admin", Email: "admin@test.com", Password: "x", Role: models.RoleAdmin, IsActive: true}
	assert.NoError(t, db.Create(user).Error)

	session, err := CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
	assert.NoError(t, err)

	// Force expiry in the past
	assert.NoError(t, db.Model(&models.Session{}).Where("id = ?", session.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)

	// Expired session is removed on validation
	var count int64
	db.Model(&models.Session{}).Where("id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAllUserSessions(t *testing.T) {
	db := setupTestDB(t)

	user := &models.User{Name: "Admin", Email: "admin@test.com", Password: "x", Role: models.RoleAdmin, IsActive: true}
	assert.NoError(t, db.Create(user).Error)

	for i := 0; i < 3; i++ {
		_, err := CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
		assert.NoError(t, err)
	}

	assert.NoError(t, DeleteAllUserSessions(db, user.ID))

	var count int64
	db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupTestDB(t)

	user := &models.User{Name: "Admin", Email: "admin@test.com", Password: "x", Role: models.RoleAdmin, IsActive: true}
	assert.NoError(t, db.Create(user).Error)

	live, err := CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
	assert.NoError(t, err)

	expired, err := CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
	assert.NoError(t, err)
	assert.NoError(t, db.Model(&models.Session{}).Where("id = ?", expired.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	assert.NoError(t, CleanupExpiredSessions(db))

	var count int64
	db.Model(&models.Session{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = ValidateSession(db, live.Token)
	assert.NoError(t, err)
}
