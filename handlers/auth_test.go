package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"survey_app_go/middleware"
	"survey_app_go/models"
)

func TestLoginSuccess(t *testing.T) {
	testDB := setupTestDB(t)
	createTestAdmin(t, testDB)

	body := strings.NewReader(`{"email":"admin@test.com","password":"Adm1n!Passw0rd99"}`)
	_, c, rec := setupEcho(http.MethodPost, "/api/auth/login", body)

	assert.NoError(t, LoginHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Session cookie issued
	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == middleware.SessionCookieName {
			sessionCookie = ck
		}
	}
	assert.NotNil(t, sessionCookie)
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	// Session persisted
	var count int64
	testDB.Model(&models.Session{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLoginWrongPassword(t *testing.T) {
	testDB := setupTestDB(t)
	createTestAdmin(t, testDB)

	body := strings.NewReader(`{"email":"admin@test.com","password":"wrong"}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/auth/login", body)

	err := LoginHandler(c)
	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	// Failed attempt recorded
	var user models.User
	testDB.First(&user, "email = ?", "admin@test.com")
	assert.Equal(t, 1, user.FailedLoginAttempts)
}

func TestLoginUnknownEmail(t *testing.T) {
	setupTestDB(t)

	body := strings.NewReader(`{"email":"nobody@test.com","password":"whatever"}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/auth/login", body)

	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	testDB := setupTestDB(t)
	createTestAdmin(t, testDB)

	for i := 0; i < 5; i++ {
		body := strings.NewReader(`{"email":"admin@test.com","password":"wrong"}`)
		_, c, _ := setupEcho(http.MethodPost, "/api/auth/login", body)
		LoginHandler(c)
	}

	var user models.User
	testDB.First(&user, "email = ?", "admin@test.com")
	assert.NotNil(t, user.LockoutUntil)
	assert.True(t, user.LockoutUntil.After(time.Now()))

	// Correct password is refused while locked out
	body := strings.NewReader(`{"email":"admin@test.com","password":"Adm1n!Passw0rd99"}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/auth/login", body)
	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLoginDeactivatedUser(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestAdmin(t, testDB)
	assert.NoError(t, testDB.Model(user).Update("is_active", false).Error)

	body := strings.NewReader(`{"email":"admin@test.com","password":"Adm1n!Passw0rd99"}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/auth/login", body)

	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLoginMissingFields(t *testing.T) {
	setupTestDB(t)

	body := strings.NewReader(`{"email":"","password":""}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/auth/login", body)

	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestForgotPasswordAlwaysGeneric(t *testing.T) {
	testDB := setupTestDB(t)
	createTestAdmin(t, testDB)

	// Known email
	body := strings.NewReader(`{"email":"admin@test.com"}`)
	_, c, rec := setupEcho(http.MethodPost, "/api/auth/forgot-password", body)
	assert.NoError(t, ForgotPasswordHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown email gets the identical response
	body = strings.NewReader(`{"email":"nobody@test.com"}`)
	_, c, rec2 := setupEcho(http.MethodPost, "/api/auth/forgot-password", body)
	assert.NoError(t, ForgotPasswordHandler(c))
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, rec.Body.String(), rec2.Body.String())

	// Only the known email produced a token
	var count int64
	testDB.Model(&models.PasswordResetToken{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResetPasswordHandler(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestAdmin(t, testDB)

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     "reset-token-abc",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	assert.NoError(t, testDB.Create(token).Error)

	body := strings.NewReader(`{"token":"reset-token-abc","password":"Fresh!Passw0rd99"}`)
	_, c, rec := setupEcho(http.MethodPost, "/api/auth/reset-password", body)

	assert.NoError(t, ResetPasswordHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
