package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"survey_app_go/config"
	"survey_app_go/db"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

func init() {
	// Generate a real dummy hash at startup to ensure consistent timing
	hash, _ := services.HashPassword("dummy_password_for_timing_mitigation")
	if hash != "" {
		globalDummyHash = hash
	}
}

// Package level variable to hold the dummy hash
var globalDummyHash string = "$2a$10$X7.G.t8./.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t" // Fallback

// LoginHandler authenticates a dashboard user and issues a session cookie
func LoginHandler(c echo.Context) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	email := strings.TrimSpace(req.Email)
	password := req.Password

	if email == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	// Lockout check requires looking the user up first
	var userPreCheck models.User
	if err := db.DB.Where("email = ?", email).First(&userPreCheck).Error; err == nil {
		if userPreCheck.LockoutUntil != nil && time.Now().Before(*userPreCheck.LockoutUntil) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Account is locked. Try again later.")
		}
	}

	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		// Timing attack mitigation: always run a bcrypt comparison
		services.VerifyPassword(globalDummyHash, password)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if !services.VerifyPassword(user.Password, password) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= 5 {
			lockoutTime := time.Now().Add(15 * time.Minute)
			user.LockoutUntil = &lockoutTime
			user.FailedLoginAttempts = 0
		}
		db.DB.Save(&user)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	// Reset failed attempts on success
	if user.FailedLoginAttempts > 0 || user.LockoutUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockoutUntil = nil
		db.DB.Save(&user)
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "Your account has been deactivated")
	}

	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	session, err := services.CreateSession(db.DB, user.ID, ipAddress, userAgent)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	cfg := c.Get("config").(*config.Config)
	isProduction := cfg.Environment == "production"

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(services.DefaultSessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	auditCtx := services.AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogin, "User", user.ID, user.Name, "User logged in", nil, nil)

	now := time.Now()
	user.LastLoginAt = &now
	db.DB.Save(&user)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		auditCtx := middleware.AuditContextFromRequest(c)
		services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogout, "User", user.ID, user.Name, "User logged out", nil, nil)
	}

	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err == nil {
		services.DeleteSession(db.DB, cookie.Value)
	}

	middleware.ClearSessionCookie(c)

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// GetCurrentUserHandler returns the current user info as JSON
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// ForgotPasswordHandler issues a password reset token and emails the
// reset link. Always responds 200 to prevent email enumeration.
func ForgotPasswordHandler(c echo.Context) error {
	var req struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	genericResponse := map[string]string{
		"message": "If an account with that email exists, a reset link has been sent.",
	}

	token, err := services.GenerateResetToken(db.DB, email)
	if err != nil || token == nil {
		return c.JSON(http.StatusOK, genericResponse)
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", token.UserID).Error; err == nil {
		cfg := c.Get("config").(*config.Config)
		resetLink := fmt.Sprintf("%s/reset-password?token=%s", cfg.AppURL, token.Token)
		expiresAt := token.ExpiresAt.Format("January 2, 2006 15:04 MST")
		services.SendEmailAsync(cfg, services.BuildPasswordResetEmail(user.Email, user.Name, resetLink, expiresAt))
	}

	return c.JSON(http.StatusOK, genericResponse)
}

// ResetPasswordHandler sets a new password from a valid reset token
func ResetPasswordHandler(c echo.Context) error {
	var req struct {
		Token    string `json:"token" form:"token"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	if req.Token == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token and password are required")
	}

	if err := services.ResetPassword(db.DB, req.Token, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password has been reset"})
}
