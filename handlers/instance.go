package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"survey_app_go/db"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

// ListInstancesHandler returns all survey links with template, company,
// and override rows attached
func ListInstancesHandler(c echo.Context) error {
	instances, err := services.GetInstances(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey links")
	}
	return c.JSON(http.StatusOK, instances)
}

// GetInstanceHandler returns one survey link
func GetInstanceHandler(c echo.Context) error {
	instance, err := services.GetInstanceByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Survey link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey link")
	}
	return c.JSON(http.StatusOK, instance)
}

// CreateInstanceHandler provisions a shareable survey link from a
// template, cloning the template's visibility overrides.
func CreateInstanceHandler(c echo.Context) error {
	var req struct {
		TemplateID string     `json:"template_id" form:"template_id"`
		Name       string     `json:"name" form:"name"`
		CompanyID  *string    `json:"company_id" form:"company_id"`
		ExpiresAt  *time.Time `json:"expires_at" form:"expires_at"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	if req.TemplateID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "template_id is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Survey link name is required")
	}

	if req.CompanyID != nil && *req.CompanyID != "" {
		var company models.Company
		if err := db.DB.First(&company, "id = ?", *req.CompanyID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Company not found")
		}
	}

	instance, err := services.CreateInstance(db.DB, req.TemplateID, name, req.CompanyID, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || strings.Contains(err.Error(), "template not found") {
			return echo.NewHTTPError(http.StatusBadRequest, "Template not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create survey link")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "SurveyInstance", instance.ID, instance.Name, "Survey link created", nil, instance)

	return c.JSON(http.StatusCreated, instance)
}

// UpdateInstanceHandler applies a partial update. expires_at has three
// states: absent (keep), null (clear), or a timestamp (set).
func UpdateInstanceHandler(c echo.Context) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	id := c.Param("id")
	before, err := services.GetInstanceByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Survey link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey link")
	}

	var update services.InstanceUpdate

	if v, ok := raw["name"]; ok {
		name, ok := v.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name must be a non-empty string")
		}
		trimmed := strings.TrimSpace(name)
		update.Name = &trimmed
	}

	if v, ok := raw["is_active"]; ok {
		active, ok := v.(bool)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "is_active must be a boolean")
		}
		update.IsActive = &active
	}

	if v, ok := raw["expires_at"]; ok {
		if v == nil {
			var cleared *time.Time
			update.ExpiresAt = &cleared
		} else {
			s, ok := v.(string)
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "expires_at must be a timestamp or null")
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "expires_at must be RFC 3339 formatted")
			}
			expiry := &t
			update.ExpiresAt = &expiry
		}
	}

	instance, err := services.UpdateInstance(db.DB, id, update)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update survey link")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "SurveyInstance", instance.ID, instance.Name, "Survey link updated", before, instance)

	return c.JSON(http.StatusOK, instance)
}

// ReplaceInstanceVisibilityHandler atomically replaces the survey
// link's override set with the submitted rows.
func ReplaceInstanceVisibilityHandler(c echo.Context) error {
	var req struct {
		Visibility []visibilityOverrideRequest `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	id := c.Param("id")
	before, err := services.GetInstanceByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Survey link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey link")
	}

	overrides, err := toOverrideRows(req.Visibility)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := services.ReplaceOverrides(db.DB, id, models.ConfigTypeInstance, overrides); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update visibility")
	}

	instance, err := services.GetInstanceByID(db.DB, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey link")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionVisibilityChange, "SurveyInstance", instance.ID, instance.Name, "Survey link visibility replaced", before.Visibility, instance.Visibility)

	return c.JSON(http.StatusOK, instance)
}

// ClearInstanceVisibilityHandler removes all override rows, reverting
// the survey link to the all-visible default.
func ClearInstanceVisibilityHandler(c echo.Context) error {
	id := c.Param("id")
	instance, err := services.GetInstanceByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Survey link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey link")
	}

	if err := services.ClearOverrides(db.DB, id, models.ConfigTypeInstance); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear visibility")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionVisibilityChange, "SurveyInstance", instance.ID, instance.Name, "Survey link visibility cleared", instance.Visibility, nil)

	return c.JSON(http.StatusOK, map[string]string{"message": "Visibility overrides cleared"})
}

// DeleteInstanceHandler removes a survey link. Responses submitted
// through it are kept.
func DeleteInstanceHandler(c echo.Context) error {
	id := c.Param("id")

	instance, err := services.GetInstanceByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Survey link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch survey link")
	}

	if err := services.DeleteInstance(db.DB, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete survey link")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "SurveyInstance", instance.ID, instance.Name, "Survey link deleted", instance, nil)

	return c.JSON(http.StatusOK, map[string]string{"message": "Survey link deleted"})
}
