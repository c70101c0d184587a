package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"survey_app_go/db"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

// visibilityOverrideRequest is the wire shape of one override row.
// A nil question_id targets the whole category.
type visibilityOverrideRequest struct {
	CategoryID string  `json:"category_id" form:"category_id"`
	QuestionID *string `json:"question_id" form:"question_id"`
	IsVisible  bool    `json:"is_visible" form:"is_visible"`
}

func toOverrideRows(reqs []visibilityOverrideRequest) ([]models.QuestionVisibility, error) {
	rows := make([]models.QuestionVisibility, 0, len(reqs))
	for _, r := range reqs {
		if models.CategoryByID(r.CategoryID) == nil {
			return nil, errors.New("unknown category: " + r.CategoryID)
		}
		rows = append(rows, models.QuestionVisibility{
			CategoryID: r.CategoryID,
			QuestionID: r.QuestionID,
			IsVisible:  r.IsVisible,
		})
	}
	return rows, nil
}

// ListTemplatesHandler returns all survey templates with their
// visibility overrides
func ListTemplatesHandler(c echo.Context) error {
	templates, err := services.GetTemplates(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch templates")
	}
	return c.JSON(http.StatusOK, templates)
}

// GetTemplateHandler returns one template
func GetTemplateHandler(c echo.Context) error {
	template, err := services.GetTemplateByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Template not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch template")
	}
	return c.JSON(http.StatusOK, template)
}

// CreateTemplateHandler creates a template together with its override
// rows. When no overrides are sent the default all-visible set is used.
func CreateTemplateHandler(c echo.Context) error {
	var req struct {
		Name        string                      `json:"name" form:"name"`
		Description string                      `json:"description" form:"description"`
		Visibility  []visibilityOverrideRequest `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Template name is required")
	}

	overrides, err := toOverrideRows(req.Visibility)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	template := &models.SurveyTemplate{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := services.CreateTemplate(db.DB, template, overrides); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create template")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "SurveyTemplate", template.ID, template.Name, "Template created", nil, template)

	return c.JSON(http.StatusCreated, template)
}

// UpdateTemplateHandler updates template metadata and, when a
// visibility array is sent, atomically replaces the override set.
func UpdateTemplateHandler(c echo.Context) error {
	var req struct {
		Name        string                      `json:"name" form:"name"`
		Description string                      `json:"description" form:"description"`
		Visibility  []visibilityOverrideRequest `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	id := c.Param("id")
	before, err := services.GetTemplateByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Template not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch template")
	}

	var overrides []models.QuestionVisibility
	if req.Visibility != nil {
		overrides, err = toOverrideRows(req.Visibility)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	template, err := services.UpdateTemplate(db.DB, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), overrides)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update template")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	action := models.AuditActionUpdate
	if req.Visibility != nil {
		action = models.AuditActionVisibilityChange
	}
	services.LogAuditEvent(db.DB, auditCtx, action, "SurveyTemplate", template.ID, template.Name, "Template updated", before, template)

	return c.JSON(http.StatusOK, template)
}

// DeleteTemplateHandler removes a template and its overrides. Refused
// while survey links still reference the template.
func DeleteTemplateHandler(c echo.Context) error {
	id := c.Param("id")

	template, err := services.GetTemplateByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Template not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch template")
	}

	var instanceCount int64
	if err := db.DB.Model(&models.SurveyInstance{}).Where("template_id = ?", id).Count(&instanceCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check template usage")
	}
	if instanceCount > 0 {
		return echo.NewHTTPError(http.StatusConflict, "Template has survey links and cannot be deleted")
	}

	if err := services.DeleteTemplate(db.DB, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete template")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "SurveyTemplate", template.ID, template.Name, "Template deleted", template, nil)

	return c.JSON(http.StatusOK, map[string]string{"message": "Template deleted"})
}
