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

// ListCompaniesHandler returns all companies ordered by name
func ListCompaniesHandler(c echo.Context) error {
	var companies []models.Company
	if err := db.DB.Order("name ASC").Find(&companies).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch companies")
	}
	return c.JSON(http.StatusOK, companies)
}

// CreateCompanyHandler registers a client company. Company names are
// unique; a duplicate returns 409.
func CreateCompanyHandler(c echo.Context) error {
	var req struct {
		Name         string `json:"name" form:"name"`
		ContactEmail string `json:"contact_email" form:"contact_email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Company name is required")
	}

	var existing models.Company
	if err := db.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "A company with this name already exists")
	}

	company := &models.Company{
		Name:         name,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
	}
	if err := db.DB.Create(company).Error; err != nil {
		// Unique index is the real guard against a concurrent duplicate
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return echo.NewHTTPError(http.StatusConflict, "A company with this name already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create company")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Company", company.ID, company.Name, "Company created", nil, company)

	return c.JSON(http.StatusCreated, company)
}

// GetCompanyHandler returns one company
func GetCompanyHandler(c echo.Context) error {
	var company models.Company
	if err := db.DB.First(&company, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Company not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch company")
	}
	return c.JSON(http.StatusOK, company)
}

// DeleteCompanyHandler removes a company. Survey instances keep their
// company_id reference, so deletion is refused while instances exist.
func DeleteCompanyHandler(c echo.Context) error {
	id := c.Param("id")

	var company models.Company
	if err := db.DB.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Company not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch company")
	}

	var instanceCount int64
	if err := db.DB.Model(&models.SurveyInstance{}).Where("company_id = ?", id).Count(&instanceCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check company usage")
	}
	if instanceCount > 0 {
		return echo.NewHTTPError(http.StatusConflict, "Company has survey links and cannot be deleted")
	}

	if err := db.DB.Delete(&company).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete company")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "Company", company.ID, company.Name, "Company deleted", company, nil)

	return c.JSON(http.StatusOK, map[string]string{"message": "Company deleted"})
}
