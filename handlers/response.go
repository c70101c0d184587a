package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"survey_app_go/db"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

// responseFiltersFromQuery parses the shared listing/export filters.
func responseFiltersFromQuery(c echo.Context) services.ResponseFilters {
	filters := services.ResponseFilters{
		CompanyName: c.QueryParam("company"),
		InstanceID:  c.QueryParam("instance_id"),
		Quarter:     c.QueryParam("quarter"),
	}

	if v := c.QueryParam("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.DateFrom = t
		}
	}
	if v := c.QueryParam("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			// Inclusive end of day
			filters.DateTo = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if v := c.QueryParam("min_percentage"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinPercentage = f
		}
	}
	if v := c.QueryParam("max_percentage"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPercentage = f
		}
	}

	return filters
}

// ListResponsesHandler returns stored responses, newest first
func ListResponsesHandler(c echo.Context) error {
	responses, err := services.GetResponses(db.DB, responseFiltersFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch responses")
	}
	return c.JSON(http.StatusOK, responses)
}

// GetResponseHandler returns one stored response
func GetResponseHandler(c echo.Context) error {
	response, err := services.GetResponseByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Response not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch response")
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteResponseHandler removes a stored response
func DeleteResponseHandler(c echo.Context) error {
	id := c.Param("id")

	response, err := services.GetResponseByID(db.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Response not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch response")
	}

	if err := services.DeleteResponse(db.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Response not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete response")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "SurveyResponse", response.ID, response.CompanyName, "Response deleted", response, nil)

	return c.JSON(http.StatusOK, map[string]string{"message": "Response deleted"})
}
