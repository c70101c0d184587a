package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"survey_app_go/db"
	"survey_app_go/models"
	"survey_app_go/services"
)

// DashboardStatsHandler returns aggregate stats over the filtered
// response set
func DashboardStatsHandler(c echo.Context) error {
	stats, err := services.GetDashboardStats(db.DB, responseFiltersFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute dashboard stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// CatalogHandler returns the full fixed question catalog, unfiltered.
// The dashboard uses it to render visibility editors.
func CatalogHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.SurveyCategories)
}
