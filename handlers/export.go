package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"survey_app_go/db"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

// ExportResponsesCSVHandler streams the filtered response set as a CSV
// download and archives a copy through the storage provider.
func ExportResponsesCSVHandler(c echo.Context) error {
	responses, err := services.GetResponses(db.DB, responseFiltersFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch responses")
	}

	// Build in memory first so the archive copy matches the download
	var buf bytes.Buffer
	if err := services.WriteResponsesCSV(&buf, responses); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build CSV export")
	}

	services.ArchiveExport(c.Request().Context(), buf.Bytes(), ".csv", "text/csv")

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionExport, "SurveyResponse", "all", "",
		fmt.Sprintf("Exported %d responses as CSV", len(responses)), nil, nil)

	c.Response().Header().Set("Content-Type", "text/csv")
	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=survey_responses_%s.csv", time.Now().Format("20060102_150405")))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportResponsesXLSXHandler downloads the filtered response set as an
// Excel workbook.
func ExportResponsesXLSXHandler(c echo.Context) error {
	responses, err := services.GetResponses(db.DB, responseFiltersFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch responses")
	}

	buf, err := services.GenerateResponsesXLSX(responses)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build Excel export")
	}

	const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	services.ArchiveExport(c.Request().Context(), buf.Bytes(), ".xlsx", xlsxMime)

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionExport, "SurveyResponse", "all", "",
		fmt.Sprintf("Exported %d responses as Excel", len(responses)), nil, nil)

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=survey_responses_%s.xlsx", time.Now().Format("20060102_150405")))
	return c.Blob(http.StatusOK, xlsxMime, buf.Bytes())
}

// ExportResponsePDFHandler renders one stored response as a printable
// PDF summary.
func ExportResponsePDFHandler(c echo.Context) error {
	response, err := services.GetResponseByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Response not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch response")
	}

	pdf, err := services.GenerateResponsePDF(response)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionExport, "SurveyResponse", response.ID, response.CompanyName,
		"Exported response as PDF", nil, nil)

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=response_%s.pdf", response.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
