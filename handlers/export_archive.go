package handlers

import (
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"survey_app_go/db"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

// exportArchivePrefix is the storage namespace ArchiveExport writes to.
const exportArchivePrefix = "exports/"

// archiveKey turns a :name path parameter into a storage key, rejecting
// anything that could escape the archive namespace.
func archiveKey(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid export name")
	}
	return exportArchivePrefix + name, nil
}

// ListExportArchivesHandler returns the archived export files, newest
// first.
func ListExportArchivesHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Export archival is not configured")
	}

	objects, err := services.Storage.List(c.Request().Context(), exportArchivePrefix)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list archived exports")
	}

	type archiveEntry struct {
		Name         string    `json:"name"`
		Size         int64     `json:"size"`
		LastModified time.Time `json:"last_modified"`
	}
	entries := make([]archiveEntry, 0, len(objects))
	for _, obj := range objects {
		entries = append(entries, archiveEntry{
			Name:         path.Base(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastModified.After(entries[j].LastModified)
	})

	return c.JSON(http.StatusOK, entries)
}

// DownloadExportArchiveHandler streams one archived export back to the
// caller.
func DownloadExportArchiveHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Export archival is not configured")
	}

	key, err := archiveKey(c.Param("name"))
	if err != nil {
		return err
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), key)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Archived export not found")
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+path.Base(key))
	return c.Stream(http.StatusOK, contentType, reader)
}

// ExportArchiveURLHandler returns a short-lived signed URL for one
// archived export, for handing off large downloads to the storage
// backend.
func ExportArchiveURLHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Export archival is not configured")
	}

	key, err := archiveKey(c.Param("name"))
	if err != nil {
		return err
	}

	url, err := services.Storage.GetSignedURL(c.Request().Context(), key, 15*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// DeleteExportArchiveHandler removes one archived export.
func DeleteExportArchiveHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Export archival is not configured")
	}

	key, err := archiveKey(c.Param("name"))
	if err != nil {
		return err
	}

	if err := services.Storage.Delete(c.Request().Context(), key); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete archived export")
	}

	auditCtx := middleware.AuditContextFromRequest(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "ExportArchive", key, path.Base(key),
		"Archived export deleted", nil, nil)

	return c.JSON(http.StatusOK, map[string]string{"message": "Archived export deleted"})
}
