package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"survey_app_go/services"
)

func setupArchiveStorage(t *testing.T) {
	services.Storage = services.NewLocalStorage(t.TempDir())
	t.Cleanup(func() { services.Storage = nil })
}

func archiveTestFile(t *testing.T, name, content string) {
	_, err := services.Storage.UploadReader(context.Background(),
		bytes.NewReader([]byte(content)), "exports/"+name, "text/csv", int64(len(content)))
	assert.NoError(t, err)
}

func TestListExportArchives(t *testing.T) {
	setupTestDB(t)
	setupArchiveStorage(t)
	archiveTestFile(t, "responses_20260101_120000.csv", "id,company\n")

	_, c, rec := setupEcho(http.MethodGet, "/api/admin/export/archive", nil)

	assert.NoError(t, ListExportArchivesHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
	assert.Equal(t, "responses_20260101_120000.csv", entries[0].Name)
	assert.Equal(t, int64(len("id,company\n")), entries[0].Size)
}

func TestDownloadExportArchive(t *testing.T) {
	setupTestDB(t)
	setupArchiveStorage(t)
	archiveTestFile(t, "responses_20260101_120000.csv", "id,company\n1,Acme\n")

	_, c, rec := setupEcho(http.MethodGet, "/api/admin/export/archive/responses_20260101_120000.csv", nil)
	c.SetParamNames("name")
	c.SetParamValues("responses_20260101_120000.csv")

	assert.NoError(t, DownloadExportArchiveHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "id,company\n1,Acme\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "responses_20260101_120000.csv")
}

func TestDownloadExportArchiveUnknown(t *testing.T) {
	setupTestDB(t)
	setupArchiveStorage(t)

	_, c, _ := setupEcho(http.MethodGet, "/api/admin/export/archive/missing.csv", nil)
	c.SetParamNames("name")
	c.SetParamValues("missing.csv")

	err := DownloadExportArchiveHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestDownloadExportArchiveRejectsTraversal(t *testing.T) {
	setupTestDB(t)
	setupArchiveStorage(t)

	for _, name := range []string{"../secrets.env", "..", ".hidden", "a/b.csv"} {
		_, c, _ := setupEcho(http.MethodGet, "/api/admin/export/archive/x", nil)
		c.SetParamNames("name")
		c.SetParamValues(name)

		err := DownloadExportArchiveHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestExportArchiveURL(t *testing.T) {
	setupTestDB(t)
	setupArchiveStorage(t)
	archiveTestFile(t, "responses_20260101_120000.csv", "id\n")

	_, c, rec := setupEcho(http.MethodGet, "/api/admin/export/archive/responses_20260101_120000.csv/url", nil)
	c.SetParamNames("name")
	c.SetParamValues("responses_20260101_120000.csv")

	assert.NoError(t, ExportArchiveURLHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload["url"], "responses_20260101_120000.csv")
}

func TestDeleteExportArchive(t *testing.T) {
	setupTestDB(t)
	setupArchiveStorage(t)
	archiveTestFile(t, "responses_20260101_120000.csv", "id\n")

	_, c, rec := setupEcho(http.MethodDelete, "/api/admin/export/archive/responses_20260101_120000.csv", nil)
	c.SetParamNames("name")
	c.SetParamValues("responses_20260101_120000.csv")

	assert.NoError(t, DeleteExportArchiveHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	objects, err := services.Storage.List(context.Background(), "exports/")
	assert.NoError(t, err)
	assert.Empty(t, objects)
}

func TestExportArchiveUnconfigured(t *testing.T) {
	setupTestDB(t)
	services.Storage = nil

	_, c, _ := setupEcho(http.MethodGet, "/api/admin/export/archive", nil)

	err := ListExportArchivesHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
}
