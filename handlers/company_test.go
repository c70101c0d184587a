package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"survey_app_go/models"
	"survey_app_go/services"
)

func TestCreateCompany(t *testing.T) {
	testDB := setupTestDB(t)

	body := strings.NewReader(`{"name":"  Acme Insurance  ","contact_email":"ops@acme.test"}`)
	_, c, rec := setupEcho(http.MethodPost, "/api/admin/companies", body)

	assert.NoError(t, CreateCompanyHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var company models.Company
	assert.NoError(t, testDB.First(&company).Error)
	assert.Equal(t, "Acme Insurance", company.Name)
	assert.Equal(t, "ops@acme.test", company.ContactEmail)
}

func TestCreateCompanyDuplicateName(t *testing.T) {
	testDB := setupTestDB(t)
	assert.NoError(t, testDB.Create(&models.Company{Name: "Acme Insurance"}).Error)

	body := strings.NewReader(`{"name":"Acme Insurance"}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/admin/companies", body)

	err := CreateCompanyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestCreateCompanyEmptyName(t *testing.T) {
	setupTestDB(t)

	body := strings.NewReader(`{"name":"   "}`)
	_, c, _ := setupEcho(http.MethodPost, "/api/admin/companies", body)

	err := CreateCompanyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestDeleteCompany(t *testing.T) {
	testDB := setupTestDB(t)
	company := &models.Company{Name: "Acme Insurance"}
	assert.NoError(t, testDB.Create(company).Error)

	_, c, rec := setupEcho(http.MethodDelete, "/api/admin/companies/"+company.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(company.ID)

	assert.NoError(t, DeleteCompanyHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	testDB.Model(&models.Company{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteCompanyWithInstancesRefused(t *testing.T) {
	testDB := setupTestDB(t)
	company := &models.Company{Name: "Acme Insurance"}
	assert.NoError(t, testDB.Create(company).Error)

	template := &models.SurveyTemplate{Name: "Test Template"}
	assert.NoError(t, services.CreateTemplate(testDB, template, nil))
	_, err := services.CreateInstance(testDB, template.ID, "Acme Q1", &company.ID, nil)
	assert.NoError(t, err)

	_, c, _ := setupEcho(http.MethodDelete, "/api/admin/companies/"+company.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(company.ID)

	err = DeleteCompanyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)

	var count int64
	testDB.Model(&models.Company{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteCompanyNotFound(t *testing.T) {
	setupTestDB(t)

	_, c, _ := setupEcho(http.MethodDelete, "/api/admin/companies/missing", nil)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := DeleteCompanyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
