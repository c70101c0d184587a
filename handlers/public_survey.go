package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"survey_app_go/config"
	"survey_app_go/db"
	"survey_app_go/models"
	"survey_app_go/services"
)

// surveyResponseRequest is the public submission payload. Totals are
// never accepted from the client; they are recomputed server-side.
type surveyResponseRequest struct {
	CompanyName     string             `json:"company_name" form:"company_name"`
	RespondentName  string             `json:"respondent_name" form:"respondent_name"`
	RespondentEmail string             `json:"respondent_email" form:"respondent_email"`
	Quarter         string             `json:"quarter" form:"quarter"`
	PolicyYear      string             `json:"policy_year" form:"policy_year"`
	Scores          models.ScoreMap    `json:"scores"`
	Comments        models.CommentMap  `json:"comments"`
}

func (r surveyResponseRequest) toModel() *models.SurveyResponse {
	return &models.SurveyResponse{
		CompanyName:     r.CompanyName,
		RespondentName:  r.RespondentName,
		RespondentEmail: r.RespondentEmail,
		Quarter:         r.Quarter,
		PolicyYear:      r.PolicyYear,
		Scores:          r.Scores,
		Comments:        r.Comments,
	}
}

// GetSurveyHandler resolves a public survey link and returns the
// question set filtered by the link's visibility overrides.
// Unknown slug: 404. Deactivated or expired link: 410.
func GetSurveyHandler(c echo.Context) error {
	instance, err := services.ResolveInstanceBySlug(db.DB, c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInstanceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Survey not found")
		case errors.Is(err, services.ErrInstanceGone):
			return echo.NewHTTPError(http.StatusGone, "This survey is no longer available")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load survey")
		}
	}

	categories := services.ResolveVisibleCategories(models.SurveyCategories, instance.Visibility)

	companyName := ""
	if instance.Company != nil {
		companyName = instance.Company.Name
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":         instance.Name,
		"company_name": companyName,
		"categories":   categories,
	})
}

// SubmitSurveyHandler accepts a submission against a survey link.
// Expiry was checked when the survey was loaded; it is deliberately not
// re-checked here, so a respondent who started in time can finish.
func SubmitSurveyHandler(c echo.Context) error {
	var instance *models.SurveyInstance

	var raw models.SurveyInstance
	err := db.DB.Preload("Company").Where("url_slug = ?", c.Param("slug")).First(&raw).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Survey not found")
	}
	instance = &raw

	overrides, err := services.GetOverrides(db.DB, instance.ID, models.ConfigTypeInstance)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load survey")
	}

	var req surveyResponseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	response := req.toModel()
	response.InstanceID = &instance.ID
	if response.CompanyName == "" && instance.Company != nil {
		response.CompanyName = instance.Company.Name
	}

	return storeSubmission(c, response, overrides)
}

// SubmitDirectResponseHandler accepts a submission without a survey
// link. All categories are visible.
func SubmitDirectResponseHandler(c echo.Context) error {
	var req surveyResponseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	return storeSubmission(c, req.toModel(), nil)
}

func storeSubmission(c echo.Context, response *models.SurveyResponse, overrides []models.QuestionVisibility) error {
	if err := services.SubmitResponse(db.DB, response, overrides); err != nil {
		if services.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store response")
	}

	notifyAdminsOfResponse(c, response)

	return c.JSON(http.StatusCreated, response)
}

// notifyAdminsOfResponse emails every active admin about the new
// submission. Best-effort and asynchronous.
func notifyAdminsOfResponse(c echo.Context, response *models.SurveyResponse) {
	cfg, ok := c.Get("config").(*config.Config)
	if !ok {
		return
	}

	var admins []models.User
	if err := db.DB.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err != nil {
		return
	}

	surveyName := ""
	if response.Instance != nil {
		surveyName = response.Instance.Name
	}

	data := services.NewResponseEmailData{
		CompanyName:      response.CompanyName,
		RespondentName:   response.RespondentName,
		SurveyName:       surveyName,
		TotalScore:       response.TotalScore,
		MaxPossibleScore: response.MaxPossibleScore,
		Percentage:       response.PercentageScore,
		DashboardLink:    cfg.AppURL + "/dashboard",
	}
	for _, admin := range admins {
		services.SendEmailAsync(cfg, services.BuildNewResponseEmail(admin.Email, data))
	}
}
