package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"survey_app_go/models"
)

func exportFixtureResponses() []models.SurveyResponse {
	submitted := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	return []models.SurveyResponse{
		{
			ID:               "resp-1",
			CompanyName:      "Acme Insurance",
			RespondentName:   "Jordan Lee",
			RespondentEmail:  "jordan@acme.test",
			SubmittedAt:      submitted,
			TotalScore:       48,
			MaxPossibleScore: 130,
			PercentageScore:  36.92,
			Scores: models.ScoreMap{
				"service_admin": {models.OverallQuestionID: 9},
			},
			Comments: models.CommentMap{
				"service_admin": `Good, but slow on renewals, and "billing"`,
			},
		},
		{
			ID:               "resp-2",
			CompanyName:      "Globex Corp",
			SubmittedAt:      submitted.Add(time.Hour),
			TotalScore:       130,
			MaxPossibleScore: 130,
			PercentageScore:  100,
		},
	}
}

func TestWriteResponsesCSV(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteResponsesCSV(&buf, exportFixtureResponses()))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	// Header plus one row per response
	assert.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "ID", header[0])
	assert.Equal(t, "Percentage Score (%)", header[7])
	// One score and one comment column per catalog category
	assert.Len(t, header, 8+2*len(models.SurveyCategories))
	assert.Equal(t, "Our Service Administration Score", header[8])
	assert.Equal(t, "Our Service Administration Comment", header[9])

	first := records[1]
	assert.Equal(t, "resp-1", first[0])
	assert.Equal(t, "Acme Insurance", first[1])
	assert.Equal(t, "48", first[5])
	assert.Equal(t, "36.92", first[7])
	assert.Equal(t, "9", first[8])
	// Comma and quotes in the comment survive the round trip intact
	assert.Equal(t, `Good, but slow on renewals, and "billing"`, first[9])

	second := records[2]
	assert.Equal(t, "Globex Corp", second[1])
	assert.Equal(t, "0", second[8]) // no scores stored for this category
	assert.Equal(t, "", second[9])
}

func TestWriteResponsesCSVQuotesRawOutput(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteResponsesCSV(&buf, exportFixtureResponses()))

	// The comma-bearing comment must be quoted in the raw bytes
	assert.Contains(t, buf.String(), `"Good, but slow on renewals, and ""billing"""`)
}

func TestWriteResponsesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteResponsesCSV(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1) // header only
}

func TestGenerateResponsesXLSX(t *testing.T) {
	buf, err := GenerateResponsesXLSX(exportFixtureResponses())
	assert.NoError(t, err)
	assert.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Responses")
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Acme Insurance", rows[1][1])
}
