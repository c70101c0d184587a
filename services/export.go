package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"survey_app_go/models"
)

// exportHeader returns the fixed export column set: identity and total
// fields followed by a score/comment pair per catalog category, in
// catalog order.
func exportHeader() []string {
	header := []string{
		"ID",
		"Company Name",
		"Respondent Name",
		"Respondent Email",
		"Submitted At",
		"Total Score",
		"Max Possible Score",
		"Percentage Score (%)",
	}
	for _, category := range models.SurveyCategories {
		header = append(header, category.Name+" Score", category.Name+" Comment")
	}
	return header
}

// exportRecord flattens one response into export columns.
func exportRecord(r models.SurveyResponse) []string {
	record := []string{
		r.ID,
		r.CompanyName,
		r.RespondentName,
		r.RespondentEmail,
		r.SubmittedAt.Format("2006-01-02 15:04:05"),
		strconv.Itoa(r.TotalScore),
		strconv.Itoa(r.MaxPossibleScore),
		fmt.Sprintf("%.2f", r.PercentageScore),
	}
	for _, category := range models.SurveyCategories {
		record = append(record,
			strconv.Itoa(r.CategoryScore(category.ID, models.OverallQuestionID)),
			r.Comments[category.ID],
		)
	}
	return record
}

// WriteResponsesCSV streams the responses as CSV. encoding/csv handles
// quoting of fields containing commas, quotes, or newlines.
func WriteResponsesCSV(w io.Writer, responses []models.SurveyResponse) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exportHeader()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range responses {
		if err := writer.Write(exportRecord(r)); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// GenerateResponsesXLSX builds an Excel workbook with the same column
// set as the CSV export.
func GenerateResponsesXLSX(responses []models.SurveyResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Responses"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})

	header := exportHeader()
	for i, title := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		f.SetCellValue(sheet, cell, title)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for rowIdx, r := range responses {
		record := exportRecord(r)
		for colIdx, value := range record {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build data cell: %w", err)
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// ArchiveExport stores a generated export through the configured
// storage provider (R2 or local filesystem). Failures are logged, not
// surfaced: archival is best-effort and must not break the download.
func ArchiveExport(ctx context.Context, data []byte, extension, contentType string) {
	if Storage == nil {
		return
	}

	key := fmt.Sprintf("exports/responses_%s%s", time.Now().Format("20060102_150405"), extension)
	_, err := Storage.UploadReader(ctx, bytes.NewReader(data), key, contentType, int64(len(data)))
	if err != nil {
		log.Printf("[WARNING] Failed to archive export %s: %v", key, err)
		return
	}
	log.Printf("Export archived (key: %s)", key)
}
