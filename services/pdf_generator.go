package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"survey_app_go/models"
)

// getChromePath returns the Chrome executable path from environment variable
func getChromePath() string {
	return os.Getenv("CHROME_PATH")
}

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns default options for response summaries
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       54,
		MarginBottom:    54,
		MarginLeft:      54,
		MarginRight:     54,
	}
}

// GeneratePDF renders HTML content to PDF using headless Chrome
func GeneratePDF(htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)

	// Check for custom Chrome path (for headless-shell in Docker)
	if chromePath := getChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth = 8.5
		paperHeight = 14.0
	case "letter":
		paperWidth = 8.5
		paperHeight = 11.0
	default: // A4
		paperWidth = 8.27
		paperHeight = 11.69
	}

	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}

	// Convert points to inches for margins
	marginTop := float64(options.MarginTop) / 72.0
	marginBottom := float64(options.MarginBottom) / 72.0
	marginLeft := float64(options.MarginLeft) / 72.0
	marginRight := float64(options.MarginRight) / 72.0

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		// Wait for content to render
		chromedp.Sleep(100),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithMarginRight(marginRight).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}

var responseSummaryTemplate = template.Must(template.New("response_summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a2e; font-size: 12px; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  .meta { color: #555; margin-bottom: 16px; }
  .totals { background: #f4f4f8; padding: 10px 14px; border-radius: 6px; margin-bottom: 18px; }
  .totals strong { font-size: 16px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 14px; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
  th { background: #eaeaf2; }
  .comment { font-style: italic; color: #444; }
</style>
</head>
<body>
  <h1>Survey Response Summary</h1>
  <div class="meta">
    {{.Response.CompanyName}}
    {{- if .Response.RespondentName}} &mdash; {{.Response.RespondentName}}{{end}}
    {{- if .Response.Quarter}} &mdash; {{.Response.Quarter}}{{end}}
    <br>Submitted {{.SubmittedAt}}
  </div>
  <div class="totals">
    <strong>{{.Response.TotalScore}} / {{.Response.MaxPossibleScore}}</strong>
    ({{printf "%.1f" .Response.PercentageScore}}%)
  </div>
  <table>
    <tr><th>Category</th><th>Score</th><th>Comment</th></tr>
    {{range .Categories}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.Score}} / {{.MaxScore}}</td>
      <td class="comment">{{.Comment}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>`))

type summaryCategory struct {
	Name     string
	Score    int
	MaxScore int
	Comment  string
}

// BuildResponseSummaryHTML renders the printable summary for one stored
// response. Only categories the respondent actually scored appear. The
// per-category maximum is derived from the questions present in the
// stored answers rather than the full catalog, so responses submitted
// through links with hidden questions keep denominators consistent
// with their stored overall maximum.
func BuildResponseSummaryHTML(response *models.SurveyResponse) (string, error) {
	var categories []summaryCategory
	for _, category := range models.SurveyCategories {
		answers, ok := response.Scores[category.ID]
		if !ok {
			continue
		}
		maxScore := 0
		for _, q := range category.Questions {
			if _, answered := answers[q.ID]; answered {
				maxScore += q.MaxScore
			}
		}
		categories = append(categories, summaryCategory{
			Name:     category.Name,
			Score:    answers[models.OverallQuestionID],
			MaxScore: maxScore,
			Comment:  response.Comments[category.ID],
		})
	}

	data := struct {
		Response    *models.SurveyResponse
		SubmittedAt string
		Categories  []summaryCategory
	}{
		Response:    response,
		SubmittedAt: response.SubmittedAt.Format("January 2, 2006 15:04"),
		Categories:  categories,
	}

	var buf bytes.Buffer
	if err := responseSummaryTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render response summary: %w", err)
	}
	return buf.String(), nil
}

// GenerateResponsePDF renders a stored response as a printable PDF.
func GenerateResponsePDF(response *models.SurveyResponse) ([]byte, error) {
	html, err := BuildResponseSummaryHTML(response)
	if err != nil {
		return nil, err
	}
	return GeneratePDF(html, DefaultPDFOptions())
}
