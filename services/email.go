package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"

	"survey_app_go/config"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}

	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends an email asynchronously using a goroutine
// This is the recommended method for sending emails in handlers to avoid blocking HTTP responses
func SendEmailAsync(cfg *config.Config, email *Email) {
	// Copy the email to avoid race conditions
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}

func renderEmailTemplate(tmpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("Error rendering email template %s: %v", tmpl.Name(), err)
		return ""
	}
	return buf.String()
}

var passwordResetHTML = template.Must(template.New("password_reset").Parse(`
<p>Hello {{.UserName}},</p>
<p>We received a request to reset the password for your survey dashboard account.</p>
<p><a href="{{.ResetLink}}">Reset your password</a></p>
<p>This link expires at {{.ExpiresAt}}. If you did not request a reset, you can ignore this email.</p>
`))

// PasswordResetEmailData contains data for the password reset email template
type PasswordResetEmailData struct {
	UserName  string
	ResetLink string
	ExpiresAt string
}

// BuildPasswordResetEmail creates a password reset email with reset link
func BuildPasswordResetEmail(userEmail, userName, resetLink, expiresAt string) *Email {
	data := PasswordResetEmailData{
		UserName:  userName,
		ResetLink: resetLink,
		ExpiresAt: expiresAt,
	}

	return &Email{
		To:       []string{userEmail},
		Subject:  "Reset your password",
		HTMLBody: renderEmailTemplate(passwordResetHTML, data),
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nWe received a request to reset the password for your survey dashboard account.\n\nReset link: %s\n\nThis link expires at %s. If you did not request a reset, you can ignore this email.\n",
			userName, resetLink, expiresAt),
	}
}

var newResponseHTML = template.Must(template.New("new_response").Parse(`
<p>A new survey response has been submitted.</p>
<ul>
  <li><strong>Company:</strong> {{.CompanyName}}</li>
  {{if .RespondentName}}<li><strong>Respondent:</strong> {{.RespondentName}}</li>{{end}}
  {{if .SurveyName}}<li><strong>Survey:</strong> {{.SurveyName}}</li>{{end}}
  <li><strong>Score:</strong> {{.TotalScore}} / {{.MaxPossibleScore}} ({{printf "%.1f" .Percentage}}%)</li>
</ul>
<p><a href="{{.DashboardLink}}">Open the dashboard</a></p>
`))

// NewResponseEmailData contains data for the new response notification email
type NewResponseEmailData struct {
	CompanyName      string
	RespondentName   string
	SurveyName       string
	TotalScore       int
	MaxPossibleScore int
	Percentage       float64
	DashboardLink    string
}

// BuildNewResponseEmail creates an admin notification for a submitted response
func BuildNewResponseEmail(adminEmail string, data NewResponseEmailData) *Email {
	return &Email{
		To:       []string{adminEmail},
		Subject:  fmt.Sprintf("New survey response from %s", data.CompanyName),
		HTMLBody: renderEmailTemplate(newResponseHTML, data),
		TextBody: fmt.Sprintf(
			"A new survey response has been submitted.\n\nCompany: %s\nScore: %d / %d (%.1f%%)\n\nDashboard: %s\n",
			data.CompanyName, data.TotalScore, data.MaxPossibleScore, data.Percentage, data.DashboardLink),
	}
}
