package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"influence-tracker/internal/models"
	"influence-tracker/shared/brief"
	"influence-tracker/shared/config"
)

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// SendBrief mails the brief. A report without posts is not sent.
func (s *Sender) SendBrief(report *models.BriefReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if report.PostCount == 0 {
		return nil
	}

	subject := fmt.Sprintf("Influence Brief - %d Posts, Last %d Hours (%s)",
		report.PostCount, report.WindowHours, report.GeneratedAt.Format("Jan 2, 2006"))

	body, err := generateEmailBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	return s.sendViaSMTP(subject, htmlBody)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

const briefTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Influence Brief</title></head>
<body style="font-family: Arial, sans-serif; max-width: 700px; margin: 0 auto; color: #222;">
  <h1 style="color: #c4302b;">Influence Brief</h1>
  <p style="color: #666;">{{.GeneratedAt.Format "Monday, January 2, 2006 15:04"}} &middot; last {{.WindowHours}} hours &middot; {{.PostCount}} posts</p>

  <h2>Summary</h2>
  <p>{{.Brief}}</p>

  <h2>Top Trends</h2>
  {{if .TopTrends}}<ol>
  {{range .TopTrends}}<li>{{title .Trend}} ({{.Count}})</li>
  {{end}}</ol>{{else}}<p>No trends identified</p>{{end}}

  <h2>Sentiment</h2>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px;">Positive</td><td>{{.Sentiment.Positive}} ({{percent .Sentiment.Positive .PostCount}})</td></tr>
    <tr><td style="padding: 4px 12px;">Neutral</td><td>{{.Sentiment.Neutral}} ({{percent .Sentiment.Neutral .PostCount}})</td></tr>
    <tr><td style="padding: 4px 12px;">Negative</td><td>{{.Sentiment.Negative}} ({{percent .Sentiment.Negative .PostCount}})</td></tr>
  </table>

  {{if .Posts}}<h2>Posts</h2>
  {{range .Posts}}<div style="border-left: 3px solid #c4302b; padding-left: 12px; margin-bottom: 16px;">
    <a href="{{.URL}}" style="font-weight: bold;">{{.Title}}</a>
    <div style="color: #666; font-size: 0.9em;">{{.ChannelTitle}} &middot; {{.Sentiment}}</div>
    <p>{{.Summary}}</p>
    {{if .Trends}}<div style="font-size: 0.85em; color: #555;">{{join .Trends}}</div>{{end}}
  </div>
  {{end}}{{end}}
</body>
</html>`

func generateEmailBody(report *models.BriefReport) (string, error) {
	tmpl, err := template.New("brief").Funcs(template.FuncMap{
		"title":   brief.TitleCase,
		"join":    func(trends models.Trends) string { return strings.Join(trends, ", ") },
		"percent": func(n, total int) string {
			if total == 0 {
				return "0%"
			}
			return fmt.Sprintf("%.0f%%", float64(n)*100/float64(total))
		},
	}).Parse(briefTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}
