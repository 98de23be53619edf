package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aymerick/raymond"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

const submittedLayout = "2006-01-02 15:04:05 MST"

const subjectSource = `New Lead from {{{name}}} - {{{brand}}} Website`

const textSource = `New lead submission from {{{brand}}} website:

Name: {{{name}}}
Email: {{{email}}}
Company: {{{company}}}
Service Interest: {{{service}}}
Phone: {{{phone}}}

Message:
{{{message}}}

Lead ID: {{{id}}}
Submitted: {{{submitted}}}

---
This lead has been automatically saved to your leads database.`

const htmlSource = `New lead submission from {{brand}} website:<br><br>` +
	`Name: {{name}}<br>` +
	`Email: {{email}}<br>` +
	`Company: {{company}}<br>` +
	`Service Interest: {{service}}<br>` +
	`Phone: {{phone}}<br><br>` +
	`Message:<br>{{br message}}<br><br>` +
	`Lead ID: {{id}}<br>` +
	`Submitted: {{submitted}}<br><br>` +
	`---<br>This lead has been automatically saved to your leads database.`

var (
	subjectTmpl = raymond.MustParse(subjectSource)
	textTmpl    = raymond.MustParse(textSource)
	htmlTmpl    = newHTMLTemplate()
)

func newHTMLTemplate() *raymond.Template {
	t := raymond.MustParse(htmlSource)
	t.RegisterHelper("br", func(s string) raymond.SafeString {
		return raymond.SafeString(strings.ReplaceAll(raymond.Escape(s), "\n", "<br>"))
	})
	return t
}

// BuildLeadNotification renders subject, text and HTML bodies for lead.
// From and To are left for the caller. Missing optionals read "Not provided"
// or "Not specified"; the HTML body escapes every value.
func BuildLeadNotification(lead *domain.Lead, brand string, loc *time.Location) (Message, error) {
	if lead == nil {
		return Message{}, errors.New("notify: nil lead")
	}
	if loc == nil {
		loc = time.UTC
	}
	ctx := map[string]any{
		"brand":     brand,
		"name":      lead.Name,
		"email":     lead.Email,
		"company":   orDefault(domain.Deref(lead.Company), "Not provided"),
		"service":   orDefault(domain.Deref(lead.Service), "Not specified"),
		"phone":     orDefault(domain.Deref(lead.Phone), "Not provided"),
		"message":   lead.Message,
		"id":        lead.ID,
		"submitted": lead.CreatedAt.In(loc).Format(submittedLayout),
	}

	subject, err := subjectTmpl.Exec(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("notify: render subject: %w", err)
	}
	text, err := textTmpl.Exec(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("notify: render text: %w", err)
	}
	html, err := htmlTmpl.Exec(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("notify: render html: %w", err)
	}
	return Message{Subject: subject, Text: text, HTML: html}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
