package email

import (
	"fmt"
	"html"

	"luxeleads/internal/config"
	"luxeleads/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: Georgia, 'Times New Roman', serif; line-height: 1.6; color: #1f2937; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #111827; color: #f5d77a; padding: 20px; text-align: center; }
        .content { background: #fafaf9; padding: 20px; border: 1px solid #e7e5e4; }
        .footer { padding: 15px; text-align: center; font-size: 12px; color: #78716c; }
        .label { font-weight: 600; }
    </style>
</head>
<body>
    <div class="header"><h1>%s</h1></div>
    <div class="content">%s</div>
    <div class="footer"><p>%s</p><p><a href="%s">%s</a></p></div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content,
		html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// LeadCaptured generates the sales team email for a new lead.
func (t *Templates) LeadCaptured(lead models.Lead, notes string) (subject, htmlBody, textBody string) {
	subject = "New Lead Notification"

	notesHTML := ""
	if notes != "" {
		notesHTML = fmt.Sprintf(`<p><span class="label">Notes:</span> %s</p>`, html.EscapeString(notes))
	}

	content := fmt.Sprintf(`
        <p>A new lead was captured on the storefront.</p>
        <p><span class="label">Name:</span> %s</p>
        <p><span class="label">Email:</span> %s</p>
        <p><span class="label">Phone:</span> %s</p>
        <p><span class="label">Interest:</span> %s</p>
        %s
        <p><a href="%s/admin">Open the dashboard</a></p>`,
		html.EscapeString(lead.Name),
		html.EscapeString(lead.Email),
		html.EscapeString(lead.Phone),
		html.EscapeString(lead.Interest),
		notesHTML,
		t.cfg.BaseURL,
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`New Lead Details:
Name: %s
Email: %s
Phone: %s
Interest: %s
`, lead.Name, lead.Email, lead.Phone, lead.Interest)
	if notes != "" {
		textBody += "Notes: " + notes + "\n"
	}
	return
}

// StatusChanged generates the sales team email for a pipeline move.
func (t *Templates) StatusChanged(lead models.Lead, status, actor string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s is now %s", t.cfg.SiteTitle, lead.Name, status)

	content := fmt.Sprintf(`
        <p>A lead moved through the pipeline.</p>
        <p><span class="label">Lead:</span> %s (%s)</p>
        <p><span class="label">Status:</span> %s</p>
        <p><span class="label">Updated by:</span> %s</p>`,
		html.EscapeString(lead.Name),
		html.EscapeString(lead.Email),
		html.EscapeString(status),
		html.EscapeString(actor),
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Lead %s (%s) is now %s.\nUpdated by: %s\n", lead.Name, lead.Email, status, actor)
	return
}

// LeadWhatsApp is the short admin message for a new lead.
func (t *Templates) LeadWhatsApp(lead models.Lead) string {
	return fmt.Sprintf("New Lead: %s is interested in %s. Contact: %s", lead.Name, lead.Interest, lead.Phone)
}
