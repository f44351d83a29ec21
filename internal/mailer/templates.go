package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
)

const (
	templateNotification = "notification"
	templateAnnouncement = "announcement"
)

// NotificationData is rendered into the notification email
type NotificationData struct {
	Title   string
	Message string
	Link    string
}

// AnnouncementData is rendered into the announcement email
type AnnouncementData struct {
	Title     string
	Message   string
	Sender    string
	Recipient string
	Link      string
}

// Templates renders the HTML bodies of outgoing emails
type Templates struct {
	templates map[string]*template.Template
}

// NewTemplates loads templates from dir, falling back to the built-in
// defaults for any file that is missing.
func NewTemplates(dir string) (*Templates, error) {
	t := &Templates{templates: make(map[string]*template.Template)}

	defaults := map[string]string{
		templateNotification: defaultNotificationTemplate,
		templateAnnouncement: defaultAnnouncementTemplate,
	}
	for name, fallback := range defaults {
		tmpl, err := template.ParseFiles(filepath.Join(dir, name+".html"))
		if err != nil {
			tmpl, err = template.New(name).Parse(fallback)
			if err != nil {
				return nil, fmt.Errorf("failed to parse default %s template: %w", name, err)
			}
		}
		t.templates[name] = tmpl
	}

	return t, nil
}

// DefaultTemplates returns the built-in templates
func DefaultTemplates() *Templates {
	return &Templates{templates: map[string]*template.Template{
		templateNotification: template.Must(template.New(templateNotification).Parse(defaultNotificationTemplate)),
		templateAnnouncement: template.Must(template.New(templateAnnouncement).Parse(defaultAnnouncementTemplate)),
	}}
}

// RenderNotification renders the body of a dispatched notification email
func (t *Templates) RenderNotification(data NotificationData) (string, error) {
	return t.render(templateNotification, data)
}

// RenderAnnouncement renders the body of an announcement email
func (t *Templates) RenderAnnouncement(data AnnouncementData) (string, error) {
	return t.render(templateAnnouncement, data)
}

func (t *Templates) render(name string, data interface{}) (string, error) {
	tmpl, exists := t.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

const defaultNotificationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #1e3a8a;">{{.Title}}</h2>
        <p style="white-space: pre-line;">{{.Message}}</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.Link}}" style="background-color: #1e3a8a; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">View in portal</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email, please do not reply.</p>
    </div>
</body>
</html>
`

const defaultAnnouncementTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <p style="color: #666; font-size: 12px; text-transform: uppercase;">Announcement</p>
        <h2 style="color: #b45309;">{{.Title}}</h2>
        <p>Hi {{.Recipient}},</p>
        <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; white-space: pre-line;">{{.Message}}</div>
        <p style="color: #666;">Sent by {{.Sender}}</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.Link}}" style="background-color: #b45309; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open portal</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email, please do not reply.</p>
    </div>
</body>
</html>
`
