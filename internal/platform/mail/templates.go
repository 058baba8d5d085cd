package mail

import (
	"fmt"
	"strings"
	"sync"
)

// Template defines a reusable email template.
type Template struct {
	ID      string
	Name    string
	Subject string
	HTML    string
}

// TemplateEngine manages email templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "booking-admin",
			Name:    "New Booking (Admin)",
			Subject: "New booking request: {{patient_name}} on {{date}}",
			HTML: "<h2>New booking request</h2>" +
				"<p><strong>Patient:</strong> {{patient_name}} ({{patient_email}}, {{patient_phone}})</p>" +
				"<p><strong>Date:</strong> {{date}}</p>" +
				"<p><strong>Time:</strong> {{time}}</p>" +
				"<p><strong>Session:</strong> {{session_type}}</p>" +
				"<p><strong>Service:</strong> {{service_type}}</p>" +
				"<p><strong>Notes:</strong> {{notes}}</p>" +
				"<p>Confirmation number: <strong>{{confirmation}}</strong></p>",
		},
		{
			ID:      "booking-patient",
			Name:    "Booking Received (Patient)",
			Subject: "Your booking request at {{clinic_name}}",
			HTML: "<h2>Thank you, {{patient_name}}!</h2>" +
				"<p>We have received your booking request for <strong>{{date}}</strong> at <strong>{{time}}</strong>.</p>" +
				"<p>Your confirmation number is <strong>{{confirmation}}</strong>.</p>" +
				"<p>We will be in touch shortly to confirm your appointment.</p>" +
				"<p>{{clinic_name}}</p>",
		},
		{
			ID:      "booking-status",
			Name:    "Booking Status Update",
			Subject: "Your booking {{confirmation}} is {{status}}",
			HTML: "<h2>Booking update</h2>" +
				"<p>Dear {{patient_name}}, your booking for {{date}} at {{time}} is now <strong>{{status}}</strong>.</p>" +
				"<p>{{clinic_name}}</p>",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, html string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	html = t.HTML
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		html = strings.ReplaceAll(html, placeholder, v)
	}
	return subject, html, nil
}
