package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// BookingNotification carries the booking details rendered into the admin and
// patient emails.
type BookingNotification struct {
	Confirmation string
	PatientName  string
	PatientEmail string
	PatientPhone string
	Date         string
	Time         string
	SessionType  string
	ServiceType  string
	Notes        string
	Status       string
}

// Dispatcher sends booking emails. Delivery is best-effort: failures are
// logged and never propagated to the caller.
type Dispatcher struct {
	sender     Sender
	templates  *TemplateEngine
	log        zerolog.Logger
	from       string
	adminEmail string
	clinicName string
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(sender Sender, tpl *TemplateEngine, log zerolog.Logger, from, adminEmail, clinicName string) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		templates:  tpl,
		log:        log,
		from:       from,
		adminEmail: adminEmail,
		clinicName: clinicName,
	}
}

func (d *Dispatcher) data(n BookingNotification) map[string]string {
	notes := n.Notes
	if notes == "" {
		notes = "-"
	}
	service := n.ServiceType
	if service == "" {
		service = "-"
	}
	// Home visits carry no slot yet; neither the date nor the time is
	// settled, so both lines read To Be Confirmed.
	date, timeOfDay := n.Date, n.Time
	if n.Time == "TBD" {
		date = "To Be Confirmed"
		timeOfDay = "To Be Confirmed"
	}
	return map[string]string{
		"confirmation":  n.Confirmation,
		"patient_name":  n.PatientName,
		"patient_email": n.PatientEmail,
		"patient_phone": n.PatientPhone,
		"date":          date,
		"time":          timeOfDay,
		"session_type":  n.SessionType,
		"service_type":  service,
		"notes":         notes,
		"status":        n.Status,
		"clinic_name":   d.clinicName,
	}
}

func (d *Dispatcher) send(ctx context.Context, templateID, to string, data map[string]string) {
	subject, html, err := d.templates.Render(templateID, data)
	if err != nil {
		d.log.Error().Err(err).Str("template", templateID).Msg("rendering email template")
		return
	}
	msg := Message{To: to, From: d.from, Subject: subject, HTML: html}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.Warn().Err(err).Str("template", templateID).Str("to", to).Msg("email delivery failed")
		return
	}
	d.log.Info().Str("template", templateID).Str("to", to).Msg("email sent")
}

// DispatchBookingCreated notifies the clinic admin and the patient about a new
// booking request.
func (d *Dispatcher) DispatchBookingCreated(ctx context.Context, n BookingNotification) {
	data := d.data(n)
	if d.adminEmail != "" {
		d.send(ctx, "booking-admin", d.adminEmail, data)
	}
	d.send(ctx, "booking-patient", n.PatientEmail, data)
}

// DispatchBookingStatusChanged notifies the patient that their booking moved
// to a new status.
func (d *Dispatcher) DispatchBookingStatusChanged(ctx context.Context, n BookingNotification) {
	d.send(ctx, "booking-status", n.PatientEmail, d.data(n))
}
