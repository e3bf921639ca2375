// Package email renders the transactional messages sent by the booking flow.
// Rendering is pure: nothing here performs I/O.
package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
)

const (
	qrServiceURL = "https://api.qrserver.com/v1/create-qr-code/"
	qrSize       = "150x150"

	SupportEmail = "Weekendinthecity.muc@gmail.com"
	footer       = "© 2025 Weekend in the City | Munich, Germany"
)

var importantNotes = []string{
	"Please arrive 10 minutes before the event starts",
	"Bring this confirmation email or your booking reference",
	"Contact us if you have any questions or need to make changes",
}

var (
	confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation").Parse(bookingConfirmationHTML))
	confirmationText = texttemplate.Must(texttemplate.New("confirmation").Parse(bookingConfirmationText))
	adminHTML        = htmltemplate.Must(htmltemplate.New("admin").Parse(adminNotificationHTML))
	adminText        = texttemplate.Must(texttemplate.New("admin").Parse(adminNotificationText))
	contactHTML      = htmltemplate.Must(htmltemplate.New("contact").Parse(contactMessageHTML))
	contactText      = texttemplate.Must(texttemplate.New("contact").Parse(contactMessageText))
)

// Content is a rendered message
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// BookingConfirmation is the data shown to the customer after payment
type BookingConfirmation struct {
	CustomerName  string
	EventTitle    string
	EventDate     string
	EventTime     string
	EventLocation string
	AmountPaid    float64
	BookingID     string
}

// AdminNotification summarizes a new booking for the organizers
type AdminNotification struct {
	BookingConfirmation
	CustomerEmail string
	ReferralName  string
	Sold          int
	Capacity      int
}

// ContactMessage is a contact form submission forwarded to the inbox
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// QRCodeURL returns the image URL of the ticket QR code for a booking
func QRCodeURL(bookingID string) string {
	return qrServiceURL + "?size=" + qrSize + "&data=" + url.QueryEscape(bookingID)
}

// FormatAmount formats a euro amount with two decimals
func FormatAmount(amount float64) string {
	return fmt.Sprintf("€%.2f", amount)
}

type confirmationView struct {
	BookingConfirmation
	Amount       string
	QRCodeURL    htmltemplate.URL
	Notes        []string
	SupportEmail string
	Footer       string
}

// RenderBookingConfirmation builds the customer confirmation email
func RenderBookingConfirmation(d BookingConfirmation) (*Content, error) {
	view := confirmationView{
		BookingConfirmation: d,
		Amount:              FormatAmount(d.AmountPaid),
		QRCodeURL:           htmltemplate.URL(QRCodeURL(d.BookingID)),
		Notes:               importantNotes,
		SupportEmail:        SupportEmail,
		Footer:              footer,
	}

	return render(fmt.Sprintf("Booking Confirmed: %s", d.EventTitle), confirmationHTML, confirmationText, view)
}

type adminView struct {
	AdminNotification
	Amount    string
	Remaining int
}

// RenderAdminNotification builds the internal new-booking email
func RenderAdminNotification(d AdminNotification) (*Content, error) {
	remaining := d.Capacity - d.Sold
	if remaining < 0 {
		remaining = 0
	}
	view := adminView{
		AdminNotification: d,
		Amount:            FormatAmount(d.AmountPaid),
		Remaining:         remaining,
	}

	subject := fmt.Sprintf("New Booking: %s (%d/%d)", d.EventTitle, d.Sold, d.Capacity)
	return render(subject, adminHTML, adminText, view)
}

// RenderContactMessage builds the email forwarded to the contact inbox
func RenderContactMessage(d ContactMessage) (*Content, error) {
	return render("Contact Form: "+d.Subject, contactHTML, contactText, d)
}

func render(subject string, h *htmltemplate.Template, t *texttemplate.Template, data any) (*Content, error) {
	var htmlBuf, textBuf bytes.Buffer

	if err := h.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s html: %w", h.Name(), err)
	}
	if err := t.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s text: %w", t.Name(), err)
	}

	return &Content{
		Subject: subject,
		HTML:    htmlBuf.String(),
		Text:    strings.TrimSpace(textBuf.String()),
	}, nil
}
