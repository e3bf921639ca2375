package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfirmation() BookingConfirmation {
	return BookingConfirmation{
		CustomerName:  "Anna Schmidt",
		EventTitle:    "Beer Garden Social",
		EventDate:     "Saturday, 14 June",
		EventTime:     "18:00",
		EventLocation: "Augustiner Keller",
		AmountPaid:    25,
		BookingID:     "3f9c1e2a-7b4d-4c1e-9a0b-1d2e3f4a5b6c",
	}
}

func TestQRCodeURL(t *testing.T) {
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=150x150&data=3f9c1e2a-7b4d-4c1e-9a0b-1d2e3f4a5b6c",
		QRCodeURL("3f9c1e2a-7b4d-4c1e-9a0b-1d2e3f4a5b6c"))

	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=150x150&data=a%26b%3Dc",
		QRCodeURL("a&b=c"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "€25.00", FormatAmount(25))
	assert.Equal(t, "€9.50", FormatAmount(9.5))
}

func TestRenderBookingConfirmation(t *testing.T) {
	content, err := RenderBookingConfirmation(sampleConfirmation())
	require.NoError(t, err)

	assert.Equal(t, "Booking Confirmed: Beer Garden Social", content.Subject)

	assert.Contains(t, content.HTML, "WEEKEND IN THE CITY")
	assert.Contains(t, content.HTML, "Hi Anna Schmidt,")
	assert.Contains(t, content.HTML, "Augustiner Keller")
	assert.Contains(t, content.HTML, "€25.00")
	assert.Contains(t, content.HTML, "api.qrserver.com/v1/create-qr-code/?size=150x150")
	assert.Contains(t, content.HTML, "data=3f9c1e2a-7b4d-4c1e-9a0b-1d2e3f4a5b6c")
	assert.Contains(t, content.HTML, "Please arrive 10 minutes before the event starts")
	assert.Contains(t, content.HTML, "© 2025 Weekend in the City | Munich, Germany")

	assert.Contains(t, content.Text, "Hi Anna Schmidt,")
	assert.Contains(t, content.Text, "Amount Paid: €25.00")
	assert.Contains(t, content.Text, "BOOKING REFERENCE\n-----------------\n3f9c1e2a-7b4d-4c1e-9a0b-1d2e3f4a5b6c")
	assert.Contains(t, content.Text, "- Bring this confirmation email or your booking reference")
	assert.Contains(t, content.Text, "Questions? Contact us at Weekendinthecity.muc@gmail.com")
	assert.NotContains(t, content.Text, "<")
}

func TestRenderBookingConfirmationIsDeterministic(t *testing.T) {
	a, err := RenderBookingConfirmation(sampleConfirmation())
	require.NoError(t, err)
	b, err := RenderBookingConfirmation(sampleConfirmation())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRenderBookingConfirmationEscapesHTML(t *testing.T) {
	d := sampleConfirmation()
	d.CustomerName = `<script>alert("x")</script>`

	content, err := RenderBookingConfirmation(d)
	require.NoError(t, err)

	assert.NotContains(t, content.HTML, "<script>")
	assert.Contains(t, content.HTML, "&lt;script&gt;")
	assert.Contains(t, content.Text, `<script>alert("x")</script>`)
}

func TestRenderAdminNotification(t *testing.T) {
	content, err := RenderAdminNotification(AdminNotification{
		BookingConfirmation: sampleConfirmation(),
		CustomerEmail:       "anna@example.com",
		ReferralName:        "Max",
		Sold:                20,
		Capacity:            20,
	})
	require.NoError(t, err)

	assert.Equal(t, "New Booking: Beer Garden Social (20/20)", content.Subject)
	assert.Contains(t, content.Text, "Email: anna@example.com")
	assert.Contains(t, content.Text, "Referred by: Max")
	assert.Contains(t, content.Text, "Sold: 20 / 20")
	assert.Contains(t, content.Text, "Remaining: 0")
	assert.Contains(t, content.HTML, "Referred by: Max")
}

func TestRenderAdminNotificationWithoutReferral(t *testing.T) {
	content, err := RenderAdminNotification(AdminNotification{
		BookingConfirmation: sampleConfirmation(),
		CustomerEmail:       "anna@example.com",
		Sold:                21,
		Capacity:            20,
	})
	require.NoError(t, err)

	assert.NotContains(t, content.Text, "Referred by")
	assert.Contains(t, content.Text, "Remaining: 0")
}

func TestRenderContactMessage(t *testing.T) {
	content, err := RenderContactMessage(ContactMessage{
		Name:    "Max",
		Email:   "max@example.com",
		Subject: "Private event",
		Message: "Can we book the whole tour?\n<b>Thanks</b>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Contact Form: Private event", content.Subject)
	assert.Contains(t, content.HTML, "&lt;b&gt;Thanks&lt;/b&gt;")
	assert.Contains(t, content.Text, "Subject: Private event")
	assert.Contains(t, content.Text, "Message:\nCan we book the whole tour?")
}
