package email

const bookingConfirmationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Booking Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f9fafb;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #dc2626; font-size: 32px; margin-bottom: 10px;">WEEKEND IN THE CITY</h1>
      <p style="color: #666; font-size: 16px; margin: 0;">Booking Confirmation</p>
    </div>
    <div style="background-color: #ffffff; border-radius: 12px; padding: 30px;">
      <p style="font-size: 16px; color: #333;">Hi {{.CustomerName}},</p>
      <p style="font-size: 16px; color: #333;">Thank you for your booking! We're excited to see you at <strong>{{.EventTitle}}</strong>.</p>

      <div style="background-color: #f9fafb; border: 2px solid #e5e7eb; border-radius: 12px; padding: 24px; margin-bottom: 30px;">
        <h2 style="font-size: 20px; color: #dc2626; margin-top: 0;">Event Details</h2>
        <p><strong>Event:</strong><br>{{.EventTitle}}</p>
        <p><strong>Date:</strong><br>{{.EventDate}}</p>
        <p><strong>Time:</strong><br>{{.EventTime}}</p>
        <p><strong>Location:</strong><br>{{.EventLocation}}</p>
        <p><strong>Amount Paid:</strong><br>{{.Amount}}</p>
      </div>

      <div style="background-color: #fef2f2; border: 1px solid #fecaca; border-radius: 8px; padding: 16px; margin-bottom: 30px;">
        <p style="font-size: 14px; color: #991b1b;"><strong>Booking Reference:</strong> {{.BookingID}}</p>
        <p style="font-size: 12px; color: #991b1b;">Please save this email or bring this reference number to the event.</p>
        <div style="text-align: center;">
          <p style="font-size: 12px; color: #991b1b; font-weight: bold;">Your Ticket QR Code</p>
          <img src="{{.QRCodeURL}}" alt="Booking QR Code" width="150" height="150" style="border: 2px solid #dc2626; border-radius: 8px; padding: 8px;">
          <p style="font-size: 10px; color: #991b1b; font-style: italic;">If the QR code doesn't display, please enable images in your email client</p>
        </div>
      </div>

      <div style="background-color: #eff6ff; border: 1px solid #bfdbfe; border-radius: 8px; padding: 16px; margin-bottom: 30px;">
        <h3 style="font-size: 16px; color: #1e40af; margin-top: 0;">Important Information</h3>
        <ul style="color: #1e40af; font-size: 14px;">
          {{range .Notes}}<li>{{.}}</li>
          {{end}}
        </ul>
      </div>

      <div style="border-top: 1px solid #e5e7eb; padding-top: 20px; text-align: center;">
        <p style="font-size: 14px; color: #666;">Questions? Contact us at <a href="mailto:{{.SupportEmail}}" style="color: #dc2626;">{{.SupportEmail}}</a></p>
        <p style="font-size: 12px; color: #999; margin: 0;">{{.Footer}}</p>
      </div>
    </div>
  </div>
</body>
</html>
`

const bookingConfirmationText = `Hi {{.CustomerName}},

Thank you for your booking! We're excited to see you at {{.EventTitle}}.

EVENT DETAILS
-------------
Event: {{.EventTitle}}
Date: {{.EventDate}}
Time: {{.EventTime}}
Location: {{.EventLocation}}
Amount Paid: {{.Amount}}

BOOKING REFERENCE
-----------------
{{.BookingID}}

Please save this email or bring this reference number to the event.

IMPORTANT INFORMATION
--------------------
{{range .Notes}}- {{.}}
{{end}}
Questions? Contact us at {{.SupportEmail}}

{{.Footer}}`

const adminNotificationHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>New Booking</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #dc2626;">New booking: {{.EventTitle}}</h2>
  <h3>Event</h3>
  <p>{{.EventTitle}}<br>{{.EventDate}} at {{.EventTime}}<br>{{.EventLocation}}</p>
  <h3>Customer</h3>
  <p>Name: {{.CustomerName}}<br>Email: <a href="mailto:{{.CustomerEmail}}">{{.CustomerEmail}}</a>{{if .ReferralName}}<br>Referred by: {{.ReferralName}}{{end}}</p>
  <h3>Booking</h3>
  <p>Reference: {{.BookingID}}<br>Amount paid: {{.Amount}}</p>
  <h3>Capacity</h3>
  <p>Sold: {{.Sold}} / {{.Capacity}}<br>Remaining: {{.Remaining}}</p>
</body>
</html>
`

const adminNotificationText = `New booking: {{.EventTitle}}

EVENT
{{.EventTitle}}
{{.EventDate}} at {{.EventTime}}
{{.EventLocation}}

CUSTOMER
Name: {{.CustomerName}}
Email: {{.CustomerEmail}}{{if .ReferralName}}
Referred by: {{.ReferralName}}{{end}}

BOOKING
Reference: {{.BookingID}}
Amount paid: {{.Amount}}

CAPACITY
Sold: {{.Sold}} / {{.Capacity}}
Remaining: {{.Remaining}}`

const contactMessageHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Contact Form</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #dc2626;">New Contact Form Submission</h2>
  <div style="background-color: #f9fafb; padding: 20px; border-radius: 8px;">
    <p style="margin: 10px 0;"><strong>Name:</strong> {{.Name}}</p>
    <p style="margin: 10px 0;"><strong>Email:</strong> {{.Email}}</p>
    <p style="margin: 10px 0;"><strong>Subject:</strong> {{.Subject}}</p>
  </div>
  <div style="margin-top: 20px;">
    <h3>Message:</h3>
    <p style="white-space: pre-wrap;">{{.Message}}</p>
  </div>
</body>
</html>
`

const contactMessageText = `New Contact Form Submission

Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}

Message:
{{.Message}}`
