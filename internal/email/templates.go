// Package email provides email templates.
package email

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// Template keys for order lifecycle emails.
const (
	TemplateTrackingAssigned     = "tracking_assigned"
	TemplateOrderShipped         = "order_shipped"
	TemplateOrderDelivered       = "order_delivered"
	TemplateOrderCancelled       = "order_cancelled"
	TemplateOrderReturned        = "order_returned"
	TemplateCancellationApproved = "cancellation_approved"
	TemplateCancellationRejected = "cancellation_rejected"
)

// OrderInfo contains all the information needed for order email templates
type OrderInfo struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	StoreName       string
	StoreURL        string
	AWB             string
	CourierName     string
	TrackingURL     string
	Reason          string
	AdminNote       string
	ShippingAddress string
	EventDate       string
	Total           string
}

// EmailTemplate defines a named email template
type EmailTemplate struct {
	Name    string
	Subject string
	HTML    string
	Text    string
}

// Renderer provides methods to render email templates
type Renderer struct {
	templates *template.Template
}

// NewRenderer creates a new email template renderer with built-in templates
func NewRenderer() (*Renderer, error) {
	templates := map[string]EmailTemplate{
		TemplateTrackingAssigned: {
			Name:    "Tracking Assigned",
			Subject: "Tracking Details for Order {{.OrderNumber}} - {{.StoreName}}",
			HTML:    trackingAssignedHTML,
			Text:    trackingAssignedText,
		},
		TemplateOrderShipped: {
			Name:    "Order Shipped",
			Subject: "Your Order Has Shipped - {{.OrderNumber}} - {{.StoreName}}",
			HTML:    orderShippedHTML,
			Text:    orderShippedText,
		},
		TemplateOrderDelivered: {
			Name:    "Order Delivered",
			Subject: "Your Order Has Been Delivered - {{.OrderNumber}}",
			HTML:    orderDeliveredHTML,
			Text:    orderDeliveredText,
		},
		TemplateOrderCancelled: {
			Name:    "Order Cancelled",
			Subject: "Your Order Has Been Cancelled - {{.OrderNumber}}",
			HTML:    orderCancelledHTML,
			Text:    orderCancelledText,
		},
		TemplateOrderReturned: {
			Name:    "Order Returned",
			Subject: "Your Order Has Been Returned - {{.OrderNumber}}",
			HTML:    orderReturnedHTML,
			Text:    orderReturnedText,
		},
		TemplateCancellationApproved: {
			Name:    "Cancellation Approved",
			Subject: "Cancellation Approved for Order {{.OrderNumber}}",
			HTML:    cancellationApprovedHTML,
			Text:    cancellationApprovedText,
		},
		TemplateCancellationRejected: {
			Name:    "Cancellation Rejected",
			Subject: "Cancellation Request Update for Order {{.OrderNumber}}",
			HTML:    cancellationRejectedHTML,
			Text:    cancellationRejectedText,
		},
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
	}

	tmpl := template.New("email").Funcs(funcMap)

	for key, t := range templates {
		if _, err := tmpl.New(key + "_subject").Parse(t.Subject); err != nil {
			return nil, fmt.Errorf("failed to parse subject template %s: %w", key, err)
		}
		if _, err := tmpl.New(key + "_html").Parse(t.HTML); err != nil {
			return nil, fmt.Errorf("failed to parse HTML template %s: %w", key, err)
		}
		if _, err := tmpl.New(key + "_text").Parse(t.Text); err != nil {
			return nil, fmt.Errorf("failed to parse text template %s: %w", key, err)
		}
	}

	return &Renderer{
		templates: tmpl,
	}, nil
}

// Render renders an email template with the given data
func (r *Renderer) Render(templateName string, data *OrderInfo) (*Email, error) {
	var subjectBuf, htmlBuf, textBuf bytes.Buffer

	err := r.templates.ExecuteTemplate(&subjectBuf, templateName+"_subject", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render subject template: %w", err)
	}

	err = r.templates.ExecuteTemplate(&htmlBuf, templateName+"_html", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	err = r.templates.ExecuteTemplate(&textBuf, templateName+"_text", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	return &Email{
		To:      data.CustomerEmail,
		Subject: subjectBuf.String(),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// Template text content - Tracking Assigned
const trackingAssignedText = `Your order is being prepared for dispatch!

Order Number: {{.OrderNumber}}

Tracking Number (AWB): {{.AWB}}
Courier: {{.CourierName}}
{{if .TrackingURL}}Track your package: {{.TrackingURL}}{{end}}

We'll send you another email once your order ships.

Thank you for shopping with {{.StoreName}}!
{{.StoreURL}}
`

// Template HTML content - Tracking Assigned
const trackingAssignedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Tracking Assigned</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #b45309; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .tracking { background: white; padding: 20px; border-radius: 6px; margin: 15px 0; border-left: 4px solid #b45309; }
    .tracking-number { font-size: 24px; font-weight: bold; color: #b45309; }
    .button { display: inline-block; background: #b45309; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Your Order Is On Its Way Soon</h1>
    <p>Hi {{.CustomerName}}, tracking has been assigned to your order.</p>
  </div>
  <div class="content">
    <p><strong>Order Number:</strong> {{.OrderNumber}}</p>

    <div class="tracking">
      <p><strong>Courier:</strong> {{.CourierName}}</p>
      <p class="tracking-number">{{.AWB}}</p>
      {{if .TrackingURL}}
      <a href="{{.TrackingURL}}" class="button">Track Your Package</a>
      {{end}}
    </div>

    <p>We'll send you another email once your order ships.</p>
  </div>
  <div class="footer">
    <p>Thank you for shopping with <a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Order Shipped
const orderShippedText = `Great news! Your order has shipped!

Order Number: {{.OrderNumber}}
Shipped Date: {{.EventDate}}

{{if .AWB}}
Tracking Number (AWB): {{.AWB}}
Courier: {{.CourierName}}
{{if .TrackingURL}}Track your package: {{.TrackingURL}}{{end}}
{{end}}

Shipping Address:
{{.ShippingAddress}}

We'll let you know when your package is delivered!

Thank you for shopping with {{.StoreName}}!
{{.StoreURL}}
`

// Template HTML content - Order Shipped
const orderShippedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Shipped</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #059669; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .tracking { background: white; padding: 20px; border-radius: 6px; margin: 15px 0; border-left: 4px solid #059669; }
    .tracking-number { font-size: 24px; font-weight: bold; color: #059669; }
    .button { display: inline-block; background: #059669; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Your Order Has Shipped!</h1>
    <p>Great news, {{.CustomerName}}! Your order is on its way.</p>
  </div>
  <div class="content">
    <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
    <p><strong>Shipped Date:</strong> {{.EventDate}}</p>

    {{if .AWB}}
    <div class="tracking">
      <p><strong>Courier:</strong> {{.CourierName}}</p>
      <p class="tracking-number">{{.AWB}}</p>
      {{if .TrackingURL}}
      <a href="{{.TrackingURL}}" class="button">Track Your Package</a>
      {{end}}
    </div>
    {{end}}

    <h3>Shipping Address</h3>
    <p>{{.ShippingAddress}}</p>

    <p>We'll let you know when your package is delivered!</p>
  </div>
  <div class="footer">
    <p>Thank you for shopping with <a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Order Delivered
const orderDeliveredText = `Your order has been delivered!

Order Number: {{.OrderNumber}}
Delivered Date: {{.EventDate}}

Your package should have arrived at:
{{.ShippingAddress}}

We hope you love your new jewellery! If you have any questions or concerns, please don't hesitate to reach out.

Thank you for shopping with {{.StoreName}}!
{{.StoreURL}}
`

// Template HTML content - Order Delivered
const orderDeliveredHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Delivered</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #7c3aed; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .delivered-badge { background: #7c3aed; color: white; padding: 20px; text-align: center; border-radius: 8px; margin: 15px 0; font-size: 48px; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Your Order Has Been Delivered!</h1>
    <p>Your package has arrived, {{.CustomerName}}!</p>
  </div>
  <div class="content">
    <div class="delivered-badge">&#10003;</div>
    <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
    <p><strong>Delivered Date:</strong> {{.EventDate}}</p>

    <h3>Delivered To</h3>
    <p>{{.ShippingAddress}}</p>

    <p>We hope you love your new jewellery! If you have any questions or concerns about your order, please don't hesitate to reach out.</p>
  </div>
  <div class="footer">
    <p>Thank you for shopping with <a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Order Cancelled
const orderCancelledText = `Your order has been cancelled.

Order Number: {{.OrderNumber}}
{{if .Reason}}Reason: {{.Reason}}{{end}}

If you paid online, your refund will be processed within 5-7 business days.

If you did not request this cancellation or have any questions, please contact us.

{{.StoreName}}
{{.StoreURL}}
`

// Template HTML content - Order Cancelled
const orderCancelledHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Cancelled</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #dc2626; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Order Cancelled</h1>
  </div>
  <div class="content">
    <p>Hi {{.CustomerName}},</p>
    <p>Your order <strong>{{.OrderNumber}}</strong> has been cancelled.</p>
    {{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
    <p>If you paid online, your refund will be processed within 5-7 business days.</p>
    <p>If you did not request this cancellation or have any questions, please contact us.</p>
  </div>
  <div class="footer">
    <p><a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Order Returned
const orderReturnedText = `Your order has been returned.

Order Number: {{.OrderNumber}}
{{if .Reason}}Reason: {{.Reason}}{{end}}

We've received the returned package. If a refund is due, it will be processed within 5-7 business days.

If you have any questions, please contact us.

{{.StoreName}}
{{.StoreURL}}
`

// Template HTML content - Order Returned
const orderReturnedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Returned</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #d97706; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Order Returned</h1>
  </div>
  <div class="content">
    <p>Hi {{.CustomerName}},</p>
    <p>Your order <strong>{{.OrderNumber}}</strong> has been returned.</p>
    {{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
    <p>We've received the returned package. If a refund is due, it will be processed within 5-7 business days.</p>
    <p>If you have any questions, please contact us.</p>
  </div>
  <div class="footer">
    <p><a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Cancellation Approved
const cancellationApprovedText = `Your cancellation request has been approved.

Order Number: {{.OrderNumber}}
{{if .Reason}}Reason: {{.Reason}}{{end}}
{{if .AdminNote}}Note from our team: {{.AdminNote}}{{end}}

If you paid online, your refund will be processed within 5-7 business days.

{{.StoreName}}
{{.StoreURL}}
`

// Template HTML content - Cancellation Approved
const cancellationApprovedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Cancellation Approved</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #059669; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Cancellation Approved</h1>
  </div>
  <div class="content">
    <p>Hi {{.CustomerName}},</p>
    <p>Your cancellation request for order <strong>{{.OrderNumber}}</strong> has been approved.</p>
    {{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
    {{if .AdminNote}}<p><strong>Note from our team:</strong> {{.AdminNote}}</p>{{end}}
    <p>If you paid online, your refund will be processed within 5-7 business days.</p>
  </div>
  <div class="footer">
    <p><a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Cancellation Rejected
const cancellationRejectedText = `Your cancellation request could not be approved.

Order Number: {{.OrderNumber}}
{{if .AdminNote}}Note from our team: {{.AdminNote}}{{end}}

Your order will continue to be processed as normal. If you have any questions, please contact us.

{{.StoreName}}
{{.StoreURL}}
`

// Template HTML content - Cancellation Rejected
const cancellationRejectedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Cancellation Request Update</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #4b5563; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Cancellation Request Update</h1>
  </div>
  <div class="content">
    <p>Hi {{.CustomerName}},</p>
    <p>Unfortunately we could not approve the cancellation request for order <strong>{{.OrderNumber}}</strong>.</p>
    {{if .AdminNote}}<p><strong>Note from our team:</strong> {{.AdminNote}}</p>{{end}}
    <p>Your order will continue to be processed as normal. If you have any questions, please contact us.</p>
  </div>
  <div class="footer">
    <p><a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`
