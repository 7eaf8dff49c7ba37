package email

import (
	"strings"
	"testing"
)

func TestNewRendererParsesAllTemplates(t *testing.T) {
	t.Parallel()

	if _, err := NewRenderer(); err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
}

func TestRenderTrackingAssigned(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	msg, err := renderer.Render(TemplateTrackingAssigned, &OrderInfo{
		OrderNumber:   "JN-1001",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		StoreName:     "Jenii",
		StoreURL:      "https://jenii.in",
		AWB:           "AWB777",
		CourierName:   "Delhivery",
		TrackingURL:   "https://track.example.com/AWB777",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if msg.To != "asha@example.com" {
		t.Errorf("to = %q, want asha@example.com", msg.To)
	}
	if !strings.Contains(msg.Subject, "JN-1001") {
		t.Errorf("subject %q missing order number", msg.Subject)
	}
	if !strings.Contains(msg.Text, "AWB777") || !strings.Contains(msg.HTML, "AWB777") {
		t.Error("rendered bodies missing the AWB")
	}
	if !strings.Contains(msg.Text, "https://track.example.com/AWB777") {
		t.Error("text body missing the tracking link")
	}
}

func TestRenderEveryLifecycleTemplate(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	info := &OrderInfo{
		OrderNumber:   "JN-1002",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		StoreName:     "Jenii",
		StoreURL:      "https://jenii.in",
		Reason:        "changed my mind",
		AdminNote:     "refund initiated",
		Total:         "₹2499.00",
	}

	for _, name := range []string{
		TemplateTrackingAssigned,
		TemplateOrderShipped,
		TemplateOrderDelivered,
		TemplateOrderCancelled,
		TemplateOrderReturned,
		TemplateCancellationApproved,
		TemplateCancellationRejected,
	} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			msg, err := renderer.Render(name, info)
			if err != nil {
				t.Fatalf("Render(%s) error = %v", name, err)
			}
			if msg.Subject == "" || msg.Text == "" || msg.HTML == "" {
				t.Fatalf("Render(%s) produced an empty part", name)
			}
			if !strings.Contains(msg.Subject, "JN-1002") {
				t.Errorf("subject %q missing order number", msg.Subject)
			}
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	if _, err := renderer.Render("no_such_template", &OrderInfo{}); err == nil {
		t.Fatal("Render() succeeded for an unknown template, want error")
	}
}
